// Package chat implements the public chat pipeline: request validation,
// context caching, prompt assembly, and generation with graceful fallback.
package chat

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"nexus-backend/internal/domain"
	"nexus-backend/internal/generation"
)

// Service orchestrates one chat request: guard, cache, prompt, gateway.
type Service struct {
	cache           *ContextCache
	gen             generation.Generator
	generateTimeout time.Duration
	now             func() time.Time
}

// NewService creates the chat service.
func NewService(cache *ContextCache, gen generation.Generator, generateTimeout time.Duration) *Service {
	return &Service{
		cache:           cache,
		gen:             gen,
		generateTimeout: generateTimeout,
		now:             time.Now,
	}
}

// Answer handles a single-shot chat request. Generation failures degrade to
// a fixed apology so the endpoint stays available; only validation failures
// are returned as errors.
func (s *Service) Answer(ctx context.Context, rawMessage string) (*domain.ChatResponse, error) {
	message, err := ValidateMessage(rawMessage)
	if err != nil {
		return nil, err
	}

	wasCached := !s.cache.IsStale()
	knowledge := s.cache.Context(ctx)
	instructions := s.cache.Instructions(ctx)

	responseText := generation.ErrorApology
	prompt, err := BuildPrompt(s.now(), knowledge, message)
	if err != nil {
		slog.Error("Prompt assembly failed", "error", err)
	} else {
		genCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
		defer cancel()

		text, err := s.gen.Generate(genCtx, prompt, instructions)
		if err != nil {
			slog.Error("Generation failed", "error", err)
		} else {
			responseText = text
		}
	}

	return &domain.ChatResponse{
		Status:    "success",
		Response:  responseText,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Cached:    wasCached,
	}, nil
}

// AnswerStream validates the request and returns the chunk producer for it,
// plus whether the context was already fresh. Validation errors are returned
// before any stream begins so callers can still answer with a plain 400.
// The producer yields delta chunks; framing them cumulatively is the
// emitter's job.
func (s *Service) AnswerStream(ctx context.Context, rawMessage string) (iter.Seq2[string, error], bool, error) {
	message, err := ValidateMessage(rawMessage)
	if err != nil {
		return nil, false, err
	}

	wasCached := !s.cache.IsStale()
	knowledge := s.cache.Context(ctx)
	instructions := s.cache.Instructions(ctx)

	prompt, err := BuildPrompt(s.now(), knowledge, message)
	if err != nil {
		slog.Error("Prompt assembly failed", "error", err)
		return func(yield func(string, error) bool) {
			yield(generation.ErrorApology, nil)
		}, wasCached, nil
	}

	return s.gen.GenerateStream(ctx, prompt, instructions), wasCached, nil
}

// GenAvailable reports whether the real generation backend is configured.
func (s *Service) GenAvailable() bool {
	return s.gen.Available()
}

// CacheStale reports current cache staleness for health reporting.
func (s *Service) CacheStale() bool {
	return s.cache.IsStale()
}

// LastRefresh exposes the cache's last successful refresh time.
func (s *Service) LastRefresh() (time.Time, bool) {
	return s.cache.LastRefresh()
}

package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nexus-backend/internal/domain"
)

// DefaultCacheTTL is how long cached context stays fresh.
const DefaultCacheTTL = 300 * time.Second

// ContextSource is the collaborator interface the cache refreshes from.
// store.Repository satisfies it.
type ContextSource interface {
	GetAllCategories(ctx context.Context) (map[string]string, error)
	GetInstructions(ctx context.Context) (*domain.Instructions, error)
}

// ContextCache holds the last-fetched knowledge mapping and instruction text
// for the process lifetime, refreshing them from the source once they exceed
// the TTL. Refreshes are deduplicated through singleflight so concurrent
// requests observing a stale cache share one fetch instead of each issuing
// their own.
type ContextCache struct {
	source ContextSource
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu           sync.RWMutex
	knowledge    map[string]string
	instructions string
	lastRefresh  time.Time // zero value means never refreshed
}

// NewContextCache creates an empty cache. Content is first populated on the
// first request that observes staleness.
func NewContextCache(source ContextSource, ttl time.Duration) *ContextCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ContextCache{
		source:    source,
		ttl:       ttl,
		now:       time.Now,
		knowledge: domain.EmptyKnowledge(),
	}
}

// IsStale reports whether the cache needs a refresh: never refreshed, or
// strictly older than the TTL.
func (c *ContextCache) IsStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastRefresh.IsZero() {
		return true
	}
	return c.now().Sub(c.lastRefresh) > c.ttl
}

// LastRefresh returns the time of the last successful refresh and whether
// one has happened.
func (c *ContextCache) LastRefresh() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh, !c.lastRefresh.IsZero()
}

// Refresh fetches the full knowledge mapping and instruction text and swaps
// them in atomically. On failure the previous cached values are retained
// untouched. Concurrent callers share a single in-flight refresh.
func (c *ContextCache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		start := time.Now()

		knowledge, err := c.source.GetAllCategories(ctx)
		if err != nil {
			return nil, &UpstreamError{Op: "fetch knowledge", Err: err}
		}

		ins, err := c.source.GetInstructions(ctx)
		if err != nil {
			return nil, &UpstreamError{Op: "fetch instructions", Err: err}
		}

		c.mu.Lock()
		c.knowledge = knowledge
		c.instructions = ins.Content
		c.lastRefresh = c.now()
		c.mu.Unlock()

		slog.Info("Context cache refreshed", "elapsed_ms", time.Since(start).Milliseconds())
		return nil, nil
	})
	return err
}

// Context returns the knowledge mapping, refreshing first if stale. A failed
// refresh degrades to the previously cached content (empty categories if the
// cache was never populated) rather than failing the request.
func (c *ContextCache) Context(ctx context.Context) map[string]string {
	c.ensureFresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	// Refresh replaces the map wholesale instead of mutating it, so handing
	// out the current map is safe.
	return c.knowledge
}

// Instructions returns the instruction text, refreshing first if stale.
func (c *ContextCache) Instructions(ctx context.Context) string {
	c.ensureFresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instructions
}

func (c *ContextCache) ensureFresh(ctx context.Context) {
	if !c.IsStale() {
		return
	}
	if err := c.Refresh(ctx); err != nil {
		slog.Warn("Context refresh failed, serving cached content", "error", err)
	}
}

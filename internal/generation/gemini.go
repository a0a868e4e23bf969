package generation

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// SamplingConfig holds the fixed sampling parameters for the chatbot.
type SamplingConfig struct {
	Temperature float32
	TopP        float32
	TopK        float32
}

// DefaultSampling is the sampling configuration the chatbot was tuned with.
var DefaultSampling = SamplingConfig{
	Temperature: 1.8,
	TopP:        0.95,
	TopK:        40,
}

// Gemini is the gateway variant backed by the Gemini API.
type Gemini struct {
	client   *genai.Client
	model    string
	sampling SamplingConfig
}

// NewGemini creates a Gemini-backed gateway. Construction fails when the
// API key is empty or the client cannot be built; callers fall back to the
// unavailable variant in that case.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &Error{Op: "create client", Err: err}
	}

	return &Gemini{
		client:   client,
		model:    model,
		sampling: DefaultSampling,
	}, nil
}

func (g *Gemini) generateConfig(instructions string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.sampling.Temperature),
		TopP:        genai.Ptr(g.sampling.TopP),
		TopK:        genai.Ptr(g.sampling.TopK),
	}
	if strings.TrimSpace(instructions) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instructions, genai.RoleUser)
	}
	return cfg
}

// Generate performs a single-shot generation call.
func (g *Gemini) Generate(ctx context.Context, payload, instructions string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(payload), g.generateConfig(instructions))
	if err != nil {
		return "", &Error{Op: "generate", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return BlankApology, nil
	}
	return text, nil
}

// GenerateStream returns the backend's incremental chunks unaltered. A
// failure before the first chunk yields the error apology once; a failure
// mid-flight ends the sequence, treating output so far as complete.
func (g *Gemini) GenerateStream(ctx context.Context, payload, instructions string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yielded := false
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(payload), g.generateConfig(instructions)) {
			if err != nil {
				slog.Error("Gemini stream failed", "model", g.model, "mid_flight", yielded, "error", err)
				if !yielded {
					yield(ErrorApology, nil)
				}
				return
			}
			chunk := resp.Text()
			if chunk == "" {
				continue
			}
			yielded = true
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Available reports that the real backend is configured.
func (g *Gemini) Available() bool {
	return true
}

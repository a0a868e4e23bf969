package generation

import (
	"context"
	"iter"
)

// Fallback is the gateway variant used when no backend credential is
// configured. It never makes an upstream call.
type Fallback struct{}

// NewFallback creates the unavailable-backend gateway.
func NewFallback() *Fallback {
	return &Fallback{}
}

// Generate always returns the fixed apology.
func (f *Fallback) Generate(ctx context.Context, payload, instructions string) (string, error) {
	return UnavailableApology, nil
}

// GenerateStream yields the fixed apology as a single chunk.
func (f *Fallback) GenerateStream(ctx context.Context, payload, instructions string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield(UnavailableApology, nil)
	}
}

// Available reports that no real backend is configured.
func (f *Fallback) Available() bool {
	return false
}

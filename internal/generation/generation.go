// Package generation provides the gateway to the response generation backend.
//
// The gateway has two variants selected once at startup: Gemini talks to the
// real backend, Fallback stands in when no usable credential exists. Both
// satisfy Generator so call sites never branch on configuration.
package generation

import (
	"context"
	"fmt"
	"iter"
)

// Canned response texts. UnavailableApology is what the fallback variant
// always returns; ErrorApology is substituted by call sites when an attempted
// backend call fails. The distinction survives only in logs.
const (
	UnavailableApology = "<p>Oops! My brain is taking a coffee break ☕. Try again in a bit!</p>"
	ErrorApology       = "<p>Whoa, something broke on my end. Not my fault though... probably. 🤷</p>"

	// BlankApology covers the backend returning an empty candidate.
	BlankApology = "<p>*stares blankly*</p>"
)

// Generator is the capability interface consumed by the chat service.
type Generator interface {
	// Generate performs a single-shot generation call. The payload is the
	// serialized prompt; instructions is the system instruction text.
	Generate(ctx context.Context, payload, instructions string) (string, error)

	// GenerateStream returns a finite, non-restartable sequence of partial
	// text chunks (deltas, not cumulative). If the backend stream fails
	// mid-flight the sequence simply ends; chunks already produced are
	// never retracted.
	GenerateStream(ctx context.Context, payload, instructions string) iter.Seq2[string, error]

	// Available reports whether the real backend is configured.
	Available() bool
}

// Error wraps a failure from an attempted backend call.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

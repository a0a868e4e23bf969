package chat

import "fmt"

// Validation failure reasons.
const (
	ReasonEmpty   = "empty"
	ReasonTooLong = "too_long"
)

// ValidationError is a client input fault. It is the only error in the
// pipeline surfaced to callers as a non-2xx status.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("chat: invalid message (%s): %s", e.Reason, e.Message)
}

// UpstreamError indicates a collaborator-store fetch failed during a cache
// refresh. It is recovered locally by serving the previous cached content
// and never reaches the chat caller.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chat: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"nexus-backend/internal/domain"
)

// Emitter frames chat output as a text event stream. Each Emit call appends
// a delta to the accumulated text and writes one event carrying the full
// text so far; Close writes the single terminal event. Receivers replace
// their buffer on every event rather than appending.
type Emitter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	acc     strings.Builder
	closed  bool
}

// NewEmitter prepares an SSE response on w and returns the emitter. The
// headers disable intermediary buffering and caching and keep the connection
// alive.
func NewEmitter(w http.ResponseWriter) (*Emitter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported by response writer")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &Emitter{w: w, flusher: flusher}, nil
}

// Emit appends delta to the accumulated text and writes a non-terminal
// event with the cumulative chunk. The flush after every event is the yield
// that keeps the transport from buffering.
func (e *Emitter) Emit(delta string) error {
	if e.closed {
		return fmt.Errorf("emit after terminal event")
	}
	e.acc.WriteString(delta)

	data, err := json.Marshal(domain.StreamEvent{Chunk: e.acc.String(), Done: false})
	if err != nil {
		return fmt.Errorf("marshal stream event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write stream event: %w", err)
	}
	e.flusher.Flush()
	return nil
}

// Close writes the terminal event. It is safe to call once; after it no
// further events follow.
func (e *Emitter) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	data, err := json.Marshal(domain.StreamEvent{Done: true})
	if err != nil {
		return fmt.Errorf("marshal terminal event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write terminal event: %w", err)
	}
	e.flusher.Flush()
	return nil
}

// Text returns the full text accumulated so far.
func (e *Emitter) Text() string {
	return e.acc.String()
}

package chat

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"nexus-backend/internal/domain"
)

func decodeStreamEvents(t *testing.T, body string) []domain.StreamEvent {
	t.Helper()

	var events []domain.StreamEvent
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev domain.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("Invalid event JSON %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestEmitterCumulativeChunks(t *testing.T) {
	w := httptest.NewRecorder()
	emitter, err := NewEmitter(w)
	if err != nil {
		t.Fatalf("NewEmitter failed: %v", err)
	}

	for _, delta := range []string{"Hel", "lo", "!"} {
		if err := emitter.Emit(delta); err != nil {
			t.Fatalf("Emit failed: %v", err)
		}
	}
	if err := emitter.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	events := decodeStreamEvents(t, w.Body.String())
	want := []domain.StreamEvent{
		{Chunk: "Hel", Done: false},
		{Chunk: "Hello", Done: false},
		{Chunk: "Hello!", Done: false},
		{Done: true},
	}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(events))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("Event %d: expected %+v, got %+v", i, want[i], events[i])
		}
	}

	// Chunk lengths never decrease and the terminal event is last and unique.
	prev := 0
	doneCount := 0
	for i, ev := range events {
		if ev.Done {
			doneCount++
			if i != len(events)-1 {
				t.Error("Expected terminal event to be last")
			}
			continue
		}
		if len(ev.Chunk) < prev {
			t.Errorf("Chunk length decreased at event %d", i)
		}
		prev = len(ev.Chunk)
	}
	if doneCount != 1 {
		t.Errorf("Expected exactly one terminal event, got %d", doneCount)
	}
}

func TestEmitterCloseIsIdempotent(t *testing.T) {
	w := httptest.NewRecorder()
	emitter, err := NewEmitter(w)
	if err != nil {
		t.Fatalf("NewEmitter failed: %v", err)
	}

	if err := emitter.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := emitter.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}

	events := decodeStreamEvents(t, w.Body.String())
	if len(events) != 1 || !events[0].Done {
		t.Errorf("Expected a single terminal event, got %+v", events)
	}
}

func TestEmitterRejectsEmitAfterClose(t *testing.T) {
	w := httptest.NewRecorder()
	emitter, err := NewEmitter(w)
	if err != nil {
		t.Fatalf("NewEmitter failed: %v", err)
	}

	if err := emitter.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := emitter.Emit("late"); err == nil {
		t.Error("Expected an error emitting after the terminal event")
	}
}

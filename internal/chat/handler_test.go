package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"nexus-backend/internal/domain"
	"nexus-backend/internal/generation"
)

func newTestRouter(gen generation.Generator) (*chi.Mux, *stubSource) {
	svc, src := newTestService(gen)
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r, src
}

func postChat(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleChat(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{text: "<p>Hello!</p>", available: true})

	w := postChat(t, r, "/api/v1/chat", `{"message":"Hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp domain.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Expected status success, got %q", resp.Status)
	}
	if resp.Response != "<p>Hello!</p>" {
		t.Errorf("Expected generated text, got %q", resp.Response)
	}
	if resp.Cached {
		t.Error("Expected cached=false on first request")
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("Expected RFC3339 timestamp, got %q", resp.Timestamp)
	}
}

func TestHandleChatValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "empty message", body: `{"message":""}`, want: http.StatusBadRequest},
		{name: "whitespace message", body: `{"message":"   "}`, want: http.StatusBadRequest},
		{name: "too long", body: `{"message":"` + strings.Repeat("a", 2001) + `"}`, want: http.StatusBadRequest},
		{name: "exactly max length", body: `{"message":"` + strings.Repeat("a", 2000) + `"}`, want: http.StatusOK},
		{name: "invalid json", body: `{`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(&stubGenerator{text: "ok", available: true})
			w := postChat(t, r, "/api/v1/chat", tt.body)
			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleChatCachedAcrossRequests(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{text: "ok", available: true})

	first := postChat(t, r, "/api/v1/chat", `{"message":"Hi"}`)
	second := postChat(t, r, "/api/v1/chat", `{"message":"Hi"}`)

	var firstResp, secondResp domain.ChatResponse
	if err := json.NewDecoder(first.Body).Decode(&firstResp); err != nil {
		t.Fatalf("Failed to decode first response: %v", err)
	}
	if err := json.NewDecoder(second.Body).Decode(&secondResp); err != nil {
		t.Fatalf("Failed to decode second response: %v", err)
	}

	if firstResp.Cached {
		t.Error("Expected first request to report cached=false")
	}
	if !secondResp.Cached {
		t.Error("Expected second request within the TTL to report cached=true")
	}
}

func TestHandleChatStream(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{chunks: []string{"Hel", "lo", "!"}, available: true})

	w := postChat(t, r, "/api/v1/chat/stream", `{"message":"Hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Expected no-cache, got %q", cc)
	}

	events := decodeStreamEvents(t, w.Body.String())
	want := []domain.StreamEvent{
		{Chunk: "Hel", Done: false},
		{Chunk: "Hello", Done: false},
		{Chunk: "Hello!", Done: false},
		{Done: true},
	}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d: %s", len(want), len(events), w.Body.String())
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("Event %d: expected %+v, got %+v", i, want[i], events[i])
		}
	}
}

func TestHandleChatStreamValidationIsPlain400(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{chunks: []string{"Hi"}, available: true})

	w := postChat(t, r, "/api/v1/chat/stream", `{"message":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected plain JSON error before the stream starts, got %q", ct)
	}
}

func TestHandleChatStreamSourceErrorStillTerminates(t *testing.T) {
	gen := &stubGenerator{
		chunks:    []string{"partial"},
		err:       &generation.Error{Op: "stream", Err: errors.New("backend died")},
		available: true,
	}
	r, _ := newTestRouter(gen)

	w := postChat(t, r, "/api/v1/chat/stream", `{"message":"Hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	events := decodeStreamEvents(t, w.Body.String())
	if len(events) != 2 {
		t.Fatalf("Expected partial chunk plus terminal event, got %+v", events)
	}
	if events[0].Chunk != "partial" || events[0].Done {
		t.Errorf("Expected partial chunk first, got %+v", events[0])
	}
	if !events[1].Done {
		t.Errorf("Expected terminal event last, got %+v", events[1])
	}
}

func TestHandleChatStreamUnavailableBackend(t *testing.T) {
	r, _ := newTestRouter(generation.NewFallback())

	w := postChat(t, r, "/api/v1/chat/stream", `{"message":"Hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	events := decodeStreamEvents(t, w.Body.String())
	if len(events) != 2 {
		t.Fatalf("Expected one apology chunk plus terminal event, got %+v", events)
	}
	if events[0].Chunk != generation.UnavailableApology {
		t.Errorf("Expected unavailable apology, got %q", events[0].Chunk)
	}
	if !events[1].Done {
		t.Errorf("Expected terminal event last, got %+v", events[1])
	}
}

func TestHandleHealth(t *testing.T) {
	r, _ := newTestRouter(generation.NewFallback())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var got map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", got["status"])
	}
	if got["genai_available"] != false {
		t.Errorf("Expected genai_available=false with no credential, got %v", got["genai_available"])
	}
	if got["cache_stale"] != true {
		t.Errorf("Expected cache_stale=true before any request, got %v", got["cache_stale"])
	}
	if got["last_refresh"] != nil {
		t.Errorf("Expected last_refresh=null before any refresh, got %v", got["last_refresh"])
	}
}

func TestHandleHealthAfterChatRequest(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{text: "ok", available: true})

	postChat(t, r, "/api/v1/chat", `{"message":"Hi"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["genai_available"] != true {
		t.Errorf("Expected genai_available=true, got %v", got["genai_available"])
	}
	if got["cache_stale"] != false {
		t.Errorf("Expected cache_stale=false right after a request, got %v", got["cache_stale"])
	}
	if _, ok := got["last_refresh"].(string); !ok {
		t.Errorf("Expected last_refresh timestamp, got %v", got["last_refresh"])
	}
}

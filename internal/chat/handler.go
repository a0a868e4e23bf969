package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nexus-backend/internal/api"
	"nexus-backend/internal/domain"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// Handler exposes the public chat endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new chat handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the public chat routes (no auth required).
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/chat", func(r chi.Router) {
		r.Post("/", h.HandleChat)
		r.Post("/stream", h.HandleChatStream)
		r.Get("/health", h.HandleHealth)
	})
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (*domain.ChatRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return &req, true
}

// HandleChat handles POST /api/v1/chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.Answer(r.Context(), req.Message)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			api.Error(w, http.StatusBadRequest, ve.Message)
			return
		}
		slog.Error("Chat request failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("Chat response generated",
		"cached", resp.Cached,
		"session_id", req.SessionID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	api.JSON(w, http.StatusOK, resp)
}

// HandleChatStream handles POST /api/v1/chat/stream requests. Validation
// failures still answer with a plain 400; once the stream starts, every
// outcome ends with a single terminal event on a 200 response.
func (h *Handler) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	// The producer runs on the request context, so a client disconnect
	// stops backend stream consumption promptly.
	producer, cached, err := h.svc.AnswerStream(r.Context(), req.Message)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			api.Error(w, http.StatusBadRequest, ve.Message)
			return
		}
		slog.Error("Chat stream request failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	emitter, err := NewEmitter(w)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	streamID := uuid.NewString()
	chunks := 0
	for chunk, err := range producer {
		if err != nil {
			// Treat remaining output as complete; the terminal event
			// below still closes the stream normally.
			slog.Error("Chat stream source failed", "stream_id", streamID, "chunks", chunks, "error", err)
			break
		}
		if chunk == "" {
			continue
		}
		if emitErr := emitter.Emit(chunk); emitErr != nil {
			slog.Warn("Chat stream write failed, client likely disconnected",
				"stream_id", streamID, "chunks", chunks, "error", emitErr)
			return
		}
		chunks++
	}

	if err := emitter.Close(); err != nil {
		slog.Warn("Chat stream terminal event failed", "stream_id", streamID, "error", err)
		return
	}

	slog.Info("Chat stream completed",
		"stream_id", streamID,
		"cached", cached,
		"chunks", chunks,
		"response_length", len(emitter.Text()),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// HandleHealth handles GET /api/v1/chat/health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var lastRefresh interface{}
	if t, ok := h.svc.LastRefresh(); ok {
		lastRefresh = t.UTC().Format(time.RFC3339)
	}

	api.JSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"genai_available": h.svc.GenAvailable(),
		"cache_stale":     h.svc.CacheStale(),
		"last_refresh":    lastRefresh,
	})
}

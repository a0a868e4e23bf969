// Package domain contains core domain types for the portfolio chat backend.
package domain

// ChatRequest is the body of the public chat endpoints.
type ChatRequest struct {
	Message string `json:"message"`
	// SessionID is accepted for forward compatibility with conversational
	// state but is not used by the pipeline yet.
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the single-shot chat reply.
type ChatResponse struct {
	Status    string `json:"status"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	Cached    bool   `json:"cached"`
}

// StreamEvent is one frame of the chat event stream. Chunk carries the full
// text accumulated so far (cumulative, not a delta); receivers replace their
// buffer on every event. Exactly one event with Done=true ends a stream, and
// that event carries no chunk.
type StreamEvent struct {
	Chunk string `json:"chunk,omitempty"`
	Done  bool   `json:"done"`
}

// PromptPayload is the structured prompt handed to the generation backend.
// Key order in the serialized form is irrelevant to the backend.
type PromptPayload struct {
	Timestamp  string            `json:"timestamp"`
	Context    map[string]string `json:"context"`
	UserPrompt string            `json:"user_prompt"`
}

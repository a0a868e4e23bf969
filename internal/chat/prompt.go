package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"nexus-backend/internal/domain"
)

// BuildPrompt assembles the structured prompt handed to the generation
// backend: current timestamp, the knowledge mapping, and the user's trimmed
// message, serialized as JSON.
func BuildPrompt(now time.Time, knowledge map[string]string, message string) (string, error) {
	payload := domain.PromptPayload{
		Timestamp:  now.UTC().Format(time.RFC3339),
		Context:    knowledge,
		UserPrompt: message,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal prompt payload: %w", err)
	}
	return string(data), nil
}

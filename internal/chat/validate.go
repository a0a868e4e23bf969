package chat

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the maximum accepted message length in characters.
const MaxMessageLength = 2000

// ValidateMessage trims the raw message and enforces the public input rules.
// It runs before any cache or backend work on both entry points.
func ValidateMessage(raw string) (string, error) {
	message := strings.TrimSpace(raw)
	if message == "" {
		return "", &ValidationError{Reason: ReasonEmpty, Message: "Message cannot be empty"}
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return "", &ValidationError{Reason: ReasonTooLong, Message: "Message too long (max 2000 characters)"}
	}
	return message, nil
}

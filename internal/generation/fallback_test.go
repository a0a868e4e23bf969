package generation

import (
	"context"
	"testing"
)

func TestFallbackGenerate(t *testing.T) {
	f := NewFallback()

	text, err := f.Generate(context.Background(), `{"user_prompt":"hi"}`, "instructions")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != UnavailableApology {
		t.Errorf("Expected the fixed apology, got %q", text)
	}
	if f.Available() {
		t.Error("Expected Available to report false")
	}
}

func TestFallbackGenerateStream(t *testing.T) {
	f := NewFallback()

	var chunks []string
	for chunk, err := range f.GenerateStream(context.Background(), "{}", "") {
		if err != nil {
			t.Fatalf("Unexpected stream error: %v", err)
		}
		chunks = append(chunks, chunk)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected a one-chunk stream, got %d chunks", len(chunks))
	}
	if chunks[0] != UnavailableApology {
		t.Errorf("Expected the fixed apology chunk, got %q", chunks[0])
	}
}

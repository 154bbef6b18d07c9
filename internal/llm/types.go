package llm

import (
	"context"
)

// Embedder defines the interface for converting text to vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// ChatRequest carries everything a completion call needs. MaxTokens of zero
// means "let the provider decide".
type ChatRequest struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Messages    []Message
}

// ChatModel defines the interface for issuing chat completions.
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// SystemUser is a convenience constructor for the common two-message shape.
func SystemUser(system, user string) []Message {
	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

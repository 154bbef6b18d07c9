package llm

import (
	"context"
	"fmt"
	"strings"
)

type EmbedderOptions struct {
	Provider  string
	APIKey    string
	Model     string
	Dimension int
	BaseURL   string
}

func NewEmbedder(ctx context.Context, opts EmbedderOptions) (Embedder, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		return NewOpenAIEmbedder(opts.APIKey, opts.Model, opts.Dimension, opts.BaseURL), nil
	case "gemini":
		return NewGeminiEmbedder(ctx, opts.APIKey, opts.Model, opts.Dimension)
	case "ollama":
		return NewOllamaEmbedder(opts.Model, opts.Dimension, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", opts.Provider)
	}
}

type ChatOptions struct {
	Provider string
	APIKey   string
	BaseURL  string
}

func NewChatModel(ctx context.Context, opts ChatOptions) (ChatModel, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		return NewOpenAIChat(opts.APIKey, opts.BaseURL), nil
	case "gemini":
		return NewGeminiChat(ctx, opts.APIKey)
	case "ollama":
		return NewOllamaChat(opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", opts.Provider)
	}
}

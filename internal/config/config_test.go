package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "rag.db", cfg.Store.Path)
		assert.Equal(t, 3, cfg.Retrieval.MinProjectFloor)
		assert.Equal(t, 3, cfg.Retrieval.MinProjectDivisor)
		assert.Equal(t, 0.92, cfg.Retrieval.SimilarityFlagAt)
		assert.Equal(t, "gpt-4o-mini", cfg.AI.ChatModel)
		assert.Equal(t, 0.2, cfg.AI.Temperature)
	})

	t.Run("yaml values load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
store:
  path: custom.db
ai:
  provider: ollama
  base_url: http://localhost:11434
  chat_model: llama3
rerank:
  url: http://localhost:8080
  model: bge-reranker
retrieval:
  similarity_flag_at: 0.85
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "custom.db", cfg.Store.Path)
		assert.Equal(t, "ollama", cfg.AI.Provider)
		assert.Equal(t, "llama3", cfg.AI.ChatModel)
		assert.Equal(t, "http://localhost:8080", cfg.Rerank.URL)
		assert.Equal(t, 0.85, cfg.Retrieval.SimilarityFlagAt)
	})

	t.Run("environment overrides win", func(t *testing.T) {
		t.Setenv("RAG_API_KEY", "sk-test")
		t.Setenv("RAG_AI_PROVIDER", "openai")
		t.Setenv("RAG_STORE_PATH", "env.db")
		t.Setenv("RAG_TEMPERATURE", "0.9")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "sk-test", cfg.AI.APIKey)
		assert.Equal(t, "openai", cfg.AI.Provider)
		assert.Equal(t, "env.db", cfg.Store.Path)
		assert.Equal(t, 0.9, cfg.AI.Temperature)
	})
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store struct {
		Path string `yaml:"path"` // SQLite database file
	} `yaml:"store"`
	AI struct {
		Provider       string  `yaml:"provider"` // openai | gemini | ollama
		APIKey         string  `yaml:"api_key"`
		BaseURL        string  `yaml:"base_url"`
		EmbedModel     string  `yaml:"embed_model"`
		EmbedDimension int     `yaml:"embed_dimension"`
		ChatModel      string  `yaml:"chat_model"`
		Temperature    float64 `yaml:"temperature"`
	} `yaml:"ai"`
	Rerank struct {
		URL   string `yaml:"url"`   // cross-encoder endpoint; empty disables reranking
		Model string `yaml:"model"` // model name passed to the rerank service
	} `yaml:"rerank"`
	Retrieval struct {
		MinProjectFloor   int     `yaml:"min_project_floor"`   // floor of the minimum project-source share
		MinProjectDivisor int     `yaml:"min_project_divisor"` // top_k / divisor is the proportional share
		SimilarityFlagAt  float64 `yaml:"similarity_flag_at"`  // sentence-similarity threshold for the copy flag
	} `yaml:"retrieval"`
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config; a missing file falls back to env and defaults
	var cfg Config
	file, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	}

	// 3. Override with Environment Variables if present
	if apiKey := os.Getenv("RAG_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("RAG_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if url := os.Getenv("RAG_RERANK_URL"); url != "" {
		cfg.Rerank.URL = url
	}
	if storePath := os.Getenv("RAG_STORE_PATH"); storePath != "" {
		cfg.Store.Path = storePath
	}
	if temp := os.Getenv("RAG_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			cfg.AI.Temperature = v
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// The minimum-share rule and the similarity threshold came out of production
// tuning; they stay configurable instead of being baked-in constants.
func (c *Config) applyDefaults() {
	if c.Store.Path == "" {
		c.Store.Path = "rag.db"
	}
	if c.Retrieval.MinProjectFloor <= 0 {
		c.Retrieval.MinProjectFloor = 3
	}
	if c.Retrieval.MinProjectDivisor <= 0 {
		c.Retrieval.MinProjectDivisor = 3
	}
	if c.Retrieval.SimilarityFlagAt <= 0 {
		c.Retrieval.SimilarityFlagAt = 0.92
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = 0.2
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = "gpt-4o-mini"
	}
}

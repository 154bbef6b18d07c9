// Package tokens computes safe output-token allowances for a model and
// prompt, and fills context windows under a fixed token ceiling.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// ModelCaps describes one registry entry: a short id mapped to the concrete
// model plus its context window and completion cap.
type ModelCaps struct {
	ID                  string `json:"id"`
	Label               string `json:"label"`
	ModelName           string `json:"model_name"`
	ContextTokens       int    `json:"context_tokens"`
	MaxCompletionTokens int    `json:"max_completion_tokens"`
}

// Registry holds the curated model set exposed to callers. Unrecognized
// model names resolve to the "fast" entry.
var Registry = map[string]ModelCaps{
	"fast": {
		ID:                  "fast",
		Label:               "Fast (cheap)",
		ModelName:           "gpt-4o-mini",
		ContextTokens:       128000,
		MaxCompletionTokens: 4096,
	},
	"balanced": {
		ID:                  "balanced",
		Label:               "Balanced",
		ModelName:           "gpt-4o",
		ContextTokens:       128000,
		MaxCompletionTokens: 8192,
	},
	"verbose": {
		ID:                  "verbose",
		Label:               "Verbose",
		ModelName:           "gpt-4.1",
		ContextTokens:       128000,
		MaxCompletionTokens: 8192,
	},
}

// CapsForModel looks a model name up in the registry, defaulting to "fast".
func CapsForModel(modelName string) ModelCaps {
	for _, m := range Registry {
		if m.ModelName == modelName {
			return m
		}
	}
	return Registry["fast"]
}

var (
	encOnce sync.Once
	encoder *tiktoken.Tiktoken
)

// Count returns the cl100k_base token count of text. Deterministic for
// identical input; 0 for empty text or when the encoding is unavailable.
func Count(text string) int {
	encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = enc
		}
	})
	if encoder == nil || text == "" {
		return 0
	}
	return len(encoder.Encode(text, nil, nil))
}

// CalcMaxOutputTokens computes the output allowance for a prompt: never above
// the model's completion cap, never below 1024 tokens of headroom, and at
// least targetMin when the remaining context allows it.
func CalcMaxOutputTokens(promptText, modelName string, safetyMargin, targetMin int) int {
	caps := CapsForModel(modelName)
	available := caps.ContextTokens - Count(promptText) - safetyMargin
	if available < 1024 {
		available = 1024
	}
	out := available
	if out > caps.MaxCompletionTokens {
		out = caps.MaxCompletionTokens
	}
	if out < targetMin {
		out = targetMin
	}
	if out > caps.MaxCompletionTokens {
		out = caps.MaxCompletionTokens
	}
	return out
}

// FillContextWindow greedily appends passages in ranked order until the next
// passage would exceed the budget; that passage is dropped whole and
// iteration stops. No partial-passage truncation.
func FillContextWindow(passages []string, budget int) []string {
	var out []string
	used := 0
	for _, p := range passages {
		cost := Count(p)
		if used+cost > budget {
			break
		}
		out = append(out, p)
		used += cost
	}
	return out
}

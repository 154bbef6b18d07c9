package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CrossEncoderClient scores pairs against a text-embeddings-inference style
// rerank endpoint (POST /rerank).
type CrossEncoderClient struct {
	client   *http.Client
	endpoint string
	model    string
}

type rerankRequest struct {
	Model string   `json:"model,omitempty"`
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func NewCrossEncoderClient(baseURL, model string) *CrossEncoderClient {
	url := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasSuffix(url, "/rerank") {
		url += "/rerank"
	}
	return &CrossEncoderClient{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		endpoint: url,
		model:    model,
	}
}

func (c *CrossEncoderClient) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	// Empty batches are undefined behavior for most model servers; short-circuit.
	if len(candidates) == 0 {
		return []float64{}, nil
	}

	body, err := json.Marshal(rerankRequest{Model: c.model, Query: query, Texts: candidates})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rerank request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed []rerankResult
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	if len(parsed) != len(candidates) {
		return nil, fmt.Errorf("rerank score count mismatch: got %d, expected %d", len(parsed), len(candidates))
	}

	scores := make([]float64, len(candidates))
	for _, r := range parsed {
		if r.Index < 0 || r.Index >= len(scores) {
			return nil, fmt.Errorf("rerank returned out-of-range index %d", r.Index)
		}
		scores[r.Index] = r.Score
	}
	return scores, nil
}

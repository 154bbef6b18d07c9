package draft

import (
	"context"

	"github.com/zacharybinks/RAG/internal/llm"
	"github.com/zacharybinks/RAG/internal/vectorstore"
)

// Similarity reports how close the draft gets to the example passages it was
// styled after. Flag is set when Max crosses the configured threshold.
type Similarity struct {
	Max  float64 `json:"max"`
	Flag bool    `json:"flag"`
}

// MaxSentenceSimilarity computes the maximum pairwise cosine similarity
// between draft sentences and example-passage sentences. Either side being
// empty yields {0, false} without an embedding call.
func MaxSentenceSimilarity(ctx context.Context, embedder llm.Embedder, draftHTML string, examplePassages []string, threshold float64) (Similarity, error) {
	draftSents := sentences(StripHTML(draftHTML))

	var exSents []string
	for _, p := range examplePassages {
		exSents = append(exSents, sentences(p)...)
	}
	if len(draftSents) == 0 || len(exSents) == 0 {
		return Similarity{}, nil
	}

	draftEmb, err := embedder.Embed(ctx, draftSents)
	if err != nil {
		return Similarity{}, err
	}
	exEmb, err := embedder.Embed(ctx, exSents)
	if err != nil {
		return Similarity{}, err
	}

	var max float64
	for _, d := range draftEmb {
		for _, e := range exEmb {
			if sim := float64(vectorstore.CosineSimilarity(d, e)); sim > max {
				max = sim
			}
		}
	}
	return Similarity{Max: max, Flag: max >= threshold}, nil
}

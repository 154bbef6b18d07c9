// Package rerank scores query/passage pairs with a cross-encoder to refine
// the ordering produced by first-stage vector retrieval.
package rerank

import (
	"context"
	"sort"
)

// Reranker returns one relevance score per candidate, in input order.
// Higher is more relevant.
type Reranker interface {
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// Passthrough keeps first-stage retrieval order: scores decrease with input
// position. Used when no cross-encoder endpoint is configured.
type Passthrough struct{}

func (Passthrough) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	scores := make([]float64, len(candidates))
	for i := range scores {
		scores[i] = float64(len(candidates) - i)
	}
	return scores, nil
}

// Order returns candidate indices sorted by descending score, stable with
// respect to input order on exact ties.
func Order(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	return idx
}

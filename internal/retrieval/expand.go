package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/zacharybinks/RAG/internal/llm"
)

const expandPromptTemplate = `You are assisting with information retrieval.
Create %d diverse paraphrases of the following query to improve document recall.
Return each paraphrase on its own line, no numbering, no extra text.

Query:
%s
`

// ExpandQueries asks the planner model for n paraphrases of the base query
// and returns the base query followed by up to n distinct variants. The
// expansion never fails: an unusable model response degrades to just the
// base query.
func ExpandQueries(ctx context.Context, planner *llm.BoundChat, baseQuery string, n int) []string {
	if n <= 0 {
		n = 3
	}

	var variants []string
	text, err := planner.Complete(ctx, 400, []llm.Message{
		{Role: "user", Content: fmt.Sprintf(expandPromptTemplate, n, baseQuery)},
	})
	if err == nil {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				variants = append(variants, line)
			}
		}
	}

	seen := make(map[string]bool, n+1)
	uniq := make([]string, 0, n+1)
	for _, q := range append([]string{baseQuery}, variants...) {
		if seen[q] {
			continue
		}
		seen[q] = true
		uniq = append(uniq, q)
	}
	if len(uniq) > n+1 {
		uniq = uniq[:n+1]
	}
	return uniq
}

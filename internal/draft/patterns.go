package draft

import (
	"context"
	"fmt"
	"strings"

	"github.com/zacharybinks/RAG/internal/llm"
)

const patternsSystem = "You extract reusable writing patterns from proposal sections " +
	"(structure, rhetorical moves, metric types). " +
	"Do NOT copy sentences. Output concise bullet points under ~250 tokens."

const patternsPrompt = `You will summarize writing patterns for the ` + "`%s`" + ` section of a government proposal.
Return concise bullet points that cover:
- Typical H2/H3 ordering
- Common proof types (metrics, certifications, tools)
- Rhetorical moves (contrast, benefit-led phrasing, risk mitigation)
- Neutral phrase templates with variables (e.g., "We will <action> to achieve <metric> within <time>")
Do not include any real organization or person names.

Passages to analyze:
%s
`

const noPassagesPlaceholder = "(No passages available. Provide generic, section-typical patterns.)"

// ExtractPatterns distills compact, reusable writing patterns from example
// passages. At most six passages feed the prompt; with none, the model is
// asked for section-typical guidance instead.
func ExtractPatterns(ctx context.Context, chat *llm.BoundChat, sectionKey string, passages []string) (string, error) {
	var cleaned []string
	for _, p := range passages {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
		if len(cleaned) == 6 {
			break
		}
	}

	joined := strings.Join(cleaned, "\n\n---\n\n")
	if joined == "" {
		joined = noPassagesPlaceholder
	}
	return chat.Complete(ctx, 0, llm.SystemUser(patternsSystem, fmt.Sprintf(patternsPrompt, sectionKey, joined)))
}

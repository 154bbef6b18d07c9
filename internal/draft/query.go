package draft

import (
	"context"
	"fmt"
	"strings"

	"github.com/zacharybinks/RAG/internal/llm"
	"github.com/zacharybinks/RAG/internal/retrieval"
	"github.com/zacharybinks/RAG/internal/tokens"
)

// ChatTurn is one prior (user, assistant) exchange.
type ChatTurn struct {
	User      string
	Assistant string
}

// ChatLog persists a project's conversation. Appends are immutable; history
// is returned oldest first.
type ChatLog interface {
	Append(ctx context.Context, projectID, messageType, text string) error
	Turns(ctx context.Context, projectID string) ([]ChatTurn, error)
}

const defaultQuerySystem = "You are an expert proposal assistant for US Government RFPs. " +
	"Ground every claim in the provided context."

// Retrieved context feeding a long-form answer is capped per source so a
// large corpus cannot crowd out the instructions and history.
const queryContextBudget = 16000

const queryInstructions = `**INSTRUCTIONS:**
- Write a thorough, detailed answer with concrete references to the provided context.
- Use structured Markdown (headers, bullet lists, tables where useful).
- Include assumptions, dependencies, and risks when applicable.
- Provide explicit sectioned reasoning and avoid generic filler.
- Aim for at least 1,000-2,000 words if the question warrants it.
**RESPONSE:**`

// AnswerQuery is the long-form project query path: full retrieval pipeline,
// prior conversation folded into the prompt, and a token-safe output cap.
func (d *Drafter) AnswerQuery(ctx context.Context, chatLog ChatLog, projectID, query string, useKB bool) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is required")
	}
	if chatLog != nil {
		if err := chatLog.Append(ctx, projectID, "query", query); err != nil {
			return "", fmt.Errorf("failed to record query: %w", err)
		}
	}

	rctx, err := d.retriever.ProjectContext(ctx, projectID, useKB, query)
	if err != nil {
		return "", err
	}

	var history []string
	if chatLog != nil {
		turns, err := chatLog.Turns(ctx, projectID)
		if err != nil {
			return "", err
		}
		for _, t := range turns {
			history = append(history, fmt.Sprintf("User: %s\nAssistant: %s", t.User, t.Assistant))
		}
	}

	projectContext := strings.Join(tokens.FillContextWindow(passageTexts(rctx.Project), queryContextBudget), "\n")
	kbContext := strings.Join(tokens.FillContextWindow(passageTexts(rctx.KB), queryContextBudget), "\n")

	systemPrompt := d.resolver.SystemPrompt(ctx, projectID, defaultQuerySystem)

	var b strings.Builder
	b.WriteString(systemPrompt)
	if useKB {
		fmt.Fprintf(&b, "\n\n**CONTEXT FROM RFP DOCUMENTS:**\n%s\n", projectContext)
		fmt.Fprintf(&b, "\n**CONTEXT FROM KNOWLEDGE BASE:**\n%s\n", kbContext)
	} else {
		fmt.Fprintf(&b, "\n\n**CONTEXT FROM DOCUMENTS:**\n%s\n", projectContext)
	}
	fmt.Fprintf(&b, "\n**PREVIOUS CONVERSATION:**\n%s\n", strings.Join(history, "\n"))
	fmt.Fprintf(&b, "\n**CURRENT QUESTION:**\n%s\n\n", query)
	b.WriteString(queryInstructions)
	prompt := b.String()

	model, temperature := d.resolver.Resolve(ctx, projectID)
	chat, err := d.pool.Get(model, temperature)
	if err != nil {
		return "", err
	}
	maxOut := tokens.CalcMaxOutputTokens(prompt, model, 2000, 3000)
	answer, err := chat.Complete(ctx, maxOut, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}

	if chatLog != nil {
		if err := chatLog.Append(ctx, projectID, "answer", answer); err != nil {
			return "", fmt.Errorf("failed to record answer: %w", err)
		}
	}
	return answer, nil
}

func passageTexts(passages []retrieval.Passage) []string {
	out := make([]string, len(passages))
	for i, p := range passages {
		out[i] = p.Text
	}
	return out
}

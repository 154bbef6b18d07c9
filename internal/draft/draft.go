// Package draft turns validated section instructions into HTML section
// drafts: retrieval-grounded generation followed by copying and compliance
// checks, with source provenance for every passage that informed the draft.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/zacharybinks/RAG/internal/instruction"
	"github.com/zacharybinks/RAG/internal/llm"
	"github.com/zacharybinks/RAG/internal/retrieval"
	"github.com/zacharybinks/RAG/internal/tokens"
)

const draftSystem = "You are a capture manager and principal proposal writer. " +
	"Follow the instruction JSON exactly, be compliant, specific, and evidence-driven. " +
	"Use headings (H2/H3). Do not include pricing. If relying on a snippet, reference it as [S1], [S2], ..."

const draftPrompt = `Instruction JSON:
%s

Patterns distilled from prior winning examples. Do not copy text:
%s

RFP/KB context snippets:
%s

Write the full section now.
`

// SourceAttribution records one passage that informed the draft.
type SourceAttribution struct {
	ID   string            `json:"id"`
	Kind string            `json:"kind"`
	Meta map[string]string `json:"meta"`
}

// Checks bundles the post-generation quality signals.
type Checks struct {
	Similarity Similarity    `json:"similarity"`
	Compliance []CheckResult `json:"compliance"`
}

// Output is a finished section draft with provenance and checks.
type Output struct {
	HTML    string              `json:"html"`
	Sources []SourceAttribution `json:"sources"`
	Checks  Checks              `json:"checks"`
}

// Drafter orchestrates section drafting end to end.
type Drafter struct {
	retriever *retrieval.Retriever
	resolver  *llm.Resolver
	pool      *llm.ClientPool
	embedder  llm.Embedder
	flagAt    float64
}

func NewDrafter(retriever *retrieval.Retriever, resolver *llm.Resolver, pool *llm.ClientPool, embedder llm.Embedder, flagAt float64) *Drafter {
	if flagAt <= 0 {
		flagAt = 0.92
	}
	return &Drafter{
		retriever: retriever,
		resolver:  resolver,
		pool:      pool,
		embedder:  embedder,
		flagAt:    flagAt,
	}
}

// DraftSection drafts one section per its instruction sheet. Generation
// failures are fatal; check failures degrade to zero-value results so a
// produced draft is never discarded over a failed quality signal.
func (d *Drafter) DraftSection(ctx context.Context, projectID string, inst *instruction.SectionInstruction, useKB bool, exampleIDs []string, filters map[string]string) (*Output, error) {
	queryHint := inst.Title
	if len(inst.MicroOutline) > 0 {
		outline := inst.MicroOutline
		if len(outline) > 4 {
			outline = outline[:4]
		}
		queryHint = inst.Title + " - " + strings.Join(outline, "; ")
	}

	rctx, err := d.retriever.ProjectContext(ctx, projectID, useKB, queryHint)
	if err != nil {
		return nil, err
	}

	exPassages, exMetas := d.retriever.ExamplePassages(
		ctx, inst.SectionKey, exampleIDs, filters, 8, inst.SectionKey+" patterns")

	model, temperature := d.resolver.Resolve(ctx, projectID)
	chat, err := d.pool.Get(model, temperature)
	if err != nil {
		return nil, err
	}

	patterns, err := ExtractPatterns(ctx, chat, inst.SectionKey, exPassages)
	if err != nil {
		return nil, fmt.Errorf("pattern distillation failed: %w", err)
	}

	instJSON, err := json.Marshal(inst)
	if err != nil {
		return nil, err
	}
	snippets := rctx.Snippets()
	if len(snippets) > 10 {
		snippets = snippets[:10]
	}
	prompt := fmt.Sprintf(draftPrompt, instJSON, patterns, strings.Join(snippets, "\n\n"))

	maxOut := tokens.CalcMaxOutputTokens(prompt, model, 2000, 1200)
	html, err := chat.Complete(ctx, maxOut, llm.SystemUser(draftSystem, prompt))
	if err != nil {
		return nil, fmt.Errorf("section draft failed: %w", err)
	}

	sim, err := MaxSentenceSimilarity(ctx, d.embedder, html, exPassages, d.flagAt)
	if err != nil {
		log.Printf("draft: similarity check unavailable: %v", err)
		sim = Similarity{}
	}
	comp := CheckCompliance(html, inst.ComplianceChecklist)

	metas := append(rctx.Metas(), exMetas...)
	sources := make([]SourceAttribution, 0, len(metas))
	for _, m := range metas {
		ref := m.Ref()
		sources = append(sources, SourceAttribution{
			ID:   ref.ID,
			Kind: string(ref.Kind),
			Meta: m.Fields(),
		})
	}

	return &Output{
		HTML:    html,
		Sources: sources,
		Checks:  Checks{Similarity: sim, Compliance: comp},
	}, nil
}

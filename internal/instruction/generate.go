package instruction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zacharybinks/RAG/internal/llm"
)

// System guidance for government proposal style.
const systemPrompt = "You are a senior proposal manager for US Government proposals. " +
	"Return only valid JSON for a SectionInstruction as per schema. " +
	"Use context excerpts to tailor must-include items and compliance cues. Avoid pricing."

const promptTemplate = `Generate a Section Instruction Sheet.
Keys: section_key, title, purpose, must_include, micro_outline, tone_rules, win_themes, evidence_prompts, compliance_checklist, length_hint_words, acceptance_criteria, gaps.
Section title: %s
Canonical key (if provided): %s
Context excerpts:
%s
`

// Default tone rules if the model does not populate them explicitly.
var defaultTone = []string{
	"formal plain-language",
	"active voice",
	"no colloquialisms",
	"evidence-led",
	"FAR-aware",
}

// History persists validated instructions as immutable per-section records.
type History interface {
	SaveInstruction(ctx context.Context, projectID string, inst *SectionInstruction) error
}

// Generator produces instruction sheets from outline items plus retrieved
// context.
type Generator struct {
	resolver *llm.Resolver
	pool     *llm.ClientPool
	history  History
}

func NewGenerator(resolver *llm.Resolver, pool *llm.ClientPool, history History) *Generator {
	return &Generator{resolver: resolver, pool: pool, history: history}
}

// Build creates a SectionInstruction for a single outline item. Parse and
// validation failures are fatal for the request and carry the raw model
// output; they are never replaced with a default instruction.
func (g *Generator) Build(ctx context.Context, projectID, title, key string, contextSnippets []string) (*SectionInstruction, error) {
	if len(contextSnippets) > 8 {
		contextSnippets = contextSnippets[:8]
	}
	ctxText := strings.Join(contextSnippets, "\n\n")

	model, temperature := g.resolver.Resolve(ctx, projectID)
	chat, err := g.pool.Get(model, temperature)
	if err != nil {
		return nil, err
	}
	raw, err := chat.Complete(ctx, 0, llm.SystemUser(systemPrompt, fmt.Sprintf(promptTemplate, title, key, ctxText)))
	if err != nil {
		return nil, fmt.Errorf("instruction generation failed: %w", err)
	}

	inst, err := ParseAndValidate(raw)
	if err != nil {
		return nil, err
	}

	// Harden required fields after validation.
	if len(inst.ToneRules) == 0 {
		inst.ToneRules = append([]string{}, defaultTone...)
	}
	if inst.SectionKey == "" {
		if key != "" {
			inst.SectionKey = strings.ReplaceAll(key, "/", "_")
		} else {
			inst.SectionKey = KeyFromTitle(title)
		}
	}
	if inst.Title == "" {
		inst.Title = title
	}

	if g.history != nil {
		if err := g.history.SaveInstruction(ctx, projectID, inst); err != nil {
			return nil, fmt.Errorf("failed to persist instruction: %w", err)
		}
	}
	return inst, nil
}

// ParseAndValidate runs the parse -> normalize -> validate chain on raw model
// output.
func ParseAndValidate(raw string) (*SectionInstruction, error) {
	value, err := ParseJSON(raw)
	if err != nil {
		return nil, err
	}
	obj := Normalize(value)
	if obj == nil {
		return nil, &ParseError{Raw: raw}
	}

	inst, err := decodeStrict(obj)
	if err != nil {
		// One repair pass: re-serialize the normalized object and decode
		// leniently before giving up.
		inst, err = decodeLenient(obj)
		if err != nil {
			return nil, fmt.Errorf("instruction failed schema validation: %w", err)
		}
	}
	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("instruction failed schema validation: %w", err)
	}
	return inst, nil
}

func decodeStrict(obj map[string]any) (*SectionInstruction, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var inst SectionInstruction
	if err := dec.Decode(&inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func decodeLenient(obj map[string]any) (*SectionInstruction, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var inst SectionInstruction
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

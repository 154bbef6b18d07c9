// Package instruction generates the structured per-section writing brief
// consumed by drafting, normalizing the model's JSON output into a fixed
// schema before strict validation.
package instruction

import (
	"fmt"
)

// LengthHint bounds the section's word count.
type LengthHint struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SectionInstruction is the strict machine-usable directive for writing one
// proposal section. This JSON shape is the one structural contract that must
// round-trip exactly for downstream consumers.
type SectionInstruction struct {
	SectionKey          string     `json:"section_key"`
	Title               string     `json:"title"`
	Purpose             string     `json:"purpose"`
	MustInclude         []string   `json:"must_include"`
	MicroOutline        []string   `json:"micro_outline"`
	ToneRules           []string   `json:"tone_rules"`
	WinThemes           []string   `json:"win_themes"`
	EvidencePrompts     []string   `json:"evidence_prompts"`
	ComplianceChecklist []string   `json:"compliance_checklist"`
	LengthHintWords     LengthHint `json:"length_hint_words"`
	AcceptanceCriteria  []string   `json:"acceptance_criteria"`
	Gaps                []string   `json:"gaps"`
}

// Validate enforces the schema invariants after normalization.
func (s *SectionInstruction) Validate() error {
	if s.LengthHintWords.Min <= 0 || s.LengthHintWords.Max <= 0 {
		return fmt.Errorf("length_hint_words bounds must be positive, got {%d, %d}", s.LengthHintWords.Min, s.LengthHintWords.Max)
	}
	if s.LengthHintWords.Min > s.LengthHintWords.Max {
		return fmt.Errorf("length_hint_words min %d exceeds max %d", s.LengthHintWords.Min, s.LengthHintWords.Max)
	}
	// List fields are empty lists, never absent, after normalization.
	for name, list := range map[string]*[]string{
		"must_include":         &s.MustInclude,
		"micro_outline":        &s.MicroOutline,
		"tone_rules":           &s.ToneRules,
		"win_themes":           &s.WinThemes,
		"evidence_prompts":     &s.EvidencePrompts,
		"compliance_checklist": &s.ComplianceChecklist,
		"acceptance_criteria":  &s.AcceptanceCriteria,
		"gaps":                 &s.Gaps,
	} {
		if *list == nil {
			return fmt.Errorf("%s must not be null", name)
		}
	}
	return nil
}

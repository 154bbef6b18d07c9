// Package retrieval runs expanded queries against the project, knowledge-base
// and example collections, deduplicates and re-ranks the results, and
// allocates the context budget between sources.
package retrieval

import (
	"strconv"
)

// Kind tags a passage's originating collection.
type Kind string

const (
	KindRFP     Kind = "RFP"
	KindKB      Kind = "KB"
	KindExample Kind = "EX"
)

// Ref is the common accessor shared by all metadata variants.
type Ref struct {
	ID     string
	Kind   Kind
	Source string
	Page   int
}

// Meta is the tagged metadata variant attached to a retrieved passage.
type Meta interface {
	Ref() Ref
	// Fields flattens the variant for source attributions.
	Fields() map[string]string
}

// RfpMeta describes a chunk from the project's own document corpus.
type RfpMeta struct {
	ID     string
	Source string
	Page   int
}

func (m RfpMeta) Ref() Ref {
	return Ref{ID: m.ID, Kind: KindRFP, Source: m.Source, Page: m.Page}
}

func (m RfpMeta) Fields() map[string]string {
	return map[string]string{"source": m.Source, "page": strconv.Itoa(m.Page)}
}

// KbMeta describes a chunk from the shared knowledge base.
type KbMeta struct {
	ID     string
	Source string
	Page   int
}

func (m KbMeta) Ref() Ref {
	return Ref{ID: m.ID, Kind: KindKB, Source: m.Source, Page: m.Page}
}

func (m KbMeta) Fields() map[string]string {
	return map[string]string{"source": m.Source, "page": strconv.Itoa(m.Page)}
}

// ExampleMeta describes a section passage from the example library.
type ExampleMeta struct {
	ID              string
	ExampleID       string
	SectionKey      string
	ClientType      string
	Domain          string
	ContractVehicle string
	ComplexityTier  string
}

func (m ExampleMeta) Ref() Ref {
	return Ref{ID: m.ID, Kind: KindExample, Source: m.ExampleID}
}

func (m ExampleMeta) Fields() map[string]string {
	out := map[string]string{
		"example_id":  m.ExampleID,
		"section_key": m.SectionKey,
	}
	if m.ClientType != "" {
		out["client_type"] = m.ClientType
	}
	if m.Domain != "" {
		out["domain"] = m.Domain
	}
	if m.ContractVehicle != "" {
		out["contract_vehicle"] = m.ContractVehicle
	}
	if m.ComplexityTier != "" {
		out["complexity_tier"] = m.ComplexityTier
	}
	return out
}

// Passage is one retrieval unit: text plus tagged metadata.
type Passage struct {
	Text string
	Meta Meta
}

type dedupeKey struct {
	text   string
	source string
	page   int
}

// Dedupe removes duplicates by (text, source, page), preserving first-seen
// order. Idempotent.
func Dedupe(passages []Passage) []Passage {
	seen := make(map[dedupeKey]bool, len(passages))
	out := make([]Passage, 0, len(passages))
	for _, p := range passages {
		ref := p.Meta.Ref()
		key := dedupeKey{text: p.Text, source: ref.Source, page: ref.Page}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

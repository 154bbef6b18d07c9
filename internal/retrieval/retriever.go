package retrieval

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/zacharybinks/RAG/internal/llm"
	"github.com/zacharybinks/RAG/internal/rerank"
	"github.com/zacharybinks/RAG/internal/vectorstore"
)

const (
	// KnowledgeBaseCollection is the shared cross-project corpus.
	KnowledgeBaseCollection = "knowledge_base"
	// ExamplesCollection holds section passages from past winning proposals.
	ExamplesCollection = "proposal_examples"

	// candidateK is the per-variant fetch size feeding the re-ranker.
	candidateK = 50
)

// Retriever runs the retrieval pipeline against the vector store.
type Retriever struct {
	store    vectorstore.Store
	reranker rerank.Reranker
	resolver *llm.Resolver
	pool     *llm.ClientPool
	rule     ShareRule
}

func NewRetriever(store vectorstore.Store, reranker rerank.Reranker, resolver *llm.Resolver, pool *llm.ClientPool, rule ShareRule) *Retriever {
	return &Retriever{
		store:    store,
		reranker: reranker,
		resolver: resolver,
		pool:     pool,
		rule:     rule,
	}
}

// Context is the allocated retrieval result for one drafting or query request.
type Context struct {
	Project []Passage
	KB      []Passage
}

func (c Context) ProjectText() string { return joinTexts(c.Project) }
func (c Context) KBText() string      { return joinTexts(c.KB) }

// Snippets returns project passages followed by kb passages.
func (c Context) Snippets() []string {
	out := make([]string, 0, len(c.Project)+len(c.KB))
	for _, p := range c.Project {
		out = append(out, p.Text)
	}
	for _, p := range c.KB {
		out = append(out, p.Text)
	}
	return out
}

func (c Context) Metas() []Meta {
	out := make([]Meta, 0, len(c.Project)+len(c.KB))
	for _, p := range c.Project {
		out = append(out, p.Meta)
	}
	for _, p := range c.KB {
		out = append(out, p.Meta)
	}
	return out
}

func joinTexts(passages []Passage) string {
	parts := make([]string, len(passages))
	for i, p := range passages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// ProjectContext runs the full pipeline: query expansion, dual-collection
// retrieval, dedup, re-ranking against the original query, and source-budget
// allocation under the minimum project share.
func (r *Retriever) ProjectContext(ctx context.Context, projectID string, useKB bool, queryText string) (Context, error) {
	model, _ := r.resolver.Resolve(ctx, projectID)
	planner, err := r.pool.Get(model, 0.1)
	if err != nil {
		return Context{}, err
	}
	queries := ExpandQueries(ctx, planner, queryText, 3)

	var projectAll, kbAll []Passage
	for _, q := range queries {
		projectAll = append(projectAll, r.queryCollection(ctx, projectID, q, candidateK, KindRFP, nil)...)
		if useKB {
			kbAll = append(kbAll, r.queryCollection(ctx, KnowledgeBaseCollection, q, candidateK, KindKB, nil)...)
		}
	}

	projectDocs := Dedupe(projectAll)
	kbDocs := Dedupe(kbAll)

	union := append(append([]Passage{}, projectDocs...), kbDocs...)
	var ranked []Passage
	if len(union) > 0 {
		texts := make([]string, len(union))
		for i, p := range union {
			texts[i] = p.Text
		}
		// Re-rank against the original query, not the expanded variants.
		scores, err := r.reranker.Score(ctx, queryText, texts)
		if err != nil {
			return Context{}, fmt.Errorf("failed to rerank candidates: %w", err)
		}
		for _, idx := range rerank.Order(scores) {
			ranked = append(ranked, union[idx])
		}
	}

	topK := TopKForSize(r.resolver.ContextSize(ctx, projectID))
	project, kb := Allocate(ranked, topK, r.rule)
	return Context{Project: project, KB: kb}, nil
}

// lightKForSize maps context size to the lighter instruction-context budget.
func lightKForSize(size string) int {
	switch size {
	case "low":
		return 8
	case "high":
		return 18
	default:
		return 12
	}
}

// LightContext returns the top deduplicated project (and optional KB)
// passages without expansion or re-ranking. Instruction sheets need a broad
// hint of context, not maximal precision.
func (r *Retriever) LightContext(ctx context.Context, projectID string, useKB bool, queryText string, k int) ([]string, []Meta) {
	nk := k
	if nk <= 0 {
		nk = lightKForSize(r.resolver.ContextSize(ctx, projectID))
	}

	passages := r.queryCollection(ctx, projectID, queryText, nk, KindRFP, nil)
	if useKB {
		kbK := nk / 3
		if kbK < 4 {
			kbK = 4
		}
		passages = append(passages, r.queryCollection(ctx, KnowledgeBaseCollection, queryText, kbK, KindKB, nil)...)
	}
	passages = Dedupe(passages)

	snippets := make([]string, len(passages))
	metas := make([]Meta, len(passages))
	for i, p := range passages {
		snippets[i] = p.Text
		metas[i] = p.Meta
	}
	return snippets, metas
}

// ExamplePassages retrieves example-library passages for a section key with
// optional metadata filters and an optional restriction to specific example
// ids. When the store rejects the filtered query, it over-fetches and filters
// client-side, which yields the same result set as native filtering.
func (r *Retriever) ExamplePassages(ctx context.Context, sectionKey string, exampleIDs []string, filters map[string]string, k int, queryText string) ([]string, []Meta) {
	where := &vectorstore.Filter{Equals: map[string]string{"section_key": sectionKey}}
	for key, v := range filters {
		if v != "" {
			where.Equals[key] = v
		}
	}
	if len(exampleIDs) > 0 {
		where.In = map[string][]string{"example_id": exampleIDs}
	}

	col, err := r.store.GetOrCreate(ctx, ExamplesCollection)
	if err != nil {
		log.Printf("retrieval: examples collection unavailable: %v", err)
		return nil, nil
	}

	results, err := col.Query(ctx, queryText, k, where)
	if err != nil {
		// Fallback for stores without set-membership filtering: over-fetch,
		// then apply every filter here.
		overK := k * 4
		if overK < 50 {
			overK = 50
		}
		all, ferr := col.Query(ctx, queryText, overK, nil)
		if ferr != nil {
			log.Printf("retrieval: example query failed: %v", ferr)
			return nil, nil
		}
		idSet := make(map[string]bool, len(exampleIDs))
		for _, id := range exampleIDs {
			idSet[id] = true
		}
		results = results[:0]
		for _, res := range all {
			if !where.Matches(res.Metadata) {
				continue
			}
			if len(idSet) > 0 && !idSet[res.Metadata["example_id"]] {
				continue
			}
			results = append(results, res)
			if len(results) >= k {
				break
			}
		}
	}

	passages := make([]Passage, 0, len(results))
	for _, res := range results {
		passages = append(passages, Passage{Text: res.Document, Meta: exampleMetaFrom(res)})
	}
	passages = Dedupe(passages)

	snippets := make([]string, len(passages))
	metas := make([]Meta, len(passages))
	for i, p := range passages {
		snippets[i] = p.Text
		metas[i] = p.Meta
	}
	return snippets, metas
}

// queryCollection is the best-effort per-collection fetch: any failure folds
// to an empty contribution with a logged warning so one unavailable
// collection cannot abort the whole pipeline.
func (r *Retriever) queryCollection(ctx context.Context, name, queryText string, k int, kind Kind, where *vectorstore.Filter) []Passage {
	col, err := r.store.GetOrCreate(ctx, name)
	if err != nil {
		log.Printf("retrieval: collection %q unavailable: %v", name, err)
		return nil
	}
	results, err := col.Query(ctx, queryText, k, where)
	if err != nil {
		log.Printf("retrieval: query against %q failed: %v", name, err)
		return nil
	}

	passages := make([]Passage, 0, len(results))
	for _, res := range results {
		page, _ := strconv.Atoi(res.Metadata["page"])
		var meta Meta
		if kind == KindKB {
			meta = KbMeta{ID: res.ID, Source: res.Metadata["source"], Page: page}
		} else {
			meta = RfpMeta{ID: res.ID, Source: res.Metadata["source"], Page: page}
		}
		passages = append(passages, Passage{Text: res.Document, Meta: meta})
	}
	return passages
}

func exampleMetaFrom(res vectorstore.Result) ExampleMeta {
	return ExampleMeta{
		ID:              res.ID,
		ExampleID:       res.Metadata["example_id"],
		SectionKey:      res.Metadata["section_key"],
		ClientType:      res.Metadata["client_type"],
		Domain:          res.Metadata["domain"],
		ContractVehicle: res.Metadata["contract_vehicle"],
		ComplexityTier:  res.Metadata["complexity_tier"],
	}
}

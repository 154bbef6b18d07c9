package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/zacharybinks/RAG/internal/llm"
)

// MemoryStore keeps collections in process memory with cosine ranking over
// embeddings produced by the injected Embedder. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	embedder    llm.Embedder
	collections map[string]*memoryCollection
}

func NewMemoryStore(embedder llm.Embedder) *MemoryStore {
	return &MemoryStore{
		embedder:    embedder,
		collections: make(map[string]*memoryCollection),
	}
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, name string) (Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	c := &memoryCollection{name: name, embedder: s.embedder}
	s.collections[name] = c
	return c, nil
}

func (s *MemoryStore) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Item pairs an entry with its embedding, for persistence round-trips.
type Item struct {
	Collection string
	Entry      Entry
	Embedding  []float32
}

// Snapshot returns every indexed item across collections.
func (s *MemoryStore) Snapshot() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for name, c := range s.collections {
		c.mu.RLock()
		for _, it := range c.items {
			out = append(out, Item{Collection: name, Entry: it.entry, Embedding: it.embedding})
		}
		c.mu.RUnlock()
	}
	return out
}

// Restore loads previously persisted items without re-embedding.
func (s *MemoryStore) Restore(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		c, ok := s.collections[it.Collection]
		if !ok {
			c = &memoryCollection{name: it.Collection, embedder: s.embedder}
			s.collections[it.Collection] = c
		}
		c.items = append(c.items, memoryItem{entry: it.Entry, embedding: it.Embedding})
	}
}

type memoryCollection struct {
	mu       sync.RWMutex
	name     string
	embedder llm.Embedder
	items    []memoryItem
}

type memoryItem struct {
	entry     Entry
	embedding []float32
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *memoryCollection) Query(ctx context.Context, queryText string, k int, where *Filter) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}
	vecs, err := c.embedder.Embed(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	query := vecs[0]

	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make([]Result, 0, len(c.items))
	for _, it := range c.items {
		if !where.Matches(it.entry.Metadata) {
			continue
		}
		results = append(results, Result{
			ID:       it.entry.ID,
			Document: it.entry.Document,
			Metadata: it.entry.Metadata,
			Score:    CosineSimilarity(query, it.embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (c *memoryCollection) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Document
	}
	vecs, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vecs) != len(entries) {
		return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vecs), len(entries))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range entries {
		replaced := false
		for j := range c.items {
			if c.items[j].entry.ID == e.ID {
				c.items[j] = memoryItem{entry: e, embedding: vecs[i]}
				replaced = true
				break
			}
		}
		if !replaced {
			c.items = append(c.items, memoryItem{entry: e, embedding: vecs[i]})
		}
	}
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, where *Filter) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, it := range c.items {
		if !where.Matches(it.entry.Metadata) {
			kept = append(kept, it)
		}
	}
	c.items = kept
	return nil
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

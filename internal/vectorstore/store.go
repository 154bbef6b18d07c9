// Package vectorstore provides a uniform query/upsert/delete gateway over
// named collections (project corpus, shared knowledge base, example library).
package vectorstore

import (
	"context"
)

// Entry is one indexed unit of text with its source metadata.
type Entry struct {
	ID       string
	Document string
	Metadata map[string]string
}

// Result is a retrieved entry with its similarity score (higher is closer).
type Result struct {
	ID       string
	Document string
	Metadata map[string]string
	Score    float32
}

// Filter restricts queries and deletes by metadata. Equals terms must all
// match; In terms require set membership. A nil filter matches everything.
type Filter struct {
	Equals map[string]string
	In     map[string][]string
}

// Matches reports whether the metadata satisfies every filter term.
func (f *Filter) Matches(meta map[string]string) bool {
	if f == nil {
		return true
	}
	for k, v := range f.Equals {
		if meta[k] != v {
			return false
		}
	}
	for k, allowed := range f.In {
		found := false
		for _, v := range allowed {
			if meta[k] == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Collection is one independently queryable partition of the store.
type Collection interface {
	Name() string
	Query(ctx context.Context, queryText string, k int, where *Filter) ([]Result, error)
	Upsert(ctx context.Context, entries []Entry) error
	// Delete removes matching entries; a filter that matches nothing is a no-op.
	Delete(ctx context.Context, where *Filter) error
	Count() int
}

// Store hands out collection handles, creating them on first use.
type Store interface {
	GetOrCreate(ctx context.Context, name string) (Collection, error)
	DeleteCollection(ctx context.Context, name string) error
}

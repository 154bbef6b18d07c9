// Package ingest loads project documents and example proposals into the
// vector store: extraction, chunking, section slicing, and metadata-tagged
// upserts.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/zacharybinks/RAG/internal/retrieval"
	"github.com/zacharybinks/RAG/internal/vectorstore"
)

// ExampleMeta is the catalog metadata attached to an uploaded example.
type ExampleMeta struct {
	Title           string
	ClientType      string
	Domain          string
	ContractVehicle string
	ComplexityTier  string
	Tags            string
}

// ExampleCatalog persists example records and their sliced sections. Records
// start queued; the ingestor moves them to done or failed.
type ExampleCatalog interface {
	CreateExample(ctx context.Context, sourcePath string, meta ExampleMeta) (string, error)
	AddSection(ctx context.Context, exampleID, sectionKey, text string) error
	SetIngestStatus(ctx context.Context, exampleID, status string) error
}

// Ingestor writes extracted documents into vector collections.
type Ingestor struct {
	store    vectorstore.Store
	splitter *Splitter
}

func NewIngestor(store vectorstore.Store) *Ingestor {
	return &Ingestor{store: store, splitter: NewSplitter()}
}

// IngestProjectDocument chunks a document into the project's collection with
// source and page metadata. Returns the number of chunks indexed.
func (in *Ingestor) IngestProjectDocument(ctx context.Context, projectID, path string) (int, error) {
	return in.ingestDocument(ctx, projectID, path)
}

// IngestKnowledgeBaseDocument indexes a document into the shared
// cross-project corpus.
func (in *Ingestor) IngestKnowledgeBaseDocument(ctx context.Context, path string) (int, error) {
	return in.ingestDocument(ctx, retrieval.KnowledgeBaseCollection, path)
}

func (in *Ingestor) ingestDocument(ctx context.Context, collection, path string) (int, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return 0, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	var entries []vectorstore.Entry
	for _, page := range pages {
		for _, chunk := range in.splitter.Split(page.Text) {
			entries = append(entries, vectorstore.Entry{
				ID:       uuid.NewString(),
				Document: chunk,
				Metadata: map[string]string{
					"source": absPath,
					"page":   strconv.Itoa(page.Number),
				},
			})
		}
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("no extractable text in %s", path)
	}

	col, err := in.store.GetOrCreate(ctx, collection)
	if err != nil {
		return 0, err
	}
	if err := col.Upsert(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to index %s: %w", path, err)
	}
	return len(entries), nil
}

// RemoveDocument drops every chunk of a source document from a collection.
func (in *Ingestor) RemoveDocument(ctx context.Context, collection, source string) error {
	col, err := in.store.GetOrCreate(ctx, collection)
	if err != nil {
		return err
	}
	return col.Delete(ctx, &vectorstore.Filter{Equals: map[string]string{"source": source}})
}

// IngestExample slices an example proposal into sections, persists them to
// the catalog, and indexes the section bodies with filterable metadata. A
// failed vector upsert marks the record failed so it is never reported done
// while unsearchable.
func (in *Ingestor) IngestExample(ctx context.Context, catalog ExampleCatalog, path string, meta ExampleMeta) (string, error) {
	if meta.Title == "" {
		meta.Title = filepath.Base(path)
	}
	exampleID, err := catalog.CreateExample(ctx, path, meta)
	if err != nil {
		return "", err
	}

	text, err := ExtractText(path)
	if err != nil {
		_ = catalog.SetIngestStatus(ctx, exampleID, "failed")
		return exampleID, err
	}

	var entries []vectorstore.Entry
	for _, section := range SplitSections(text) {
		if err := catalog.AddSection(ctx, exampleID, section.Key, section.Body); err != nil {
			_ = catalog.SetIngestStatus(ctx, exampleID, "failed")
			return exampleID, err
		}
		entries = append(entries, vectorstore.Entry{
			ID:       uuid.NewString(),
			Document: section.Body,
			Metadata: map[string]string{
				"example_id":       exampleID,
				"section_key":      section.Key,
				"client_type":      meta.ClientType,
				"domain":           meta.Domain,
				"contract_vehicle": meta.ContractVehicle,
				"complexity_tier":  meta.ComplexityTier,
			},
		})
	}

	col, err := in.store.GetOrCreate(ctx, retrieval.ExamplesCollection)
	if err == nil {
		err = col.Upsert(ctx, entries)
	}
	if err != nil {
		_ = catalog.SetIngestStatus(ctx, exampleID, "failed")
		return exampleID, fmt.Errorf("failed to index example sections: %w", err)
	}

	if err := catalog.SetIngestStatus(ctx, exampleID, "done"); err != nil {
		return exampleID, err
	}
	return exampleID, nil
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zacharybinks/RAG/internal/ingest"
	"github.com/zacharybinks/RAG/internal/instruction"
	"github.com/zacharybinks/RAG/internal/llm"
	"github.com/zacharybinks/RAG/internal/vectorstore"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProjectSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.ProjectSettings(ctx, "missing")
	assert.Error(t, err)

	settings := llm.ProjectSettings{
		ModelName:    "gpt-4o",
		Temperature:  "0.4",
		ContextSize:  "high",
		SystemPrompt: "You are a proposal assistant.",
	}
	require.NoError(t, s.UpsertProject(ctx, "p1", settings))

	got, err := s.ProjectSettings(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, settings, got)

	// Upsert overwrites in place.
	settings.ContextSize = "low"
	require.NoError(t, s.UpsertProject(ctx, "p1", settings))
	got, err = s.ProjectSettings(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "low", got.ContextSize)
}

func TestExampleCatalog(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateExample(ctx, "/tmp/win.pdf", ingest.ExampleMeta{
		Title:      "Winning IT Support Proposal",
		ClientType: "federal",
		Domain:     "it-services",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.AddSection(ctx, id, "exec_summary", "We deliver outcomes."))
	require.NoError(t, s.AddSection(ctx, id, "staffing", "Deep bench."))
	require.NoError(t, s.SetIngestStatus(ctx, id, "done"))

	examples, err := s.ListExamples(ctx)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, id, examples[0].ID)
	assert.Equal(t, "done", examples[0].IngestStatus)
	assert.Equal(t, "federal", examples[0].ClientType)
}

func TestInstructionHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := &instruction.SectionInstruction{
		SectionKey:      "transition",
		Title:           "Transition Plan",
		LengthHintWords: instruction.LengthHint{Min: 1200, Max: 1800},
	}
	second := &instruction.SectionInstruction{
		SectionKey:      "transition",
		Title:           "Transition Plan v2",
		LengthHintWords: instruction.LengthHint{Min: 1000, Max: 1500},
	}
	require.NoError(t, s.SaveInstruction(ctx, "p1", first))
	require.NoError(t, s.SaveInstruction(ctx, "p1", second))

	history, err := s.InstructionHistory(ctx, "p1", "transition")
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first; earlier versions stay untouched.
	assert.Equal(t, "Transition Plan v2", history[0].Title)
	assert.Equal(t, "Transition Plan", history[1].Title)

	other, err := s.InstructionHistory(ctx, "p1", "staffing")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestChatTurns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Append(ctx, "p1", "query", "What is the period of performance?"))
	require.NoError(t, s.Append(ctx, "p1", "answer", "Five years with two option years."))
	require.NoError(t, s.Append(ctx, "p1", "query", "Any travel requirements?"))

	turns, err := s.Turns(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "What is the period of performance?", turns[0].User)
	assert.Equal(t, "Five years with two option years.", turns[0].Assistant)
	assert.Equal(t, "Any travel requirements?", turns[1].User)
	assert.Empty(t, turns[1].Assistant)

	// Per-project isolation.
	other, err := s.Turns(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.ClearChat(ctx, "p1"))
	turns, err = s.Turns(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestVectorRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	items := []vectorstore.Item{
		{
			Collection: "p1",
			Entry: vectorstore.Entry{
				ID:       "v1",
				Document: "transition approach",
				Metadata: map[string]string{"source": "rfp.pdf", "page": "3"},
			},
			Embedding: []float32{0.25, -1, 3.5},
		},
		{
			Collection: "knowledge_base",
			Entry: vectorstore.Entry{
				ID:       "v2",
				Document: "far reference",
				Metadata: map[string]string{"source": "kb.pdf", "page": "1"},
			},
			Embedding: []float32{1, 2, 3},
		},
	}
	require.NoError(t, s.SaveVectors(ctx, items))

	loaded, err := s.LoadVectors(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.ElementsMatch(t, items, loaded)

	// A save replaces the previous snapshot wholesale.
	require.NoError(t, s.SaveVectors(ctx, items[:1]))
	loaded, err = s.LoadVectors(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

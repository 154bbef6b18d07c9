package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zacharybinks/RAG/internal/llm"
	"github.com/zacharybinks/RAG/internal/rerank"
	"github.com/zacharybinks/RAG/internal/vectorstore"
)

type byteEmbedder struct{}

func (byteEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 8)
		for j, ch := range []byte(text) {
			vec[j%8] += float32(ch)
		}
		out[i] = vec
	}
	return out, nil
}

func (byteEmbedder) Dimension() int { return 8 }

type fixedSettings struct {
	settings llm.ProjectSettings
}

func (f fixedSettings) ProjectSettings(ctx context.Context, projectID string) (llm.ProjectSettings, error) {
	return f.settings, nil
}

func seedStore(t *testing.T, ctx context.Context) *vectorstore.MemoryStore {
	t.Helper()
	store := vectorstore.NewMemoryStore(byteEmbedder{})

	project, err := store.GetOrCreate(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, project.Upsert(ctx, []vectorstore.Entry{
		{ID: "r1", Document: "transition plan for phase-in staffing", Metadata: map[string]string{"source": "rfp.pdf", "page": "1"}},
		{ID: "r2", Document: "quality assurance surveillance approach", Metadata: map[string]string{"source": "rfp.pdf", "page": "2"}},
		{ID: "r3", Document: "key personnel qualifications and clearances", Metadata: map[string]string{"source": "rfp.pdf", "page": "3"}},
	}))

	kb, err := store.GetOrCreate(ctx, KnowledgeBaseCollection)
	require.NoError(t, err)
	require.NoError(t, kb.Upsert(ctx, []vectorstore.Entry{
		{ID: "k1", Document: "iso 9001 quality management certification", Metadata: map[string]string{"source": "kb.pdf", "page": "1"}},
		{ID: "k2", Document: "far clause compliance reference", Metadata: map[string]string{"source": "kb.pdf", "page": "2"}},
	}))
	return store
}

func newTestRetriever(store *vectorstore.MemoryStore, contextSize string) *Retriever {
	resolver := llm.NewResolver(fixedSettings{llm.ProjectSettings{ContextSize: contextSize}}, llm.Defaults{Model: "gpt-4o-mini", Temperature: 0.2})
	pool := llm.NewClientPool(&mockChat{reply: "staffing transition variant\nquality variant"}, 0)
	return NewRetriever(store, rerank.Passthrough{}, resolver, pool, ShareRule{Floor: 3, Divisor: 3})
}

func TestProjectContext(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t, ctx)
	retriever := newTestRetriever(store, "low")

	rctx, err := retriever.ProjectContext(ctx, "p1", true, "transition staffing plan")
	require.NoError(t, err)

	total := len(rctx.Project) + len(rctx.KB)
	assert.Equal(t, 5, total, "a small corpus fits entirely under the low budget")
	assert.GreaterOrEqual(t, len(rctx.Project), 3)

	// No duplicates despite three query variants hitting the same corpus.
	seen := map[string]bool{}
	for _, s := range rctx.Snippets() {
		assert.False(t, seen[s], "duplicate snippet %q", s)
		seen[s] = true
	}
}

func TestProjectContextWithoutKB(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t, ctx)
	retriever := newTestRetriever(store, "medium")

	rctx, err := retriever.ProjectContext(ctx, "p1", false, "quality approach")
	require.NoError(t, err)
	assert.Empty(t, rctx.KB)
	assert.Len(t, rctx.Project, 3)
}

func TestLightContext(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t, ctx)
	retriever := newTestRetriever(store, "low")

	snippets, metas := retriever.LightContext(ctx, "p1", true, "transition", 0)
	assert.Len(t, snippets, len(metas))
	assert.Equal(t, 5, len(snippets))
	for _, m := range metas {
		assert.Contains(t, []Kind{KindRFP, KindKB}, m.Ref().Kind)
	}
}

func TestExamplePassages(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemoryStore(byteEmbedder{})
	col, err := store.GetOrCreate(ctx, ExamplesCollection)
	require.NoError(t, err)
	require.NoError(t, col.Upsert(ctx, []vectorstore.Entry{
		{ID: "e1", Document: "our transition approach minimizes risk", Metadata: map[string]string{
			"example_id": "ex-1", "section_key": "transition", "client_type": "federal"}},
		{ID: "e2", Document: "pricing narrative assumptions", Metadata: map[string]string{
			"example_id": "ex-1", "section_key": "pricing_narrative", "client_type": "federal"}},
		{ID: "e3", Document: "transition staffing ramp", Metadata: map[string]string{
			"example_id": "ex-2", "section_key": "transition", "client_type": "state"}},
	}))
	retriever := newTestRetriever(store, "medium")

	t.Run("section key is mandatory", func(t *testing.T) {
		snippets, metas := retriever.ExamplePassages(ctx, "transition", nil, nil, 8, "transition patterns")
		assert.Len(t, snippets, 2)
		for _, m := range metas {
			assert.Equal(t, KindExample, m.Ref().Kind)
		}
	})

	t.Run("metadata filters narrow the set", func(t *testing.T) {
		snippets, _ := retriever.ExamplePassages(ctx, "transition", nil, map[string]string{"client_type": "state"}, 8, "transition patterns")
		assert.Equal(t, []string{"transition staffing ramp"}, snippets)
	})

	t.Run("example id restriction", func(t *testing.T) {
		_, metas := retriever.ExamplePassages(ctx, "transition", []string{"ex-1"}, nil, 8, "transition patterns")
		require.Len(t, metas, 1)
		assert.Equal(t, "ex-1", metas[0].Ref().Source)
	})

	t.Run("empty filter values are ignored", func(t *testing.T) {
		snippets, _ := retriever.ExamplePassages(ctx, "transition", nil, map[string]string{"client_type": ""}, 8, "transition patterns")
		assert.Len(t, snippets, 2)
	})
}

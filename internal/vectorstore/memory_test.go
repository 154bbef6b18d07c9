package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisEmbedder maps known texts onto fixed axes so similarity ordering is
// predictable in tests.
type axisEmbedder struct {
	axes map[string]int
}

func (e *axisEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 4)
		if axis, ok := e.axes[text]; ok {
			vec[axis] = 1
		} else {
			vec[0], vec[1] = 0.5, 0.5
		}
		out[i] = vec
	}
	return out, nil
}

func (e *axisEmbedder) Dimension() int { return 4 }

func newSeededCollection(t *testing.T, ctx context.Context) (*MemoryStore, Collection) {
	t.Helper()
	embedder := &axisEmbedder{axes: map[string]int{
		"staffing plan":   0,
		"pricing details": 1,
		"risk register":   2,
	}}
	store := NewMemoryStore(embedder)
	col, err := store.GetOrCreate(ctx, "docs")
	require.NoError(t, err)
	require.NoError(t, col.Upsert(ctx, []Entry{
		{ID: "1", Document: "staffing plan", Metadata: map[string]string{"source": "a.pdf"}},
		{ID: "2", Document: "pricing details", Metadata: map[string]string{"source": "b.pdf"}},
		{ID: "3", Document: "risk register", Metadata: map[string]string{"source": "a.pdf"}},
	}))
	return store, col
}

func TestMemoryCollectionQuery(t *testing.T) {
	ctx := context.Background()
	_, col := newSeededCollection(t, ctx)

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		results, err := col.Query(ctx, "staffing plan", 2, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "1", results[0].ID)
		assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	})

	t.Run("filters by metadata", func(t *testing.T) {
		results, err := col.Query(ctx, "staffing plan", 10, &Filter{Equals: map[string]string{"source": "a.pdf"}})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("in filter requires membership", func(t *testing.T) {
		results, err := col.Query(ctx, "staffing plan", 10, &Filter{In: map[string][]string{"source": {"b.pdf"}}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "2", results[0].ID)
	})

	t.Run("non-positive k returns nothing", func(t *testing.T) {
		results, err := col.Query(ctx, "staffing plan", 0, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestMemoryCollectionUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	_, col := newSeededCollection(t, ctx)

	require.NoError(t, col.Upsert(ctx, []Entry{
		{ID: "1", Document: "risk register", Metadata: map[string]string{"source": "c.pdf"}},
	}))
	assert.Equal(t, 3, col.Count())

	results, err := col.Query(ctx, "risk register", 3, &Filter{Equals: map[string]string{"source": "c.pdf"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
}

func TestMemoryCollectionDelete(t *testing.T) {
	ctx := context.Background()
	_, col := newSeededCollection(t, ctx)

	require.NoError(t, col.Delete(ctx, &Filter{Equals: map[string]string{"source": "a.pdf"}}))
	assert.Equal(t, 1, col.Count())

	// A filter matching nothing is a no-op.
	require.NoError(t, col.Delete(ctx, &Filter{Equals: map[string]string{"source": "zzz.pdf"}}))
	assert.Equal(t, 1, col.Count())
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	store, col := newSeededCollection(t, ctx)

	items := store.Snapshot()
	require.Len(t, items, 3)

	fresh := NewMemoryStore(&axisEmbedder{axes: map[string]int{"staffing plan": 0}})
	fresh.Restore(items)

	restored, err := fresh.GetOrCreate(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, col.Count(), restored.Count())

	// Restored entries keep their original embeddings.
	results, err := restored.Query(ctx, "staffing plan", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, float64(CosineSimilarity([]float32{1, 0}, []float32{2, 0})), 1e-6)
	assert.InDelta(t, 0.0, float64(CosineSimilarity([]float32{1, 0}, []float32{0, 1})), 1e-6)
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

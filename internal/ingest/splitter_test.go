package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter(t *testing.T) {
	s := NewSplitter()

	t.Run("short text passes through", func(t *testing.T) {
		out := s.Split("a short paragraph")
		assert.Equal(t, []string{"a short paragraph"}, out)
	})

	t.Run("blank input yields nothing", func(t *testing.T) {
		assert.Empty(t, s.Split("   \n  "))
	})

	t.Run("chunks respect the size limit", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 60; i++ {
			b.WriteString("The contractor shall provide monthly status reports covering cost, schedule, and risk posture.\n\n")
		}
		chunks := s.Split(b.String())
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), s.ChunkSize+s.Overlap)
		}
	})

	t.Run("consecutive chunks share overlap", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 60; i++ {
			b.WriteString("Paragraph content that repeats to force multiple chunks in the output stream.\n\n")
		}
		chunks := s.Split(b.String())
		require.Greater(t, len(chunks), 1)
		tail := chunks[0][len(chunks[0])-s.Overlap:]
		assert.True(t, strings.HasPrefix(chunks[1], tail))
	})

	t.Run("unbroken text falls back to hard splits", func(t *testing.T) {
		text := strings.Repeat("x", 5000)
		chunks := s.Split(text)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), s.ChunkSize+s.Overlap+1)
		}
	})
}

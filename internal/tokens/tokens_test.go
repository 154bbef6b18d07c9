package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapsForModel(t *testing.T) {
	assert.Equal(t, "fast", CapsForModel("gpt-4o-mini").ID)
	assert.Equal(t, "balanced", CapsForModel("gpt-4o").ID)
	assert.Equal(t, "verbose", CapsForModel("gpt-4.1").ID)
	assert.Equal(t, "fast", CapsForModel("some-unknown-model").ID)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count(""))
	// Deterministic for identical input.
	assert.Equal(t, Count("transition plan"), Count("transition plan"))
}

func TestCalcMaxOutputTokens(t *testing.T) {
	t.Run("short prompt gets the full completion cap", func(t *testing.T) {
		out := CalcMaxOutputTokens("short prompt", "gpt-4o-mini", 2000, 1200)
		assert.Equal(t, 4096, out)
	})

	t.Run("never exceeds the completion cap", func(t *testing.T) {
		out := CalcMaxOutputTokens("short prompt", "gpt-4o-mini", 2000, 100000)
		assert.Equal(t, 4096, out)
	})

	t.Run("target minimum is honored when the cap allows", func(t *testing.T) {
		out := CalcMaxOutputTokens("q", "gpt-4o", 2000, 3000)
		assert.GreaterOrEqual(t, out, 3000)
		assert.LessOrEqual(t, out, 8192)
	})

	t.Run("huge prompt still leaves headroom", func(t *testing.T) {
		prompt := strings.Repeat("requirements and deliverables ", 100000)
		out := CalcMaxOutputTokens(prompt, "gpt-4o-mini", 2000, 1200)
		assert.GreaterOrEqual(t, out, 1024)
		assert.LessOrEqual(t, out, 4096)
	})
}

func TestFillContextWindow(t *testing.T) {
	passages := []string{"alpha one", "beta two", "gamma three"}

	t.Run("generous budget keeps everything in order", func(t *testing.T) {
		out := FillContextWindow(passages, 1<<20)
		assert.Equal(t, passages, out)
	})

	t.Run("result is always a ranked prefix", func(t *testing.T) {
		out := FillContextWindow(passages, 4)
		assert.LessOrEqual(t, len(out), len(passages))
		for i, p := range out {
			assert.Equal(t, passages[i], p)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, FillContextWindow(nil, 100))
	})
}

package instruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLengthHint(t *testing.T) {
	t.Run("bare number becomes a range", func(t *testing.T) {
		obj := Normalize(map[string]any{"length_hint_words": float64(1500)})
		require.NotNil(t, obj)
		assert.Equal(t, map[string]any{"min": 1200, "max": 1500}, obj["length_hint_words"])
	})

	t.Run("numeric string is coerced", func(t *testing.T) {
		obj := Normalize(map[string]any{"length_hint_words": "2000"})
		assert.Equal(t, map[string]any{"min": 1600, "max": 2000}, obj["length_hint_words"])
	})

	t.Run("small number is floored at 300", func(t *testing.T) {
		obj := Normalize(map[string]any{"length_hint_words": float64(200)})
		assert.Equal(t, map[string]any{"min": 300, "max": 200}, obj["length_hint_words"])
	})

	t.Run("approx backfills min and max", func(t *testing.T) {
		obj := Normalize(map[string]any{"length_hint_words": map[string]any{"approx": float64(1000)}})
		assert.Equal(t, map[string]any{"min": 800, "max": 1000}, obj["length_hint_words"])
	})

	t.Run("missing max stretches to at least 1800", func(t *testing.T) {
		obj := Normalize(map[string]any{"length_hint_words": map[string]any{"min": float64(1000)}})
		assert.Equal(t, map[string]any{"min": 1000, "max": 1800}, obj["length_hint_words"])

		obj = Normalize(map[string]any{"length_hint_words": map[string]any{"min": float64(1700)}})
		assert.Equal(t, map[string]any{"min": 1700, "max": 2000}, obj["length_hint_words"])
	})

	t.Run("unusable value gets the default range", func(t *testing.T) {
		obj := Normalize(map[string]any{"length_hint_words": true})
		assert.Equal(t, map[string]any{"min": 1200, "max": 1800}, obj["length_hint_words"])
	})

	t.Run("absent hint gets the default range", func(t *testing.T) {
		obj := Normalize(map[string]any{})
		assert.Equal(t, map[string]any{"min": 1200, "max": 1800}, obj["length_hint_words"])
	})
}

func TestCoerceListFields(t *testing.T) {
	t.Run("multi-line string splits on newlines", func(t *testing.T) {
		obj := Normalize(map[string]any{"must_include": "- Item A\n- Item B"})
		assert.Equal(t, []any{"Item A", "Item B"}, obj["must_include"])
	})

	t.Run("single line splits on semicolons", func(t *testing.T) {
		obj := Normalize(map[string]any{"tone_rules": "formal; active voice"})
		assert.Equal(t, []any{"formal", "active voice"}, obj["tone_rules"])
	})

	t.Run("plain string becomes a single item", func(t *testing.T) {
		obj := Normalize(map[string]any{"win_themes": "lowest risk"})
		assert.Equal(t, []any{"lowest risk"}, obj["win_themes"])
	})

	t.Run("null becomes an empty list", func(t *testing.T) {
		obj := Normalize(map[string]any{"gaps": nil})
		assert.Equal(t, []any{}, obj["gaps"])
	})

	t.Run("list entries are stringified and trimmed", func(t *testing.T) {
		obj := Normalize(map[string]any{"micro_outline": []any{" alpha ", "", float64(7)}})
		assert.Equal(t, []any{"alpha", "7"}, obj["micro_outline"])
	})
}

func TestBackfillSectionKey(t *testing.T) {
	obj := Normalize(map[string]any{"title": "Quality Assurance / Control"})
	assert.Equal(t, "quality_assurance___control", obj["section_key"])

	obj = Normalize(map[string]any{"title": "Transition Plan", "section_key": "transition"})
	assert.Equal(t, "transition", obj["section_key"])
}

func TestUnwrapObject(t *testing.T) {
	obj := Normalize([]any{map[string]any{"title": "Staffing"}})
	require.NotNil(t, obj)
	assert.Equal(t, "Staffing", obj["title"])

	assert.Nil(t, Normalize("just a string"))
	assert.Nil(t, Normalize([]any{"no", "objects"}))
}

package retrieval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rfpPassage(i int) Passage {
	return Passage{Text: fmt.Sprintf("rfp-%d", i), Meta: RfpMeta{ID: fmt.Sprintf("r%d", i), Source: "rfp.pdf", Page: i}}
}

func kbPassage(i int) Passage {
	return Passage{Text: fmt.Sprintf("kb-%d", i), Meta: KbMeta{ID: fmt.Sprintf("k%d", i), Source: "kb.pdf", Page: i}}
}

func TestTopKForSize(t *testing.T) {
	assert.Equal(t, 10, TopKForSize("low"))
	assert.Equal(t, 15, TopKForSize("medium"))
	assert.Equal(t, 20, TopKForSize("high"))
	assert.Equal(t, 15, TopKForSize("enormous"))
	assert.Equal(t, 15, TopKForSize(""))
}

func TestAllocate(t *testing.T) {
	rule := ShareRule{Floor: 3, Divisor: 3}

	t.Run("enforces the minimum project share", func(t *testing.T) {
		// All top-ranked passages come from the knowledge base.
		ranked := []Passage{kbPassage(1), kbPassage(2), kbPassage(3), kbPassage(4), kbPassage(5), rfpPassage(1)}
		project, kb := Allocate(ranked, 5, rule)

		assert.GreaterOrEqual(t, len(project), 3)
		assert.Equal(t, 5, len(project)+len(kb))
		// Moved items come from the front of the kb bucket.
		assert.Equal(t, "k1", project[0].Meta.Ref().ID)
		assert.Equal(t, "k2", project[1].Meta.Ref().ID)
		assert.Equal(t, "k3", project[2].Meta.Ref().ID)
		assert.Equal(t, "k4", kb[0].Meta.Ref().ID)
	})

	t.Run("caps the total at top k", func(t *testing.T) {
		var ranked []Passage
		for i := 0; i < 30; i++ {
			ranked = append(ranked, rfpPassage(i))
		}
		project, kb := Allocate(ranked, 10, rule)
		assert.Equal(t, 10, len(project)+len(kb))
	})

	t.Run("fewer kb passages than needed moves them all", func(t *testing.T) {
		ranked := []Passage{kbPassage(1), rfpPassage(1)}
		project, kb := Allocate(ranked, 10, rule)
		assert.Len(t, project, 2)
		assert.Empty(t, kb)
	})

	t.Run("proportional share wins over the floor at high top k", func(t *testing.T) {
		var ranked []Passage
		for i := 0; i < 30; i++ {
			ranked = append(ranked, kbPassage(i))
		}
		project, _ := Allocate(ranked, 20, rule)
		// max(3, 20/3) = 6
		assert.Len(t, project, 6)
	})

	t.Run("empty ranking", func(t *testing.T) {
		project, kb := Allocate(nil, 15, rule)
		assert.Empty(t, project)
		assert.Empty(t, kb)
	})
}

package preload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentences(t *testing.T) {
	sentences := Sentences()

	total := 0
	seen := make(map[string]bool)
	for _, g := range Groups() {
		assert.NotEmpty(t, g.Name)
		assert.GreaterOrEqual(t, len(g.Sentences), 4, g.Name)
		total += len(g.Sentences)
		for _, s := range g.Sentences {
			assert.False(t, seen[s], "duplicate sentence %q", s)
			seen[s] = true
		}
	}
	assert.Len(t, sentences, total)
}

func TestGroups_ReturnsCopy(t *testing.T) {
	first := Groups()
	first[0].Sentences[0] = "changed"
	assert.NotEqual(t, "changed", Groups()[0].Sentences[0])
}

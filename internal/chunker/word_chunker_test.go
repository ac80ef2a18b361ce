package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWordChunker(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		assert.Equal(t, DefaultMaxWords, NewWordChunker(0).MaxWords())
		assert.Equal(t, DefaultMaxWords, NewWordChunker(-3).MaxWords())
	})

	t.Run("custom limit", func(t *testing.T) {
		assert.Equal(t, 42, NewWordChunker(42).MaxWords())
	})
}

func TestWordChunker_Split_Empty(t *testing.T) {
	c := NewWordChunker(10)
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("  \n\t "))
}

func TestWordChunker_Split_SingleChunk(t *testing.T) {
	c := NewWordChunker(500)
	chunks := c.Split("Axis Bluechip Fund 5-year return 13.2%. Risk level moderate.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Axis Bluechip Fund 5-year return 13.2%. Risk level moderate.", chunks[0])
}

func TestWordChunker_Split_Bounds(t *testing.T) {
	words := make([]string, 0, 23)
	for i := 0; i < 23; i++ {
		words = append(words, "w"+strings.Repeat("x", i%4))
	}
	text := strings.Join(words, "  \n")

	for _, max := range []int{1, 2, 5, 7, 23, 100} {
		c := NewWordChunker(max)
		chunks := c.Split(text)

		var rebuilt []string
		for i, ch := range chunks {
			n := len(strings.Fields(ch))
			assert.LessOrEqual(t, n, max, "chunk %d exceeds limit %d", i, max)
			assert.Positive(t, n)
			if i < len(chunks)-1 {
				assert.Equal(t, max, n, "only the last chunk may be short")
			}
			rebuilt = append(rebuilt, strings.Fields(ch)...)
		}
		assert.Equal(t, words, rebuilt, "word sequence must be preserved for limit %d", max)
	}
}

func TestWordChunker_Split_ExactMultiple(t *testing.T) {
	c := NewWordChunker(3)
	chunks := c.Split("one two three four five six")
	assert.Equal(t, []string{"one two three", "four five six"}, chunks)
}

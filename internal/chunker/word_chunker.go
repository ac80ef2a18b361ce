package chunker

import (
	"strings"
)

// DefaultMaxWords is the default upper bound on words per chunk.
const DefaultMaxWords = 500

// WordChunker splits text into consecutive, non-overlapping runs of words.
type WordChunker struct {
	maxWords int
}

func NewWordChunker(maxWords int) *WordChunker {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return &WordChunker{maxWords: maxWords}
}

// MaxWords returns the configured word limit.
func (c *WordChunker) MaxWords() int { return c.maxWords }

// Split groups the whitespace-separated words of text into chunks of at most
// MaxWords words. The last chunk may be shorter. Empty input yields nil.
func (c *WordChunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(words)+c.maxWords-1)/c.maxWords)
	for i := 0; i < len(words); i += c.maxWords {
		end := i + c.maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

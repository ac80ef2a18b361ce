package hashing

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// DefaultDimension is the fixed fingerprint length used by the store.
const DefaultDimension = 100

// minTokenLength is the shortest token that contributes to a fingerprint.
const minTokenLength = 3

// Embedder folds a bag of words into a fixed number of hash buckets.
// Term frequencies of tokens whose hashes collide are summed; there is no
// corpus-wide weighting, so Embed needs no preparation phase.
type Embedder struct {
	dimension    int
	splitPattern *regexp.Regexp
}

// NewEmbedder creates a hashing embedder with the given dimension.
// A non-positive dimension falls back to DefaultDimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{
		dimension:    dimension,
		splitPattern: regexp.MustCompile(`\W+`),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the length of every produced vector.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the bucketed term-frequency vector for text.
func (e *Embedder) Embed(text string) []float64 {
	vec := make([]float64, e.dimension)
	for tok, count := range e.termFrequencies(text) {
		vec[e.bucket(tok)] += float64(count)
	}
	return vec
}

func (e *Embedder) termFrequencies(text string) map[string]int {
	tf := make(map[string]int)
	for _, tok := range e.tokenize(text) {
		tf[tok]++
	}
	return tf
}

func (e *Embedder) tokenize(text string) []string {
	raw := e.splitPattern.Split(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if len(t) < minTokenLength {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (e *Embedder) bucket(token string) int {
	h := int64(StringHash(token))
	if h < 0 {
		h = -h
	}
	return int(h % int64(e.dimension))
}

// StringHash is the 32-bit shift-and-subtract hash (h = h*31 + c) over the
// UTF-16 code units of s, wrapping on overflow.
func StringHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	return h
}

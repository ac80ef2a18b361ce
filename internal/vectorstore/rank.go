package vectorstore

import (
	"math"
	"sort"

	"arthagpt/internal/domain"
)

// Cosine returns the cosine similarity of a and b. A zero-magnitude vector on
// either side scores 0. Vectors of different length are compared over the
// shorter prefix.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank scores every chunk against query and returns at most topK results
// scoring strictly above minScore, most similar first. Equal scores keep
// insertion order. Returned chunks are copies.
func Rank(query []float64, chunks []domain.Chunk, topK int, minScore float64) []domain.SearchResult {
	if topK <= 0 {
		topK = DefaultTopK
	}
	scored := make([]domain.SearchResult, len(chunks))
	for i := range chunks {
		scored[i] = domain.SearchResult{Chunk: chunks[i], Score: Cosine(query, chunks[i].Fingerprint)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	out := make([]domain.SearchResult, 0, min(topK, len(scored)))
	for _, r := range scored {
		if r.Score <= minScore || len(out) == topK {
			break
		}
		out = append(out, domain.SearchResult{Chunk: r.Chunk.Clone(), Score: r.Score})
	}
	return out
}

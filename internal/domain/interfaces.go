package domain

import (
	"context"
	"time"
)

// DocumentInfo describes an uploaded document as supplied by the caller.
type DocumentInfo struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Size   int64  `json:"size,omitempty"`
}

// ChunkMetadata is attached to every stored chunk.
// Chunks sharing a Source form one document.
type ChunkMetadata struct {
	Source     string    `json:"source"`
	Type       string    `json:"type"`
	Size       int64     `json:"size,omitempty"`
	UploadedAt time.Time `json:"uploadTimestamp"`
}

// Chunk is a bounded slice of a document's text together with its fingerprint.
type Chunk struct {
	ID          string        `json:"id"`
	Content     string        `json:"content"`
	Fingerprint []float64     `json:"fingerprint"`
	Metadata    ChunkMetadata `json:"metadata"`
}

// Clone returns a deep copy so callers never share the fingerprint backing array.
func (c Chunk) Clone() Chunk {
	fp := make([]float64, len(c.Fingerprint))
	copy(fp, c.Fingerprint)
	c.Fingerprint = fp
	return c
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// DocumentSummary is a per-source view of the store used for listings.
type DocumentSummary struct {
	Source     string    `json:"source"`
	Type       string    `json:"type"`
	Size       int64     `json:"size,omitempty"`
	Chunks     int       `json:"chunks"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Embedder converts free text into a fixed-length numeric vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) []float64
}

// Chunker splits document text into ordered, non-overlapping pieces.
type Chunker interface {
	Split(text string) []string
}

// BlobStore is a durable keyed store holding whole serialized values.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// LLMProvider is one backing model service behind the LLM gateway.
type LLMProvider interface {
	Name() string
	// Available reports whether the provider is configured well enough to be tried.
	Available() bool
	Generate(ctx context.Context, system, prompt, contextText string) (string, error)
}

// Quote is a price record for a market symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Currency      string    `json:"currency"`
	Source        string    `json:"source"`
	AsOf          time.Time `json:"as_of"`
	Fallback      bool      `json:"fallback"`
}

// QuoteProvider fetches live quotes from one upstream.
type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (Quote, error)
}

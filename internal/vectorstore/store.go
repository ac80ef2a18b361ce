// Package vectorstore owns the chunk collection: ingest, similarity search,
// deletion and persistence of the whole collection as one blob.
package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"arthagpt/internal/blobstore"
	"arthagpt/internal/domain"
)

const (
	// DefaultKey is the storage key the collection is persisted under.
	DefaultKey = "artha_documents"
	// DefaultTopK is used when a search asks for a non-positive number of results.
	DefaultTopK = 5
	// DefaultMinScore is the similarity a result must exceed to be returned.
	DefaultMinScore = 0.1
)

var (
	ErrEmptyContent  = errors.New("no content provided")
	ErrMissingSource = errors.New("document source is required")
	ErrPersist       = errors.New("persist chunks")
)

// AddResult reports the outcome of a successful AddDocument call.
type AddResult struct {
	Source      string `json:"source"`
	Chunks      int    `json:"chunks"`
	Replaced    int    `json:"replaced"`
	Documents   int    `json:"documents"`
	TotalChunks int    `json:"total_chunks"`
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key used for the collection blob.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithMinScore sets the minimum similarity threshold for search results.
func WithMinScore(score float64) Option {
	return func(s *Store) { s.minScore = score }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for chunk IDs and upload stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the document retrieval store. It is safe for concurrent use;
// writers are serialized and every mutation is persisted before it returns.
type Store struct {
	mu        sync.RWMutex
	blob      domain.BlobStore
	embedder  domain.Embedder
	chunker   domain.Chunker
	key       string
	minScore  float64
	now       func() time.Time
	logger    *slog.Logger
	chunks    []domain.Chunk
	lastStamp int64
}

// New creates a store and loads any previously persisted collection.
// Missing or corrupt data yields an empty store; a failing backend is an error.
func New(ctx context.Context, blob domain.BlobStore, embedder domain.Embedder, chunker domain.Chunker, opts ...Option) (*Store, error) {
	if blob == nil || embedder == nil || chunker == nil {
		return nil, errors.New("vectorstore: blob store, embedder and chunker are required")
	}
	s := &Store{
		blob:     blob,
		embedder: embedder,
		chunker:  chunker,
		key:      DefaultKey,
		minScore: DefaultMinScore,
		now:      time.Now,
		logger:   slog.Default(),
		chunks:   []domain.Chunk{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	data, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}
	var stored []domain.Chunk
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("persisted chunks are corrupt, starting empty", "key", s.key, "error", err)
		return nil
	}
	dim := s.embedder.Dimension()
	for _, c := range stored {
		if strings.TrimSpace(c.Content) == "" || c.ID == "" {
			continue
		}
		if len(c.Fingerprint) != dim {
			c.Fingerprint = s.embedder.Embed(c.Content)
		}
		s.chunks = append(s.chunks, c)
		if stamp := idStamp(c.ID); stamp > s.lastStamp {
			s.lastStamp = stamp
		}
	}
	s.logger.Debug("loaded chunks", "key", s.key, "chunks", len(s.chunks))
	return nil
}

// AddDocument splits content, fingerprints every piece and appends the chunks
// under info.Source. Chunks already stored for that source are replaced. On
// error the store is left unchanged.
func (s *Store) AddDocument(ctx context.Context, content string, info domain.DocumentInfo) (AddResult, error) {
	if strings.TrimSpace(content) == "" {
		return AddResult{}, ErrEmptyContent
	}
	if strings.TrimSpace(info.Source) == "" {
		return AddResult{}, ErrMissingSource
	}
	pieces := s.chunker.Split(content)
	if len(pieces) == 0 {
		return AddResult{}, ErrEmptyContent
	}
	fingerprints := make([][]float64, len(pieces))
	for i, p := range pieces {
		fingerprints[i] = s.embedder.Embed(p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stamp := now.UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	meta := domain.ChunkMetadata{Source: info.Source, Type: info.Type, Size: info.Size, UploadedAt: now}

	next := make([]domain.Chunk, 0, len(s.chunks)+len(pieces))
	replaced := 0
	for _, c := range s.chunks {
		if c.Metadata.Source == info.Source {
			replaced++
			continue
		}
		next = append(next, c)
	}
	for i, p := range pieces {
		next = append(next, domain.Chunk{
			ID:          strconv.FormatInt(stamp, 10) + "-" + strconv.Itoa(i),
			Content:     p,
			Fingerprint: fingerprints[i],
			Metadata:    meta,
		})
	}
	if err := s.persist(ctx, next); err != nil {
		return AddResult{}, err
	}
	s.chunks = next
	s.lastStamp = stamp

	s.logger.Info("document added", "source", info.Source, "chunks", len(pieces), "replaced", replaced)
	return AddResult{
		Source:      info.Source,
		Chunks:      len(pieces),
		Replaced:    replaced,
		Documents:   countSources(next),
		TotalChunks: len(next),
	}, nil
}

// Search returns up to topK chunks most similar to query.
func (s *Store) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	vec := s.embedder.Embed(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Rank(vec, s.chunks, topK, s.minScore), nil
}

// DeleteDocument removes every chunk whose source equals source and returns
// how many were removed.
func (s *Store) DeleteDocument(ctx context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if c.Metadata.Source != source {
			next = append(next, c)
		}
	}
	removed := len(s.chunks) - len(next)
	if err := s.persist(ctx, next); err != nil {
		return 0, err
	}
	s.chunks = next
	s.logger.Info("document deleted", "source", source, "chunks", removed)
	return removed, nil
}

// ClearAll removes every chunk.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := []domain.Chunk{}
	if err := s.persist(ctx, empty); err != nil {
		return err
	}
	s.chunks = empty
	s.logger.Info("store cleared")
	return nil
}

// DocumentCount returns the number of distinct sources.
func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countSources(s.chunks)
}

// ChunkCount returns the total number of chunks.
func (s *Store) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Documents lists the stored documents in the order they were first added.
func (s *Store) Documents() []domain.DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := make(map[string]int)
	var out []domain.DocumentSummary
	for _, c := range s.chunks {
		i, ok := index[c.Metadata.Source]
		if !ok {
			index[c.Metadata.Source] = len(out)
			out = append(out, domain.DocumentSummary{
				Source:     c.Metadata.Source,
				Type:       c.Metadata.Type,
				Size:       c.Metadata.Size,
				UploadedAt: c.Metadata.UploadedAt,
				Chunks:     1,
			})
			continue
		}
		out[i].Chunks++
	}
	return out
}

func (s *Store) persist(ctx context.Context, chunks []domain.Chunk) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.blob.Put(ctx, s.key, data); err != nil {
		s.logger.Error("persist failed", "key", s.key, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func countSources(chunks []domain.Chunk) int {
	seen := make(map[string]struct{})
	for _, c := range chunks {
		seen[c.Metadata.Source] = struct{}{}
	}
	return len(seen)
}

// idStamp extracts the millisecond prefix of a chunk ID, or 0.
func idStamp(id string) int64 {
	prefix, _, _ := strings.Cut(id, "-")
	n, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

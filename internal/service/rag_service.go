package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"arthagpt/internal/domain"
	"arthagpt/internal/history"
	"arthagpt/internal/llm"
	"arthagpt/internal/vectorstore"
)

var (
	ErrEmptyQuestion = errors.New("question is required")
	ErrInvalidInput  = errors.New("invalid input")
)

// DefaultSummarySentences bounds the ingest preview summary.
const DefaultSummarySentences = 3

// DocumentStore is the retrieval store the service drives.
type DocumentStore interface {
	AddDocument(ctx context.Context, content string, info domain.DocumentInfo) (vectorstore.AddResult, error)
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
	DeleteDocument(ctx context.Context, source string) (int, error)
	ClearAll(ctx context.Context) error
	DocumentCount() int
	ChunkCount() int
	Documents() []domain.DocumentSummary
}

// Generator produces answers from a prompt and retrieved context.
type Generator interface {
	Generate(ctx context.Context, prompt, contextText string) llm.Response
	Providers() []string
}

// QuoteSource serves market quotes.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) ([]domain.Quote, error)
	Live() bool
}

// IngestResult reports one ingested document.
type IngestResult struct {
	Source      string `json:"source"`
	Chunks      int    `json:"chunks"`
	Replaced    int    `json:"replaced,omitempty"`
	Documents   int    `json:"documents"`
	TotalChunks int    `json:"total_chunks"`
	Summary     string `json:"summary,omitempty"`
}

// AskRequest is a question plus optional extra context and market symbols.
type AskRequest struct {
	Question string   `json:"question"`
	Context  string   `json:"context,omitempty"`
	Symbols  []string `json:"symbols,omitempty"`
	TopK     int      `json:"top_k,omitempty"`
}

// Answer is the response to an AskRequest.
type Answer struct {
	Text     string         `json:"answer"`
	Provider string         `json:"provider,omitempty"`
	Fallback bool           `json:"fallback"`
	Error    string         `json:"error,omitempty"`
	Sources  []string       `json:"sources"`
	Quotes   []domain.Quote `json:"quotes,omitempty"`
}

// Stats summarizes the service state.
type Stats struct {
	Documents  int      `json:"documents"`
	Chunks     int      `json:"chunks"`
	Providers  []string `json:"providers"`
	LiveMarket bool     `json:"live_market"`
}

// HistoryView is the recent activity log.
type HistoryView struct {
	Uploads []history.UploadRecord `json:"uploads"`
	Queries []history.QueryRecord  `json:"queries"`
}

// Option configures a RAGServiceImpl.
type Option func(*RAGServiceImpl)

// WithTopK sets the default number of chunks retrieved per question.
func WithTopK(k int) Option {
	return func(s *RAGServiceImpl) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithSummarySentences sets how many sentences ingest summaries keep.
func WithSummarySentences(n int) Option {
	return func(s *RAGServiceImpl) {
		if n > 0 {
			s.summaryMaxSentences = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *RAGServiceImpl) {
		if l != nil {
			s.logger = l
		}
	}
}

type RAGServiceImpl struct {
	store               DocumentStore
	summarizer          domain.Summarizer
	generator           Generator
	quotes              QuoteSource
	history             history.Store
	topK                int
	summaryMaxSentences int
	logger              *slog.Logger
}

// NewRAGService wires the service. quotes may be nil when market data is not
// wanted; a nil history store records in memory.
func NewRAGService(store DocumentStore, summarizer domain.Summarizer, generator Generator, quotes QuoteSource, hist history.Store, opts ...Option) *RAGServiceImpl {
	if hist == nil {
		hist = history.NewMemory(0)
	}
	s := &RAGServiceImpl{
		store:               store,
		summarizer:          summarizer,
		generator:           generator,
		quotes:              quotes,
		history:             hist,
		topK:                vectorstore.DefaultTopK,
		summaryMaxSentences: DefaultSummarySentences,
		logger:              slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestText stores content as one document and returns a short summary of it.
func (s *RAGServiceImpl) IngestText(ctx context.Context, content string, info domain.DocumentInfo) (IngestResult, error) {
	info.Source = strings.TrimSpace(info.Source)
	if info.Size == 0 {
		info.Size = int64(len(content))
	}
	res, err := s.store.AddDocument(ctx, content, info)
	if err != nil {
		if errors.Is(err, vectorstore.ErrEmptyContent) || errors.Is(err, vectorstore.ErrMissingSource) {
			return IngestResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return IngestResult{}, err
	}

	var summary string
	if s.summarizer != nil {
		summary, err = s.summarizer.Summarize(content, s.summaryMaxSentences)
		if err != nil {
			s.logger.Warn("summarize failed", "source", info.Source, "error", err)
			summary = ""
		}
	}

	if _, err := s.history.RecordUpload(ctx, history.UploadRecord{
		Source:  info.Source,
		Type:    info.Type,
		Size:    info.Size,
		Chunks:  res.Chunks,
		Summary: summary,
	}); err != nil {
		s.logger.Warn("record upload failed", "source", info.Source, "error", err)
	}

	return IngestResult{
		Source:      res.Source,
		Chunks:      res.Chunks,
		Replaced:    res.Replaced,
		Documents:   res.Documents,
		TotalChunks: res.TotalChunks,
		Summary:     summary,
	}, nil
}

// IngestFiles expands glob patterns and ingests every .txt and .md match,
// using the file's base name as its source. It stops at the first failure and
// returns what was ingested before it.
func (s *RAGServiceImpl) IngestFiles(ctx context.Context, paths []string, docType string) ([]IngestResult, error) {
	var files []string
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if supportedFile(m) {
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .txt or .md documents found", ErrInvalidInput)
	}

	results := make([]IngestResult, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return results, fmt.Errorf("read %s: %w", f, err)
		}
		t := docType
		if t == "" {
			t = typeForExt(f)
		}
		res, err := s.IngestText(ctx, string(data), domain.DocumentInfo{
			Source: filepath.Base(f),
			Type:   t,
			Size:   int64(len(data)),
		})
		if err != nil {
			return results, fmt.Errorf("ingest %s: %w", f, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func supportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func typeForExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return "text/markdown"
	}
	return "text/plain"
}

// Search returns the chunks most similar to query.
func (s *RAGServiceImpl) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = s.topK
	}
	return s.store.Search(ctx, query, topK)
}

// Ask retrieves context for the question, adds any requested market quotes
// and asks the language model. Upstream failures surface as a fallback answer,
// not an error.
func (s *RAGServiceImpl) Ask(ctx context.Context, req AskRequest) (Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	results, err := s.Search(ctx, question, req.TopK)
	if err != nil {
		return Answer{}, err
	}

	var quotes []domain.Quote
	if len(req.Symbols) > 0 && s.quotes != nil {
		quotes, err = s.quotes.Quotes(ctx, req.Symbols)
		if err != nil {
			s.logger.Warn("market quotes incomplete", "symbols", req.Symbols, "error", err)
		}
	}

	resp := s.generator.Generate(ctx, question, buildContext(results, req.Context, quotes))
	ans := Answer{
		Text:     resp.Text,
		Provider: resp.Provider,
		Fallback: resp.Fallback,
		Error:    resp.Error,
		Sources:  sourcesOf(results),
		Quotes:   quotes,
	}

	if _, err := s.history.RecordQuery(ctx, history.QueryRecord{
		Question: question,
		Answer:   ans.Text,
		Provider: ans.Provider,
		Sources:  ans.Sources,
		Fallback: ans.Fallback,
	}); err != nil {
		s.logger.Warn("record query failed", "error", err)
	}
	return ans, nil
}

func buildContext(results []domain.SearchResult, extra string, quotes []domain.Quote) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s]\n%s", r.Chunk.Metadata.Source, r.Chunk.Content)
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Additional context:\n")
		b.WriteString(extra)
	}
	if len(quotes) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Market data:")
		for _, q := range quotes {
			b.WriteString("\n")
			b.WriteString(formatQuote(q))
		}
	}
	return b.String()
}

func formatQuote(q domain.Quote) string {
	name := q.Name
	if name == "" {
		name = q.Symbol
	}
	line := fmt.Sprintf("- %s (%s): %.2f %s, %+.2f (%+.2f%%)", name, q.Symbol, q.Price, q.Currency, q.Change, q.ChangePercent)
	if q.Fallback {
		line += " [reference figure as of " + q.AsOf.Format("2006-01-02") + "]"
	}
	return line
}

func sourcesOf(results []domain.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	out := []string{}
	for _, r := range results {
		src := r.Chunk.Metadata.Source
		if seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}

// DeleteDocument removes a document by source.
func (s *RAGServiceImpl) DeleteDocument(ctx context.Context, source string) (int, error) {
	if strings.TrimSpace(source) == "" {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, vectorstore.ErrMissingSource)
	}
	return s.store.DeleteDocument(ctx, source)
}

// ClearAll removes every stored document.
func (s *RAGServiceImpl) ClearAll(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}

// Documents lists stored documents.
func (s *RAGServiceImpl) Documents() []domain.DocumentSummary {
	return s.store.Documents()
}

func (s *RAGServiceImpl) Stats() Stats {
	st := Stats{
		Documents: s.store.DocumentCount(),
		Chunks:    s.store.ChunkCount(),
		Providers: s.generator.Providers(),
	}
	if st.Providers == nil {
		st.Providers = []string{}
	}
	if s.quotes != nil {
		st.LiveMarket = s.quotes.Live()
	}
	return st
}

// History returns recent uploads and questions, newest first.
func (s *RAGServiceImpl) History(ctx context.Context, limit int) (HistoryView, error) {
	uploads, err := s.history.RecentUploads(ctx, limit)
	if err != nil {
		return HistoryView{}, err
	}
	queries, err := s.history.RecentQueries(ctx, limit)
	if err != nil {
		return HistoryView{}, err
	}
	return HistoryView{Uploads: uploads, Queries: queries}, nil
}

package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arthagpt/internal/blobstore/memory"
	"arthagpt/internal/chunker"
	"arthagpt/internal/domain"
	"arthagpt/internal/embedding/hashing"
	"arthagpt/internal/history"
	"arthagpt/internal/llm"
	"arthagpt/internal/market"
	"arthagpt/internal/summarizer"
	"arthagpt/internal/vectorstore"
)

const (
	axisDoc = "Axis Bluechip Fund invests in large cap companies. The fund returns have been steady over five years."
	goldDoc = "Gold prices rose in Mumbai markets this week as wedding season demand picked up."
	ppfDoc  = "Public Provident Fund deposits earn tax free interest with a fifteen year lock in."
)

type fakeGenerator struct {
	resp        llm.Response
	gotPrompt   string
	gotContext  string
	calls       int
	providerSet []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt, contextText string) llm.Response {
	f.calls++
	f.gotPrompt, f.gotContext = prompt, contextText
	return f.resp
}

func (f *fakeGenerator) Providers() []string { return f.providerSet }

type brokenHistory struct{ history.Store }

func (brokenHistory) RecordUpload(context.Context, history.UploadRecord) (history.UploadRecord, error) {
	return history.UploadRecord{}, errors.New("disk full")
}

func (brokenHistory) RecordQuery(context.Context, history.QueryRecord) (history.QueryRecord, error) {
	return history.QueryRecord{}, errors.New("disk full")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc   *RAGServiceImpl
	gen   *fakeGenerator
	hist  *history.Memory
	store *vectorstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := vectorstore.New(context.Background(), memory.NewStorage(), hashing.NewEmbedder(0),
		chunker.NewWordChunker(0), vectorstore.WithLogger(quietLogger()))
	require.NoError(t, err)
	gen := &fakeGenerator{
		resp:        llm.Response{Text: "Consider large cap funds for stability.", Provider: "groq"},
		providerSet: []string{"groq"},
	}
	hist := history.NewMemory(0)
	svc := NewRAGService(store, summarizer.NewFrequencySummarizer(), gen,
		market.NewGateway(nil, market.WithLogger(quietLogger())), hist, WithLogger(quietLogger()))
	return &fixture{svc: svc, gen: gen, hist: hist, store: store}
}

func (f *fixture) ingestAll(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for src, doc := range map[string]string{"axis.txt": axisDoc, "gold.txt": goldDoc, "ppf.txt": ppfDoc} {
		_, err := f.svc.IngestText(ctx, doc, domain.DocumentInfo{Source: src, Type: "text/plain"})
		require.NoError(t, err)
	}
}

func TestIngestTextReportsCountsAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.IngestText(ctx, axisDoc, domain.DocumentInfo{Source: " axis.txt ", Type: "text/plain"})
	require.NoError(t, err)

	assert.Equal(t, "axis.txt", res.Source)
	assert.Equal(t, 1, res.Chunks)
	assert.Equal(t, 1, res.Documents)
	assert.Equal(t, 1, res.TotalChunks)
	assert.NotEmpty(t, res.Summary)

	uploads, err := f.hist.RecentUploads(ctx, 5)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "axis.txt", uploads[0].Source)
	assert.Equal(t, int64(len(axisDoc)), uploads[0].Size)
	assert.Equal(t, res.Summary, uploads[0].Summary)
}

func TestIngestTextInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.IngestText(ctx, "   \n\t", domain.DocumentInfo{Source: "blank.txt"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, vectorstore.ErrEmptyContent)

	_, err = f.svc.IngestText(ctx, axisDoc, domain.DocumentInfo{Source: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, vectorstore.ErrMissingSource)

	assert.Zero(t, f.store.ChunkCount())
}

func TestIngestFiles(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "axis.txt"), []byte(axisDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gold.md"), []byte(goldDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte{0x89, 0x50}, 0o644))

	results, err := f.svc.IngestFiles(context.Background(), []string{filepath.Join(dir, "*")}, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	docs := f.svc.Documents()
	require.Len(t, docs, 2)
	types := map[string]string{}
	for _, d := range docs {
		types[d.Source] = d.Type
	}
	assert.Equal(t, map[string]string{"axis.txt": "text/plain", "gold.md": "text/markdown"}, types)
}

func TestIngestFilesErrors(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	_, err := f.svc.IngestFiles(context.Background(), []string{filepath.Join(dir, "*.pdf")}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(axisDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("   "), 0o644))
	results, err := f.svc.IngestFiles(context.Background(), []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.txt")
	assert.Len(t, results, 1)

	_, err = f.svc.IngestFiles(context.Background(), []string{filepath.Join(dir, "missing.txt")}, "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAskBuildsContextFromRetrievalAndQuotes(t *testing.T) {
	f := newFixture(t)
	f.ingestAll(t)

	ans, err := f.svc.Ask(context.Background(), AskRequest{
		Question: "  Axis Bluechip fund returns ",
		Context:  "Investor is 30 years old with moderate risk appetite.",
		Symbols:  []string{"gold", "bitcoin"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Consider large cap funds for stability.", ans.Text)
	assert.Equal(t, "groq", ans.Provider)
	assert.False(t, ans.Fallback)
	require.NotEmpty(t, ans.Sources)
	assert.Equal(t, "axis.txt", ans.Sources[0])
	require.Len(t, ans.Quotes, 1)
	assert.Equal(t, "GOLD", ans.Quotes[0].Symbol)

	assert.Equal(t, "Axis Bluechip fund returns", f.gen.gotPrompt)
	assert.Contains(t, f.gen.gotContext, "[axis.txt]\n"+axisDoc)
	assert.Contains(t, f.gen.gotContext, "Additional context:\nInvestor is 30 years old")
	assert.Contains(t, f.gen.gotContext, "Market data:\n- Gold 24K (per 10g) (GOLD):")
	assert.Contains(t, f.gen.gotContext, "reference figure as of 2025-01-31")

	queries, err := f.hist.RecentQueries(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, ans.Sources, queries[0].Sources)
	assert.Equal(t, "groq", queries[0].Provider)
}

func TestAskWithNothingRelevant(t *testing.T) {
	f := newFixture(t)
	f.ingestAll(t)

	ans, err := f.svc.Ask(context.Background(), AskRequest{Question: "What about the weather on Mars?"})
	require.NoError(t, err)
	assert.Empty(t, ans.Sources)
	assert.Empty(t, f.gen.gotContext)
	assert.Equal(t, 1, f.gen.calls)
}

func TestAskSurfacesFallback(t *testing.T) {
	f := newFixture(t)
	f.gen.resp = llm.Response{Text: llm.FallbackMessage, Error: "service unavailable", Fallback: true}

	ans, err := f.svc.Ask(context.Background(), AskRequest{Question: "Is gold a good hedge?"})
	require.NoError(t, err)
	assert.True(t, ans.Fallback)
	assert.Equal(t, "service unavailable", ans.Error)
	assert.Equal(t, llm.FallbackMessage, ans.Text)
}

func TestAskEmptyQuestion(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), AskRequest{Question: " \n "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, f.gen.calls)
}

func TestHistoryFailureDoesNotFailRequests(t *testing.T) {
	f := newFixture(t)
	svc := NewRAGService(f.store, nil, f.gen, nil, brokenHistory{}, WithLogger(quietLogger()))

	res, err := svc.IngestText(context.Background(), goldDoc, domain.DocumentInfo{Source: "gold.txt"})
	require.NoError(t, err)
	assert.Empty(t, res.Summary)

	_, err = svc.Ask(context.Background(), AskRequest{Question: "gold prices", Symbols: []string{"GOLD"}})
	assert.NoError(t, err)
}

func TestDeleteClearAndStats(t *testing.T) {
	f := newFixture(t)
	f.ingestAll(t)
	ctx := context.Background()

	st := f.svc.Stats()
	assert.Equal(t, 3, st.Documents)
	assert.Equal(t, 3, st.Chunks)
	assert.Equal(t, []string{"groq"}, st.Providers)
	assert.False(t, st.LiveMarket)

	removed, err := f.svc.DeleteDocument(ctx, "gold.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, f.svc.Stats().Documents)

	_, err = f.svc.DeleteDocument(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, f.svc.ClearAll(ctx))
	assert.Zero(t, f.svc.Stats().Chunks)
}

func TestHistoryView(t *testing.T) {
	f := newFixture(t)
	f.ingestAll(t)
	_, err := f.svc.Ask(context.Background(), AskRequest{Question: "gold prices wedding demand"})
	require.NoError(t, err)

	view, err := f.svc.History(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, view.Uploads, 2)
	require.Len(t, view.Queries, 1)
	assert.Equal(t, "gold.txt", view.Queries[0].Sources[0])
}

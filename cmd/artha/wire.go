package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"arthagpt/internal/blobstore/file"
	"arthagpt/internal/blobstore/memory"
	"arthagpt/internal/blobstore/sqlite"
	"arthagpt/internal/chunker"
	"arthagpt/internal/config"
	"arthagpt/internal/domain"
	"arthagpt/internal/embedding/hashing"
	"arthagpt/internal/history"
	"arthagpt/internal/llm"
	"arthagpt/internal/market"
	"arthagpt/internal/service"
	"arthagpt/internal/summarizer"
	"arthagpt/internal/vectorstore"
)

type application struct {
	svc     *service.RAGServiceImpl
	quotes  *market.Gateway
	closers []io.Closer
}

func (a *application) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func buildApplication(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*application, error) {
	app := &application{}

	var blob domain.BlobStore
	switch cfg.Storage.Type {
	case "memory":
		blob = memory.NewStorage()
	case "file":
		fs, err := file.NewStorage(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("file storage: %w", err)
		}
		blob = fs
	case "sqlite", "":
		db, err := sqlite.NewStorage(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite storage: %w", err)
		}
		app.closers = append(app.closers, db)
		blob = db
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}

	store, err := vectorstore.New(ctx, blob,
		hashing.NewEmbedder(hashing.DefaultDimension),
		chunker.NewWordChunker(cfg.Chunker.MaxWords),
		vectorstore.WithKey(cfg.Storage.Key),
		vectorstore.WithMinScore(cfg.Retrieval.Threshold()),
		vectorstore.WithLogger(logger),
	)
	if err != nil {
		app.Close()
		return nil, err
	}

	gateway := llm.NewGateway(llm.ProvidersFromConfig(cfg.LLM, logger),
		llm.WithLogger(logger),
		llm.WithTimeout(time.Duration(cfg.LLM.TimeoutSecs)*time.Second),
	)

	var quoteProviders []domain.QuoteProvider
	av := cfg.Market.AlphaVantage
	if key := av.APIKey(); key != "" {
		quoteProviders = append(quoteProviders, market.NewAlphaVantage(av.BaseURL, key, av.RequestsPerMinute,
			time.Duration(av.TimeoutSecs)*time.Second))
	}
	app.quotes = market.NewGateway(quoteProviders, market.WithLogger(logger))

	hist, err := history.Open(cfg.History)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("history store: %w", err)
	}
	app.closers = append(app.closers, hist)

	app.svc = service.NewRAGService(store, summarizer.NewFrequencySummarizer(), gateway, app.quotes, hist,
		service.WithTopK(cfg.Retrieval.TopK),
		service.WithSummarySentences(cfg.Summarizer.MaxSentences),
		service.WithLogger(logger),
	)
	logger.Debug("application ready",
		"storage", cfg.Storage.Type,
		"history", cfg.History.Type,
		"providers", gateway.Providers(),
		"live_market", app.quotes.Live(),
	)
	return app, nil
}

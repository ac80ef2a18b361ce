// Package handler exposes the retrieval service over HTTP.
package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"arthagpt/internal/config"
	"arthagpt/internal/domain"
	"arthagpt/internal/service"
	"arthagpt/internal/vectorstore"
)

// Service is the subset of the RAG service the API uses.
type Service interface {
	IngestText(ctx context.Context, content string, info domain.DocumentInfo) (service.IngestResult, error)
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
	Ask(ctx context.Context, req service.AskRequest) (service.Answer, error)
	DeleteDocument(ctx context.Context, source string) (int, error)
	ClearAll(ctx context.Context) error
	Documents() []domain.DocumentSummary
	Stats() service.Stats
	History(ctx context.Context, limit int) (service.HistoryView, error)
}

// QuoteSource serves market quotes.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) ([]domain.Quote, error)
}

// NewApp builds the fiber app with global middleware and every route mounted
// under /api/v1.
func NewApp(cfg config.ServerConfig, svc Service, quotes QuoteSource) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	}))

	Register(app.Group("/api/v1"), cfg.AppName, svc, quotes)
	return app
}

// Register mounts all routes on router.
func Register(router fiber.Router, appName string, svc Service, quotes QuoteSource) {
	router.Get("/health", func(c fiber.Ctx) error {
		st := svc.Stats()
		return c.JSON(fiber.Map{
			"status":      "healthy",
			"app":         appName,
			"documents":   st.Documents,
			"chunks":      st.Chunks,
			"providers":   st.Providers,
			"live_market": st.LiveMarket,
		})
	})

	NewDocumentHandler(svc).Register(router)
	NewChatHandler(svc).Register(router)
	NewMarketHandler(quotes).Register(router)
	NewHistoryHandler(svc).Register(router)
}

// errorResponse maps service errors to a status and a message safe to show.
func errorResponse(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, vectorstore.ErrEmptyContent):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vectorstore.ErrEmptyContent.Error()})
	case errors.Is(err, vectorstore.ErrMissingSource):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vectorstore.ErrMissingSource.Error()})
	case errors.Is(err, service.ErrEmptyQuestion):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": service.ErrEmptyQuestion.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

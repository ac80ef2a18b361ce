package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"arthagpt/internal/domain"
)

// MarketHandler serves quotes.
type MarketHandler struct {
	quotes QuoteSource
}

func NewMarketHandler(quotes QuoteSource) *MarketHandler {
	return &MarketHandler{quotes: quotes}
}

// Register sets up market routes.
func (h *MarketHandler) Register(router fiber.Router) {
	router.Get("/market/quotes", h.Quotes)
}

// Quotes returns quotes for ?symbols=A,B or the whole reference table.
func (h *MarketHandler) Quotes(c fiber.Ctx) error {
	var symbols []string
	for _, s := range strings.Split(c.Query("symbols", ""), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	quotes, err := h.quotes.Quotes(c.Context(), symbols)
	if quotes == nil {
		quotes = []domain.Quote{}
	}
	resp := fiber.Map{"quotes": quotes, "count": len(quotes)}
	if err != nil {
		resp["warning"] = err.Error()
	}
	return c.JSON(resp)
}

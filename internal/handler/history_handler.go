package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// HistoryHandler serves the recent activity log.
type HistoryHandler struct {
	svc Service
}

func NewHistoryHandler(svc Service) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// Register sets up history routes.
func (h *HistoryHandler) Register(router fiber.Router) {
	router.Get("/history", h.List)
}

// List returns recent uploads and questions.
func (h *HistoryHandler) List(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	view, err := h.svc.History(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "history unavailable"})
	}
	return c.JSON(view)
}

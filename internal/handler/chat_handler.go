package handler

import (
	"github.com/gofiber/fiber/v3"

	"arthagpt/internal/service"
)

// ChatHandler answers questions over the stored documents.
type ChatHandler struct {
	svc Service
}

func NewChatHandler(svc Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Register sets up chat routes.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/chat", h.Chat)
}

// Chat returns 200 even when no model is reachable; the answer is then the
// fallback message with "fallback": true.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var body service.AskRequest
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	ans, err := h.svc.Ask(c.Context(), body)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(ans)
}

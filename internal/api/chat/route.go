package chat

import "github.com/gofiber/fiber/v3"

func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Get("/api/chat", h.HandleChat)
	// legacy path, same handler
	r.Get("/chat", h.HandleChat)
}

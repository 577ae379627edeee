package hotel

import "github.com/gofiber/fiber/v3"

func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Post("/api/hotel", h.HandleAsk)
}

package ingest

import (
	"github.com/gofiber/fiber/v3"
)

func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Get("/api/ingest/status", h.HandleStatus)
}

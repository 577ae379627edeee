package healthcheck

import (
	"ai-concierge/config"
	"ai-concierge/pkg/apperror"
	"ai-concierge/pkg/apperror/status"

	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

type Handler struct {
	database    PingFunc
	vectorStore PingFunc
}

func NewHandler(database, vectorStore PingFunc) *Handler {
	return &Handler{database: database, vectorStore: vectorStore}
}

func (h *Handler) ApiHealthCheck(c fiber.Ctx) error {
	return c.SendString("ok")
}

func (h *Handler) DatabaseHealthCheck(c fiber.Ctx) error {
	return check(c, config.ModuleDatabase, h.database)
}

func (h *Handler) VectorStoreHealthCheck(c fiber.Ctx) error {
	return check(c, config.ModuleVectorStore, h.vectorStore)
}

func check(c fiber.Ctx, module config.Module, ping PingFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ping(ctx); err != nil {
		return apperror.InternalError(module, c, status.New(status.StorageUnavailable, err))
	}
	return c.SendString("ok")
}

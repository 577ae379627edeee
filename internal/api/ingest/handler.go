package ingest

import (
	"ai-concierge/config"
	coreingest "ai-concierge/internal/core/ingest"
	"ai-concierge/pkg/apperror"
	"ai-concierge/pkg/apperror/status"
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

type StatusReader interface {
	Status(ctx context.Context) (coreingest.Result, error)
}

type Handler struct {
	reader StatusReader
}

func NewHandler(reader StatusReader) *Handler {
	return &Handler{reader: reader}
}

// HandleStatus reports the last bootstrap run.
func (h *Handler) HandleStatus(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := h.reader.Status(ctx)
	if err != nil {
		return apperror.InternalError(config.ModuleIngest, c, status.New(status.StorageUnavailable, err))
	}
	return apperror.Success(config.ModuleIngest, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "ingest " + string(res.Status),
		TrackingID: apperror.TrackingID(c),
		Data:       res,
	})
}

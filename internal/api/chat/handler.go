package chat

import (
	"ai-concierge/config"
	corechat "ai-concierge/internal/core/chat"
	"ai-concierge/internal/core/roster"
	"ai-concierge/pkg/apperror"
	"ai-concierge/pkg/apperror/status"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

type Asker interface {
	Ask(ctx context.Context, question string) ([]roster.Student, error)
}

type Handler struct {
	svc     Asker
	timeout time.Duration
}

func NewHandler(svc Asker, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{svc: svc, timeout: timeout}
}

// HandleChat answers roster questions with a JSON array of students.
// The question comes from ?question= or, on the legacy route, ?req=.
func (h *Handler) HandleChat(c fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("question"))
	if q == "" {
		q = strings.TrimSpace(c.Query("req"))
	}
	if q == "" {
		return apperror.BadRequest(config.ModuleChat, c, status.MissingParams, "question is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	students, err := h.svc.Ask(ctx, q)
	if err != nil {
		switch {
		case errors.Is(err, roster.ErrEmptyQuestion):
			return apperror.BadRequest(config.ModuleChat, c, status.MissingParams, err.Error())
		case errors.Is(err, corechat.ErrMalformedOutput):
			return apperror.InternalError(config.ModuleChat, c, status.New(status.MalformedModelOutput, err))
		default:
			return apperror.InternalError(config.ModuleChat, c, status.New(status.ChatCompletionFailed, err))
		}
	}
	return c.Status(fiber.StatusOK).JSON(students)
}

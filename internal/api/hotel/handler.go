package hotel

import (
	"ai-concierge/config"
	corehotel "ai-concierge/internal/core/hotel"
	"ai-concierge/pkg/apperror"
	"ai-concierge/pkg/apperror/status"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

type askRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type Handler struct {
	svc      Asker
	timeout  time.Duration
	validate *validator.Validate
}

func NewHandler(svc Asker, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{svc: svc, timeout: timeout, validate: validator.New()}
}

// HandleAsk answers a guest question as plain text. The body is JSON
// {"question": "..."}; a text/plain body is taken as the question itself.
func (h *Handler) HandleAsk(c fiber.Ctx) error {
	var req askRequest
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMETextPlain) {
		req.Question = string(c.Body())
	} else if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleHotel, c, status.InvalidRequestBody, err.Error())
	}
	req.Question = strings.TrimSpace(req.Question)
	if err := h.validate.Struct(req); err != nil {
		return apperror.BadRequest(config.ModuleHotel, c, status.InvalidParams, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	answer, err := h.svc.Ask(ctx, req.Question)
	if err != nil {
		if errors.Is(err, corehotel.ErrEmptyQuestion) {
			return apperror.BadRequest(config.ModuleHotel, c, status.MissingParams, err.Error())
		}
		return apperror.FromError(config.ModuleHotel, c, status.WithDefault(status.ChatCompletionFailed, err))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(answer)
}

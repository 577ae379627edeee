package retriever

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"ai-concierge/config"
	coreretriever "ai-concierge/internal/core/retriever"
	"ai-concierge/internal/core/vectorstore"
	"ai-concierge/pkg/apperror"
	"ai-concierge/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

const maxTopK = 64

type Searcher interface {
	SearchTopK(ctx context.Context, question string, topK int) ([]vectorstore.Hit, error)
}

type searchResponse struct {
	Hits []vectorstore.Hit `json:"hits"`
}

type Handler struct {
	searcher Searcher
	timeout  time.Duration
}

func NewHandler(searcher Searcher, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Handler{searcher: searcher, timeout: timeout}
}

func (h *Handler) HandleSearch(c fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return apperror.BadRequest(config.ModuleRetriever, c, status.MissingParams, "q is required")
	}
	topK := 0
	if topKStr := c.Query("top_k"); topKStr != "" {
		v, err := strconv.Atoi(topKStr)
		if err != nil || v <= 0 || v > maxTopK {
			return apperror.BadRequest(config.ModuleRetriever, c, status.InvalidParams, "top_k must be between 1 and 64")
		}
		topK = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	hits, err := h.searcher.SearchTopK(ctx, q, topK)
	if err != nil {
		if errors.Is(err, coreretriever.ErrEmptyQuestion) {
			return apperror.BadRequest(config.ModuleRetriever, c, status.MissingParams, err.Error())
		}
		return apperror.FromError(config.ModuleRetriever, c, status.WithDefault(status.RetrievalFailed, err))
	}

	return apperror.Success(config.ModuleRetriever, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "search ok",
		TrackingID: apperror.TrackingID(c),
		Data:       searchResponse{Hits: hits},
	})
}

package apperror

import (
	"ai-concierge/config"
	"ai-concierge/pkg/apperror/status"
	"ai-concierge/pkg/logger"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// ErrorResponse is the standardized HTTP error payload
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

type FiberSuccessMessage struct {
	Code       status.SuccessCode `json:"code"`
	Message    string             `json:"message"`
	TrackingID string             `json:"tracking_id"`
	Data       any                `json:"data"`
}

// WriteError logs a structured warning and returns a standardized JSON error
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, code string, message string) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    code,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"url":           c.OriginalURL(),
		"ip":            c.IP(),
		"tracking_id":   TrackingID(c),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(ErrorResponse{
		Error:     message,
		ErrorCode: code,
	})
}

func formatCode(code status.ErrorCode) string {
	return fmt.Sprintf("AI-%d", code)
}

// Shorthands for common error responses
func BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	return WriteError(module, c, fiber.StatusBadRequest, formatCode(code), message)
}

// InternalError writes a structured warning and returns a standardized JSON error.
// A status.CodedError in err's chain decides the error code.
func InternalError(module config.Module, c fiber.Ctx, err error) error {
	return WriteError(module, c, fiber.StatusInternalServerError, formatCode(status.CodeOf(err)), err.Error())
}

// TrackingID returns the request id set by the requestid middleware, falling
// back to the client's X-Request-ID header.
func TrackingID(c fiber.Ctx) string {
	if id := requestid.FromContext(c); id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

// Success writes a standardized JSON success response
func Success(module config.Module, fiberCtx fiber.Ctx, response FiberSuccessMessage) error {
	return fiberCtx.Status(fiber.StatusOK).JSON(response)
}

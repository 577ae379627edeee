package apperror

import (
	"ai-concierge/config"
	"ai-concierge/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

// FromError picks the response for err by its status code: client codes map
// to 400, everything else to 500.
func FromError(module config.Module, c fiber.Ctx, err error) error {
	code := status.CodeOf(err)
	if code.IsClientError() {
		return BadRequest(module, c, code, err.Error())
	}
	return InternalError(module, c, err)
}

package middleware

import (
	"ai-concierge/config"
	"ai-concierge/pkg/logger"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// ConnectionLimiter limits the number of concurrent connections
type ConnectionLimiter struct {
	limit    int
	waitlist chan struct{}
}

func NewConnectionLimiter(limit int) *ConnectionLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &ConnectionLimiter{
		limit:    limit,
		waitlist: make(chan struct{}, limit),
	}
}

func (cl *ConnectionLimiter) Acquire() bool {
	select {
	case cl.waitlist <- struct{}{}:
		return true
	default:
		return false
	}
}

func (cl *ConnectionLimiter) Release() {
	select {
	case <-cl.waitlist:
	default:
	}
}

// InFlight returns the number of requests currently holding a slot.
func (cl *ConnectionLimiter) InFlight() int {
	return len(cl.waitlist)
}

// Register installs request id, panic recovery, request logging and the
// connection limiter on app, in that order.
func Register(app fiber.Router, maxConnections int) *ConnectionLimiter {
	limiter := NewConnectionLimiter(maxConnections)
	app.Use(requestid.New())
	app.Use(panicRecoveryMiddleware())
	app.Use(requestLoggerMiddleware())
	app.Use(connectionLimiterMiddleware(limiter))
	return limiter
}

// connectionLimiterMiddleware creates a middleware for connection limiting
func connectionLimiterMiddleware(limiter *ConnectionLimiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !limiter.Acquire() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Server is at maximum capacity")
		}
		defer limiter.Release()
		return c.Next()
	}
}

func requestLoggerMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.WithFields(map[string]interface{}{
			"module":      config.ModuleServer,
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      c.Response().StatusCode(),
			"latency_ms":  time.Since(start).Milliseconds(),
			"tracking_id": requestid.FromContext(c),
		}).Debug("http request")
		return err
	}
}

// panicRecoveryMiddleware creates a middleware for panic recovery
func panicRecoveryMiddleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				// Log the panic with stack trace
				stack := debug.Stack()
				logger.WithFields(map[string]interface{}{
					"module":     config.ModuleServer,
					"panic":      r,
					"method":     c.Method(),
					"path":       c.Path(),
					"ip":         c.IP(),
					"user_agent": c.Get("User-Agent"),
					"stack":      string(stack),
				}).Errorf("Panic recovered")

				// Return 500 Internal Server Error
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":      "Internal Server Error",
					"error_code": "AI-9000",
				})
			}
		}()
		return c.Next()
	}
}

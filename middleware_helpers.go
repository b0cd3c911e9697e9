package marketplace

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs method, path, status and latency of every request
func RequestLogger(logger Logger) fiber.Handler {
	logger = normalizeLogger(logger)
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = StatusOf(err)
		}

		logger.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
		)
		return err
	}
}

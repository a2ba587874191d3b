package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request.
func RequestLogger(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		kv := []any{"method", c.Method(), "path", c.Path(), "status", status, "duration", time.Since(start)}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request", kv...)
		} else {
			logger.Debug("request", kv...)
		}
		return err
	}
}

package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logging prints one line per request: method, path, status and latency.
func Logging() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		log.Printf("[HTTP] %s %s -> %d (%s)", c.Method(), c.OriginalURL(), status, time.Since(start))
		return err
	}
}

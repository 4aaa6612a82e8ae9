package middleware

import (
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// HandleInputErrors stops the chain with 400 when validation recorded any violation.
func HandleInputErrors(c *fiber.Ctx) error {
	if violations := validation.Errors(c); len(violations) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": violations,
		})
	}

	// Nothing to report, continue to the handler.
	return c.Next()
}

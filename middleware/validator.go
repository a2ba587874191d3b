package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ValidatePageQuery rejects a "page" query parameter that is not a positive integer.
func ValidatePageQuery(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "The page must be a positive integer.",
		})
	}
	return c.Next()
}

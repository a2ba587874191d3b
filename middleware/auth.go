// Package middleware contains the Fiber middleware guarding and instrumenting the API.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"songboard/models"
	"songboard/services"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthRequired only lets requests carrying a valid bearer token through.
// The resolved user and token are stored in the request locals.
func AuthRequired(auth Authenticator, logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthenticated."})
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if errors.Is(err, services.ErrUnauthenticated) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthenticated."})
		}
		if err != nil {
			logger.Error("token lookup failed", "err", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Authentication is unavailable."})
		}

		c.Locals(userKey, user)
		c.Locals(tokenKey, token)
		return c.Next()
	}
}

// CurrentUser returns the user set by [AuthRequired].
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(userKey).(models.User)
	return user, ok
}

// CurrentToken returns the token set by [AuthRequired].
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}

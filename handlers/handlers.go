// Package handlers translates HTTP requests into catalog, moderation and auth calls.
package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"songboard/services"
)

// Handler groups the endpoints of the API.
type Handler struct {
	catalog    *services.Catalog
	moderation *services.Moderation
	auth       *services.Auth
	logger     *log.Logger
}

// New creates a [Handler].
func New(catalog *services.Catalog, moderation *services.Moderation, auth *services.Auth, logger *log.Logger) *Handler {
	return &Handler{catalog: catalog, moderation: moderation, auth: auth, logger: logger}
}

const validationMessage = "Validation failed. Check the fields below."

// fail writes the JSON response for err.
func (h *Handler) fail(c *fiber.Ctx, err error, notFound string) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": validationMessage, "errors": verr.Fields})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": notFound})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password."})
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthenticated."})
	}

	h.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong. Please try again."})
}

// bind decodes the JSON body into out. A type mismatch on a known field is reported like any
// other validation failure; anything else is a malformed request. On false the response is already written.
func (h *Handler) bind(c *fiber.Ctx, out any) (bool, error) {
	err := c.BodyParser(out)
	if err == nil {
		return true, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return false, h.fail(c, services.Invalid(typeErr.Field, "The "+typeErr.Field+" field has an invalid type."), "")
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body."})
}

// songID parses the :id route parameter. Anything but a positive integer cannot name a song.
func songID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

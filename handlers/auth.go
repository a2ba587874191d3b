package handlers

import (
	"github.com/gofiber/fiber/v2"

	"songboard/middleware"
	"songboard/services"
)

func sessionResponse(message string, session services.Session) fiber.Map {
	return fiber.Map{
		"message":    message,
		"user":       session.User,
		"token":      session.Token,
		"token_type": services.TokenType,
	}
}

// Register creates an account and returns its first token.
func (h *Handler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if ok, err := h.bind(c, &in); !ok {
		return err
	}

	session, err := h.auth.Register(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse("User registered successfully!", session))
}

// Login exchanges credentials for a token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var in services.LoginInput
	if ok, err := h.bind(c, &in); !ok {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err, "")
	}
	return c.JSON(sessionResponse("Login successful!", session))
}

// Logout revokes the token used for the request.
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(middleware.CurrentToken(c))
	return c.JSON(fiber.Map{"message": "Logout successful!"})
}

// Me returns the authenticated user.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthenticated."})
	}
	return c.JSON(user)
}

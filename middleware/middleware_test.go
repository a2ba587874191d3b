package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"songboard/logger"
	"songboard/models"
	"songboard/services"
)

type stubAuth struct {
	users map[string]models.User
	err   error
}

func (s stubAuth) Authenticate(ctx context.Context, token string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	u, ok := s.users[token]
	if !ok {
		return models.User{}, services.ErrUnauthenticated
	}
	return u, nil
}

func authApp(auth Authenticator) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthRequired(auth, logger.Discard()), func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.JSON(fiber.Map{"name": user.Name, "token": CurrentToken(c)})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	auth := stubAuth{users: map[string]models.User{"good": {ID: uuid.New(), Name: "Ana"}}}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic good", fiber.StatusUnauthorized},
		{"unknown token", "Bearer bad", fiber.StatusUnauthorized},
		{"valid token", "Bearer good", fiber.StatusOK},
		{"case insensitive scheme", "bearer good", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := authApp(auth).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == fiber.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "Ana", body["name"])
				assert.Equal(t, "good", body["token"])
			}
		})
	}

	t.Run("storage failure", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer good")

		resp, err := authApp(stubAuth{err: errors.New("redis down")}).Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestValidatePageQuery(t *testing.T) {
	app := fiber.New()
	app.Get("/songs", ValidatePageQuery, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for query, status := range map[string]int{
		"":          fiber.StatusOK,
		"?page=3":   fiber.StatusOK,
		"?page=0":   fiber.StatusBadRequest,
		"?page=-1":  fiber.StatusBadRequest,
		"?page=two": fiber.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", "/songs"+query, nil))
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, query)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, logger.Discard())
	app := fiber.New()
	app.Post("/songs", rl.Handler, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	var statuses []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/songs", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusCreated, fiber.StatusCreated, fiber.StatusTooManyRequests}, statuses)

	assert.Zero(t, rl.Prune(time.Hour))
	assert.Equal(t, 1, rl.Prune(0))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0, logger.Discard())
	for i := 0; i < 100; i++ {
		assert.True(t, rl.allow("1.2.3.4"))
	}
}

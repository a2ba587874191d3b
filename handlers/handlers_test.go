package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongID(t *testing.T) {
	app := fiber.New()
	app.Get("/songs/:id", func(c *fiber.Ctx) error {
		if _, ok := songID(c); !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	valid := []string{"/songs/1", "/songs/42"}
	invalid := []string{"/songs/0", "/songs/-3", "/songs/abc", "/songs/1.5", "/songs/99999999999999999999"}

	tests := map[string]int{}
	for _, p := range valid {
		tests[p] = fiber.StatusOK
	}
	for _, p := range invalid {
		tests[p] = fiber.StatusNotFound
	}
	for path, want := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"songboard/config"
	"songboard/logger"
	"songboard/middleware"
	"songboard/models"
	"songboard/services"
	"songboard/testutil"
)

type testEnv struct {
	app   *fiber.App
	songs *testutil.SongStore
	auth  *services.Auth
}

func newTestEnv(t *testing.T, songs ...models.Song) *testEnv {
	t.Helper()

	l := logger.Discard()
	store := testutil.NewSongStore(songs...)
	auth := services.NewAuth(testutil.NewUserStore(), services.NewTokenStore(testutil.NewStorage(), 0), l,
		services.WithHashCost(bcrypt.MinCost))

	app := New(config.ServerConfig{}, Deps{
		Catalog:    services.NewCatalog(store, 10, l),
		Moderation: services.NewModeration(store, l),
		Auth:       auth,
		Limiter:    middleware.NewRateLimiter(0, 0, l),
		Logger:     l,
	})
	return &testEnv{app: app, songs: store, auth: auth}
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()

	session, err := e.auth.Register(context.Background(), services.RegisterInput{
		Name: "Admin", Email: "admin@example.com", Password: "password1", PasswordConfirmation: "password1",
	})
	require.NoError(t, err)
	return session.Token
}

// call sends a request and decodes the JSON response into out when out is not nil.
func (e *testEnv) call(t *testing.T, method, path, body, token string, out any) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type songEnvelope struct {
	Message string              `json:"message"`
	Data    models.Song         `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func pos(p int) *int { return &p }

func TestListSongs(t *testing.T) {
	env := newTestEnv(t,
		models.Song{Title: "ranked", IsApproved: true, Position: pos(1)},
		models.Song{Title: "popular", IsApproved: true, Views: 50},
		models.Song{Title: "pending"},
	)

	var listing services.Listing
	status := env.call(t, "GET", "/api/songs", "", "", &listing)
	require.Equal(t, fiber.StatusOK, status)

	require.Len(t, listing.TopFive, 1)
	assert.Equal(t, "ranked", listing.TopFive[0].Title)
	require.Len(t, listing.Paginated.Data, 1)
	assert.Equal(t, "popular", listing.Paginated.Data[0].Title)
	assert.Equal(t, 1, listing.Paginated.CurrentPage)
	assert.Equal(t, 1, listing.Paginated.LastPage)
	assert.Equal(t, 10, listing.Paginated.PerPage)

	var raw struct {
		Paginated map[string]any `json:"paginated"`
	}
	env.call(t, "GET", "/api/songs?page=2", "", "", &raw)
	for _, key := range []string{"data", "current_page", "last_page", "per_page", "total", "from", "to"} {
		assert.Contains(t, raw.Paginated, key)
	}

	assert.Equal(t, fiber.StatusBadRequest, env.call(t, "GET", "/api/songs?page=0", "", "", nil))
}

func TestListSongsHugePage(t *testing.T) {
	env := newTestEnv(t,
		models.Song{Title: "ranked", IsApproved: true, Position: pos(1)},
		models.Song{Title: "popular", IsApproved: true, Views: 50},
	)

	var listing services.Listing
	status := env.call(t, "GET", "/api/songs?page=9223372036854775807", "", "", &listing)
	require.Equal(t, fiber.StatusOK, status)

	assert.Len(t, listing.TopFive, 1)
	assert.Empty(t, listing.Paginated.Data)
	assert.Equal(t, 1, listing.Paginated.LastPage)
	assert.Equal(t, 1, listing.Paginated.Total)
	assert.Nil(t, listing.Paginated.From)
	assert.Nil(t, listing.Paginated.To)
}

func TestSuggestSong(t *testing.T) {
	t.Run("created unapproved", func(t *testing.T) {
		env := newTestEnv(t)

		var resp songEnvelope
		status := env.call(t, "POST", "/api/songs", `{"title":"A","artist":"B","youtube_url":"https://youtube.com/watch?v=x"}`, "", &resp)
		require.Equal(t, fiber.StatusCreated, status)
		assert.NotEmpty(t, resp.Message)
		assert.False(t, resp.Data.IsApproved)
		assert.Nil(t, resp.Data.Position)

		stored, ok := env.songs.Get(resp.Data.ID)
		require.True(t, ok)
		assert.False(t, stored.IsApproved)
	})

	t.Run("missing title", func(t *testing.T) {
		env := newTestEnv(t)

		var resp songEnvelope
		status := env.call(t, "POST", "/api/songs", `{"artist":"B","youtube_url":"https://youtube.com/watch?v=x"}`, "", &resp)
		require.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.NotEmpty(t, resp.Message)
		assert.NotEmpty(t, resp.Errors["title"])
	})

	t.Run("script url", func(t *testing.T) {
		env := newTestEnv(t)

		var resp songEnvelope
		status := env.call(t, "POST", "/api/songs", `{"title":"A","artist":"B","youtube_url":"javascript:alert(1)"}`, "", &resp)
		require.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.NotEmpty(t, resp.Errors["youtube_url"])

		pending, err := env.songs.Pending(context.Background())
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("wrong type", func(t *testing.T) {
		env := newTestEnv(t)

		var resp songEnvelope
		status := env.call(t, "POST", "/api/songs", `{"title":5,"artist":"B","youtube_url":"https://youtube.com/watch?v=x"}`, "", &resp)
		require.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.NotEmpty(t, resp.Errors["title"])
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)

		assert.Equal(t, fiber.StatusBadRequest, env.call(t, "POST", "/api/songs", `{"title":`, "", nil))
	})

	t.Run("rate limited", func(t *testing.T) {
		l := logger.Discard()
		store := testutil.NewSongStore()
		app := New(config.ServerConfig{}, Deps{
			Catalog:    services.NewCatalog(store, 10, l),
			Moderation: services.NewModeration(store, l),
			Auth:       services.NewAuth(testutil.NewUserStore(), services.NewTokenStore(testutil.NewStorage(), 0), l),
			Limiter:    middleware.NewRateLimiter(1, 1, l),
			Logger:     l,
		})
		env := &testEnv{app: app, songs: store}
		body := `{"title":"A","artist":"B","youtube_url":"https://youtube.com/watch?v=x"}`

		assert.Equal(t, fiber.StatusCreated, env.call(t, "POST", "/api/songs", body, "", nil))
		assert.Equal(t, fiber.StatusTooManyRequests, env.call(t, "POST", "/api/songs", body, "", nil))
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, models.Song{ID: 1})

	routes := []struct{ method, path string }{
		{"GET", "/api/songs/pending"},
		{"GET", "/api/songs/1"},
		{"PUT", "/api/songs/1"},
		{"DELETE", "/api/songs/1"},
		{"POST", "/api/songs/1/approve"},
		{"POST", "/api/songs/1/reject"},
		{"POST", "/api/logout"},
		{"GET", "/api/me"},
	}
	for _, r := range routes {
		assert.Equal(t, fiber.StatusUnauthorized, env.call(t, r.method, r.path, "", "", nil), "%s %s", r.method, r.path)
		assert.Equal(t, fiber.StatusUnauthorized, env.call(t, r.method, r.path, "", "forged", nil), "%s %s", r.method, r.path)
	}

	stored, _ := env.songs.Get(1)
	assert.Zero(t, stored.Views, "rejected requests have no side effects")
}

func TestPendingSongs(t *testing.T) {
	env := newTestEnv(t,
		models.Song{Title: "waiting 1"},
		models.Song{Title: "live", IsApproved: true},
		models.Song{Title: "waiting 2"},
	)

	var songs []models.Song
	status := env.call(t, "GET", "/api/songs/pending", "", env.token(t), &songs)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, songs, 2)
	for _, s := range songs {
		assert.False(t, s.IsApproved)
	}
	assert.Equal(t, "waiting 1", songs[0].Title)
}

func TestApproveAndReject(t *testing.T) {
	env := newTestEnv(t, models.Song{ID: 1, Position: pos(2)})
	token := env.token(t)

	var resp songEnvelope
	require.Equal(t, fiber.StatusOK, env.call(t, "POST", "/api/songs/1/approve", "", token, &resp))
	assert.True(t, resp.Data.IsApproved)
	assert.Equal(t, 2, *resp.Data.Position)

	resp = songEnvelope{}
	require.Equal(t, fiber.StatusOK, env.call(t, "POST", "/api/songs/1/reject", "", token, &resp))
	assert.False(t, resp.Data.IsApproved)
	assert.Equal(t, 2, *resp.Data.Position, "reject does not clear the position")

	assert.Equal(t, fiber.StatusNotFound, env.call(t, "POST", "/api/songs/99/approve", "", token, nil))
	assert.Equal(t, fiber.StatusNotFound, env.call(t, "POST", "/api/songs/abc/approve", "", token, nil))
	assert.Equal(t, fiber.StatusNotFound, env.call(t, "POST", "/api/songs/99/reject", "", token, nil))
}

func TestGetSongCountsViews(t *testing.T) {
	env := newTestEnv(t, models.Song{ID: 1, Views: 3})
	token := env.token(t)

	var song models.Song
	require.Equal(t, fiber.StatusOK, env.call(t, "GET", "/api/songs/1", "", token, &song))
	require.Equal(t, fiber.StatusOK, env.call(t, "GET", "/api/songs/1", "", token, &song))
	assert.Equal(t, int64(5), song.Views)

	assert.Equal(t, fiber.StatusNotFound, env.call(t, "GET", "/api/songs/2", "", token, nil))
}

func TestUpdateSong(t *testing.T) {
	env := newTestEnv(t, models.Song{ID: 1, Title: "T", Artist: "A", YoutubeURL: "https://youtube.com/watch?v=x", Views: 9})
	token := env.token(t)

	var resp songEnvelope
	status := env.call(t, "PUT", "/api/songs/1", `{"position":1,"is_approved":true,"views":0}`, token, &resp)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, resp.Data.InTopFive())
	assert.Equal(t, int64(9), resp.Data.Views)
	assert.Equal(t, "T", resp.Data.Title)

	resp = songEnvelope{}
	status = env.call(t, "PUT", "/api/songs/1", `{"position":9,"title":""}`, token, &resp)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, resp.Errors["position"])
	assert.NotEmpty(t, resp.Errors["title"])

	assert.Equal(t, fiber.StatusNotFound, env.call(t, "PUT", "/api/songs/7", `{"title":"x"}`, token, nil))
}

func TestDeleteSong(t *testing.T) {
	env := newTestEnv(t, models.Song{ID: 1})
	token := env.token(t)

	var resp map[string]string
	require.Equal(t, fiber.StatusOK, env.call(t, "DELETE", "/api/songs/1", "", token, &resp))
	assert.NotEmpty(t, resp["message"])

	assert.Equal(t, fiber.StatusNotFound, env.call(t, "DELETE", "/api/songs/1", "", token, nil))
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	type authResponse struct {
		Message   string      `json:"message"`
		User      models.User `json:"user"`
		Token     string      `json:"token"`
		TokenType string      `json:"token_type"`
	}

	var registered authResponse
	status := env.call(t, "POST", "/api/register",
		`{"name":"Ana","email":"ana@example.com","password":"secret123","password_confirmation":"secret123"}`, "", &registered)
	require.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.Equal(t, "ana@example.com", registered.User.Email)

	var raw map[string]any
	env.call(t, "GET", "/api/me", "", registered.Token, &raw)
	assert.NotContains(t, raw, "password_hash")
	assert.Equal(t, "Ana", raw["name"])

	var loggedIn authResponse
	require.Equal(t, fiber.StatusOK, env.call(t, "POST", "/api/login", `{"email":"ana@example.com","password":"secret123"}`, "", &loggedIn))
	assert.NotEmpty(t, loggedIn.Token)

	assert.Equal(t, fiber.StatusUnauthorized, env.call(t, "POST", "/api/login", `{"email":"ana@example.com","password":"wrong-one"}`, "", nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, env.call(t, "POST", "/api/register", `{"name":"","email":"x"}`, "", nil))

	require.Equal(t, fiber.StatusOK, env.call(t, "POST", "/api/logout", "", loggedIn.Token, nil))
	assert.Equal(t, fiber.StatusUnauthorized, env.call(t, "GET", "/api/me", "", loggedIn.Token, nil))
	assert.Equal(t, fiber.StatusOK, env.call(t, "GET", "/api/me", "", registered.Token, nil), "other tokens stay valid")
}

func TestHealthAndFallbacks(t *testing.T) {
	l := logger.Discard()
	store := testutil.NewSongStore()
	healthy := true
	health := func(ctx context.Context) error {
		if !healthy {
			return errors.New("db down")
		}
		return nil
	}
	app := New(config.ServerConfig{}, Deps{
		Catalog:    services.NewCatalog(store, 10, l),
		Moderation: services.NewModeration(store, l),
		Auth:       services.NewAuth(testutil.NewUserStore(), services.NewTokenStore(testutil.NewStorage(), 0), l),
		Limiter:    middleware.NewRateLimiter(0, 0, l),
		Health:     health,
		Logger:     l,
	})
	env := &testEnv{app: app, songs: store}

	assert.Equal(t, fiber.StatusOK, env.call(t, "GET", "/healthz", "", "", nil))
	healthy = false
	assert.Equal(t, fiber.StatusServiceUnavailable, env.call(t, "GET", "/healthz", "", "", nil))

	var resp map[string]string
	assert.Equal(t, fiber.StatusNotFound, env.call(t, "GET", "/api/nope", "", "", &resp))
	assert.NotEmpty(t, resp["message"])

	store.Err = errors.New("connection refused")
	assert.Equal(t, fiber.StatusInternalServerError, env.call(t, "GET", "/api/songs", "", "", &resp))
	assert.NotContains(t, resp["message"], "connection refused", "internal errors are not leaked")
}

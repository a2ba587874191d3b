// Package server assembles the Fiber application: middleware, routes and error handling.
package server

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"songboard/config"
	"songboard/handlers"
	"songboard/metrics"
	"songboard/middleware"
	"songboard/services"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Catalog    *services.Catalog
	Moderation *services.Moderation
	Auth       *services.Auth
	Limiter    *middleware.RateLimiter
	Health     func(ctx context.Context) error
	Logger     *log.Logger
}

// New builds the application for cfg.
func New(cfg config.ServerConfig, d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "songboard",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(d.Logger),
	})

	app.Use(recover.New())
	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}
	app.Use(middleware.RequestLogger(d.Logger))
	app.Use(metrics.Middleware)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if d.Health != nil {
			if err := d.Health(c.UserContext()); err != nil {
				d.Logger.Error("health check failed", "err", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	h := handlers.New(d.Catalog, d.Moderation, d.Auth, d.Logger)
	authRequired := middleware.AuthRequired(d.Auth, d.Logger)

	api := app.Group("/api")

	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Post("/logout", authRequired, h.Logout)
	api.Get("/me", authRequired, h.Me)

	api.Get("/songs", middleware.ValidatePageQuery, h.ListSongs)
	api.Post("/songs", d.Limiter.Handler, h.SuggestSong)

	// pending must be registered before :id
	api.Get("/songs/pending", authRequired, h.PendingSongs)
	api.Get("/songs/:id", authRequired, h.GetSong)
	api.Put("/songs/:id", authRequired, h.UpdateSong)
	api.Delete("/songs/:id", authRequired, h.DeleteSong)
	api.Post("/songs/:id/approve", authRequired, h.ApproveSong)
	api.Post("/songs/:id/reject", authRequired, h.RejectSong)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir, fiber.Static{Index: "index.html"})
	}

	return app
}

func errorHandler(logger *log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		logger.Error("unhandled error", "method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Something went wrong. Please try again."})
	}
}

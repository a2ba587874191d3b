package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/storage/redis/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"songboard/config"
	"songboard/database"
	"songboard/logger"
	"songboard/middleware"
	"songboard/repository"
	"songboard/server"
	"songboard/services"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Minute
	visitorIdle     = 10 * time.Minute
)

// Runner holds what every command shares.
type Runner struct {
	Logger *log.Logger
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Run migrations and start the HTTP API",
			Action: r.Serve,
		},
		{
			Name:  "migrate",
			Usage: "Manage the database schema",
			Commands: []*cli.Command{
				{Name: "up", Usage: "Apply all pending migrations", Action: r.migration(database.Migrate)},
				{Name: "down", Usage: "Roll back the latest migration", Action: r.migration(database.Rollback)},
				{Name: "status", Usage: "Show applied migrations", Action: r.migration(database.Status)},
			},
		},
		{
			Name:   "seed",
			Usage:  "Insert sample songs into an empty database",
			Action: r.Seed,
		},
		{
			Name:   "init",
			Usage:  "Write a default configuration file",
			Action: r.Init,
		},
	}
}

// load reads the configuration named by the --config flag and applies its log level.
func (r *Runner) load(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		r.Logger.SetLevel(lvl)
	}
	return cfg, nil
}

func (r *Runner) open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return database.Open(ctx, cfg.Database, logger.With(r.Logger, "database"))
}

// Serve runs the API until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.load(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := r.open(ctx, cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx, db, logger.With(r.Logger, "migrate")); err != nil {
		return multierr.Append(err, db.Close())
	}

	storage := redis.New(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		Database: cfg.Redis.Database,
	})

	songs := repository.NewSongRepository(db)
	users := repository.NewUserRepository(db)
	limiter := middleware.NewRateLimiter(cfg.Songs.SuggestionsPerMinute, cfg.Songs.SuggestionBurst, logger.With(r.Logger, "ratelimit"))

	tokens := services.NewTokenStore(storage, cfg.Auth.TokenTTL())

	app := server.New(cfg.Server, server.Deps{
		Catalog:    services.NewCatalog(songs, cfg.Songs.PerPage, logger.With(r.Logger, "catalog")),
		Moderation: services.NewModeration(songs, logger.With(r.Logger, "moderation")),
		Auth:       services.NewAuth(users, tokens, logger.With(r.Logger, "auth")),
		Limiter:    limiter,
		Health:     db.PingContext,
		Logger:     logger.With(r.Logger, "http"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.Logger.Info("listening", "addr", cfg.Server.Addr())
		return app.Listen(cfg.Server.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		r.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := limiter.Prune(visitorIdle); n > 0 {
					r.Logger.Debug("pruned idle rate limit entries", "count", n)
				}
			}
		}
	})

	err = g.Wait()
	return multierr.Combine(err, db.Close(), storage.Close())
}

func (r *Runner) migration(run func(context.Context, *sql.DB, *log.Logger) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := r.load(cmd)
		if err != nil {
			return err
		}

		db, err := r.open(ctx, cfg)
		if err != nil {
			return err
		}
		return multierr.Append(run(ctx, db, logger.With(r.Logger, "migrate")), db.Close())
	}
}

// Seed migrates the schema and inserts the sample songs.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) (err error) {
	cfg, err := r.load(cmd)
	if err != nil {
		return err
	}

	db, err := r.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	if err := database.Migrate(ctx, db, logger.With(r.Logger, "migrate")); err != nil {
		return err
	}

	n, err := database.Seed(ctx, db)
	if err != nil {
		return err
	}
	if n == 0 {
		r.Logger.Info("songs table is not empty, nothing seeded")
		return nil
	}
	r.Logger.Info("seeded songs", "count", n)
	return nil
}

// Init writes the default configuration to the --config path.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := config.CreateConfigFile(path); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", path)
	return nil
}

// Package database opens the PostgreSQL pool and manages its schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/sethvargo/go-retry"

	"songboard/config"
)

// Open connects to PostgreSQL through the pgx driver and waits until the server answers a ping.
// The database container usually starts after the API, so failed pings are retried with backoff.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *log.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	backoff := retry.WithMaxRetries(cfg.ConnectRetries, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("database not reachable yet", "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// gooseLogger routes goose output through the application logger.
type gooseLogger struct {
	l *log.Logger
}

func (g gooseLogger) Fatalf(format string, v ...any) { g.l.Fatalf(format, v...) }
func (g gooseLogger) Printf(format string, v ...any) { g.l.Infof(format, v...) }

func setup(logger *log.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{l: logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	if err := setup(logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	if err := setup(logger); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Status logs the applied state of each migration.
func Status(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	if err := setup(logger); err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	return nil
}

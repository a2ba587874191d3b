package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"songboard/logger"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	log := logger.New(os.Stderr, os.Getenv("SONGBOARD_LOG_LEVEL"))

	runner := &Runner{Logger: log}

	app := &cli.Command{
		Name:  "songboard",
		Usage: "Song suggestion board API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SONGBOARD_CONFIG"),
			},
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

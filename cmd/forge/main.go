package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"suno-forge/internal/actions"
	"suno-forge/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	app := actions.NewApp(actions.Options{
		Out:            os.Stdout,
		Logger:         logger,
		BatchWorkers:   cfg.BatchWorkers,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"

	"expense-report/internal/cli"
	"expense-report/internal/config"
	"expense-report/internal/storage"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if n, err := db.UserCount(ctx); err == nil && n == 0 {
		logger.Warn("no user accounts exist, create the first Admin with the adduser tool")
	}

	repl := cli.New(db, os.Stdin, os.Stdout)
	if err := repl.Run(ctx); err != nil {
		logger.Error("command loop failed", "error", err)
		os.Exit(1)
	}
}

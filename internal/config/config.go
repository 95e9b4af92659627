package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the process configuration. The only tunables are the storage
// file path and the diagnostic log level.
type Config struct {
	DBPath   string
	LogLevel slog.Level
}

// Load reads configuration from the environment, loading a .env file first
// when one is present. Missing values fall back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath:   getEnv("DB_PATH", "expense_report.db"),
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "warn")),
	}
}

// Validate checks the configuration and creates the database directory if it
// does not exist yet.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(c.DBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("cannot create database directory %q: %w", dir, err)
			}
		}
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

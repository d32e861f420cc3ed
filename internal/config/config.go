package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/op-fixtures/internal/db"
	"github.com/joho/godotenv"
)

const defaultSQLiteDSN = "op_fixtures.db?_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000&_foreign_keys=on"

type Config struct {
	DBDriver      string
	DatabaseURL   string
	ServerPort    int
	LogLevel      slog.Level
	RunMigrations bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:      getenv("DB_DRIVER", db.DriverSQLite),
		ServerPort:    8080,
		LogLevel:      slog.LevelInfo,
		RunMigrations: true,
	}

	switch cfg.DBDriver {
	case db.DriverSQLite:
		cfg.DatabaseURL = getenv("DATABASE_URL", defaultSQLiteDSN)
	case db.DriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		if port <= 0 || port > 65535 {
			return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
		}
		cfg.ServerPort = port
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	if migrations := os.Getenv("RUN_MIGRATIONS"); migrations != "" {
		run, err := strconv.ParseBool(migrations)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_MIGRATIONS environment variable: %w", err)
		}
		cfg.RunMigrations = run
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

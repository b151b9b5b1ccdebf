// Package config loads the CLI's settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	// BackendURL points at the backend. Empty means the local default.
	BackendURL string `env:"BACKEND_URL"`

	// SessionDBPath is where the bearer token is persisted. Empty means
	// the standard per-user location.
	SessionDBPath string `env:"SESSION_DB_PATH"`

	LogLevel  string `env:"LOG_LEVEL" default:"warn"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if cfg.SessionDBPath == "" {
		path, err := defaultSessionDBPath()
		if err != nil {
			return nil, err
		}
		cfg.SessionDBPath = path
	}

	return &cfg, nil
}

// defaultSessionDBPath places the session database under the user's
// configuration directory.
func defaultSessionDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "sessiongate", "session.db"), nil
}

// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is not set.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Scanner ScannerConfig

	// DBPath is the SQLite database file location.
	DBPath string

	// PollInterval drives the snapshot feed's store polling.
	PollInterval time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

type ServerConfig struct {
	Port        int
	ReadTimeout time.Duration

	// IdleTimeout bounds keep-alive connections. There is deliberately
	// no write timeout: the snapshot event stream stays open for as
	// long as the client listens.
	IdleTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
}

type ScannerConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	secret := getEnvString("JWT_SECRET", "")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnvInt("PORT", 8080),
			ReadTimeout: time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			IdleTimeout: time.Duration(getEnvInt("SERVER_IDLE_TIMEOUT", 120)) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:     secret,
			TokenDuration: time.Duration(getEnvInt("TOKEN_DURATION_HOURS", 24)) * time.Hour,
		},
		Scanner: ScannerConfig{
			BaseURL: getEnvString("SCANNER_URL", "http://localhost:8000"),
			Timeout: time.Duration(getEnvInt("SCANNER_TIMEOUT", 30)) * time.Second,
		},
		DBPath:       getEnvString("DB_PATH", "data/divvit.db"),
		PollInterval: time.Duration(getEnvInt("POLL_INTERVAL_MS", 1000)) * time.Millisecond,
		LogLevel:     getEnvString("LOG_LEVEL", "info"),
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

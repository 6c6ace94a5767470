// Package config loads runtime configuration from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the app.
type Config struct {
	// DBPath is the SQLite database file backing the durable storage.
	DBPath string
	// LogPath optionally mirrors logs to a file.
	LogPath string
	// NotifyCooldown is the minimum interval between low-stock notifications.
	NotifyCooldown time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath:         getEnv("ESTOQUE_DB", "estoque.sqlite3"),
		LogPath:        getEnv("ESTOQUE_LOG", ""),
		NotifyCooldown: getEnvDuration("ESTOQUE_NOTIFY_COOLDOWN", 12*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// Package config loads divtree settings from the environment (and an
// optional .env file). Command-line flags override what is loaded here.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the tool.
type Config struct {
	// DB is a SQLite path, a postgres:// DSN, or a JSON-lines file loaded
	// into memory.
	DB     string
	Table  string
	Locale string
	// Format selects the ingestion field preset (flat|geojson).
	Format string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads .env (if present) and the DIVTREE_* environment.
func Load() *Config {
	// A missing .env is normal.
	_ = godotenv.Load()

	return &Config{
		DB:            getEnv("DIVTREE_DB", "divisions.db"),
		Table:         getEnv("DIVTREE_TABLE", "divisions"),
		Locale:        getEnv("DIVTREE_LOCALE", "en"),
		Format:        getEnv("DIVTREE_FORMAT", "flat"),
		RedisAddr:     getEnv("DIVTREE_REDIS_ADDR", ""),
		RedisPassword: getEnv("DIVTREE_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("DIVTREE_REDIS_DB", 0),
		CacheTTL:      getEnvDuration("DIVTREE_CACHE_TTL", 10*time.Minute),
		LogLevel:      getEnv("DIVTREE_LOG_LEVEL", "info"),
		LogFormat:     getEnv("DIVTREE_LOG_FORMAT", "text"),
		LogFile:       getEnv("DIVTREE_LOG_FILE", filepath.Join(os.TempDir(), "divtree.log")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Storage StorageConfig
	Sync    SyncConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// RedisConfig holds Redis connection settings for the shared storage
// backend and its notification channel.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig selects and parameterizes the snapshot backend.
type StorageConfig struct {
	// Backend is "redis" (shared across contexts) or "file" (local
	// fallback; no cross-process push, polling still reconciles).
	Backend string
	// Dir is where the file backend keeps its snapshot files and
	// where the device identifier is persisted.
	Dir string
	// SeedDemoData installs the demo dataset on first-ever load.
	SeedDemoData bool
}

// SyncConfig drives the periodic reconciliation loop.
type SyncConfig struct {
	// PollInterval is how often a context re-reads the persisted
	// snapshot to catch writes it missed on the push channel.
	PollInterval time.Duration
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	pollSec, _ := strconv.Atoi(getEnv("SYNC_POLL_INTERVAL_SEC", "5"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", "redis"),
			Dir:          getEnv("STORAGE_DIR", ".runconnect"),
			SeedDemoData: getEnvBool("SEED_DEMO_DATA", true),
		},
		Sync: SyncConfig{
			PollInterval: time.Duration(pollSec) * time.Second,
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

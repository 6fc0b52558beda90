package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// Record store
	Storage     string
	SQLitePath  string
	MemoryQuota int
	RedisURL    string
	RedisPrefix string

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Mock backend
	DelayMs      int
	DemoPassword string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. Values from a .env
// file in the working directory are applied first; real environment
// variables take precedence.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return Config{
		Storage:     getEnv("ESTATEHUB_STORAGE", "sqlite"),
		SQLitePath:  getEnv("ESTATEHUB_SQLITE_PATH", "./data/estatehub.db"),
		MemoryQuota: getEnvInt("ESTATEHUB_MEMORY_QUOTA", 5*1024*1024),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix: getEnv("ESTATEHUB_REDIS_PREFIX", "estatehub:"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "estatehub"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "marketplace"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		DelayMs:      getEnvInt("ESTATEHUB_DELAY_MS", -1),
		DemoPassword: getEnv("ESTATEHUB_DEMO_PASSWORD", "password"),

		LogFile:  getEnv("ESTATEHUB_LOG_FILE", "/tmp/estatehub.log"),
		LogLevel: parseLogLevel(getEnv("ESTATEHUB_LOG_LEVEL", "WARN")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("ignoring non-numeric setting", "key", key, "value", val)
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

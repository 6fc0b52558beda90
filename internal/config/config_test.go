package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"ESTATEHUB_STORAGE", "ESTATEHUB_DELAY_MS", "ESTATEHUB_DEMO_PASSWORD",
		"ESTATEHUB_MEMORY_QUOTA", "ESTATEHUB_LOG_LEVEL", "SURREALDB_NAMESPACE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, -1, cfg.DelayMs)
	assert.Equal(t, "password", cfg.DemoPassword)
	assert.Equal(t, 5*1024*1024, cfg.MemoryQuota)
	assert.Equal(t, "estatehub", cfg.SurrealDBNamespace)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ESTATEHUB_STORAGE", "memory")
	t.Setenv("ESTATEHUB_DELAY_MS", "0")
	t.Setenv("ESTATEHUB_MEMORY_QUOTA", "not-a-number")
	t.Setenv("ESTATEHUB_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 0, cfg.DelayMs)
	assert.Equal(t, 5*1024*1024, cfg.MemoryQuota, "invalid numbers fall back to the default")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ESTATEHUB_DEMO_PASSWORD=letmein\nESTATEHUB_REDIS_PREFIX=test:\n"), 0o600))
	// Registered with t.Setenv so the values loaded from .env are restored.
	t.Setenv("ESTATEHUB_DEMO_PASSWORD", "")
	t.Setenv("ESTATEHUB_REDIS_PREFIX", "")
	os.Unsetenv("ESTATEHUB_DEMO_PASSWORD")
	os.Unsetenv("ESTATEHUB_REDIS_PREFIX")

	cfg := Load()
	assert.Equal(t, "letmein", cfg.DemoPassword)
	assert.Equal(t, "test:", cfg.RedisPrefix)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("property published", "property_id", "prop1")

	assert.NotContains(t, stderr.String(), "hidden")
	assert.Contains(t, stderr.String(), "property_id=prop1")
	assert.Contains(t, file.String(), `"property_id":"prop1"`)
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "estatehub.log")

	logger, cleanup := SetupLogger(path, slog.LevelError)
	logger.Debug("operation completed", "op", "list_properties")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"op":"list_properties"`)
}

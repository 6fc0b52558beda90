package db

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend names accepted by Open.
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendSurrealDB = "surrealdb"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	MemoryQuota int
	SQLitePath  string
	RedisURL    string
	RedisPrefix string
	Surreal     Config
}

// Open creates the configured backend and wraps it in a Store.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		backend Backend
		err     error
	)
	switch opts.Backend {
	case BackendMemory:
		backend = NewMemoryBackend(opts.MemoryQuota)
	case BackendSQLite, "":
		backend, err = NewSQLiteBackend(ctx, opts.SQLitePath)
	case BackendRedis:
		backend, err = NewRedisBackend(ctx, opts.RedisURL, opts.RedisPrefix)
	case BackendSurrealDB:
		var client *Client
		client, err = NewClient(ctx, opts.Surreal, logger)
		if err == nil {
			if err = client.InitSchema(ctx); err != nil {
				_ = client.Close(ctx)
			}
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", opts.Backend, err)
	}

	logger.Debug("record store opened", "backend", opts.Backend)
	return NewStore(backend, logger), nil
}

// Package db provides the persistent record store: a durable key to JSON
// mapping over a pluggable backend.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Persisted record keys.
const (
	KeySession         = "user"
	KeyRegisteredUsers = "registeredUsers"
	KeyProperties      = "properties"
	KeyMessages        = "messages"
	KeyReadMarks       = "readMarks"
)

// AllKeys lists every key the application writes.
var AllKeys = []string{KeySession, KeyRegisteredUsers, KeyProperties, KeyMessages, KeyReadMarks}

// Backend stores raw serialised values by key.
// Read returns found=false for an unset key.
type Backend interface {
	Read(ctx context.Context, key string) (value string, found bool, err error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// Store serialises values as JSON on top of a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// NewStore wraps a backend. A nil logger falls back to slog.Default().
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// Put serialises value and stores it under key, overwriting any previous value.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &StorageError{Op: "put", Key: key, Err: fmt.Errorf("marshal: %w", err)}
	}
	if err := s.backend.Write(ctx, key, string(data)); err != nil {
		s.logger.Error("record write failed", "key", key, "bytes", len(data), "error", err)
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	s.logger.Debug("record written", "key", key, "bytes", len(data))
	return nil
}

// Get decodes the value stored under key into dest.
// An unset key is reported as found=false with a nil error.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, found, err := s.backend.Read(ctx, key)
	if err != nil {
		return false, &StorageError{Op: "get", Key: key, Err: err}
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, &StorageError{Op: "get", Key: key, Err: fmt.Errorf("unmarshal: %w", err)}
	}
	return true, nil
}

// Remove deletes key. Removing an unset key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// Reset removes every application key.
func (s *Store) Reset(ctx context.Context) error {
	s.logger.Warn("wiping all persisted records")
	for _, key := range AllKeys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}

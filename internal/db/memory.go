package db

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend keeps records in a map. QuotaBytes > 0 caps the total size of
// stored keys and values, mirroring browser storage limits.
type MemoryBackend struct {
	mu         sync.RWMutex
	records    map[string]string
	size       int
	QuotaBytes int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(quotaBytes int) *MemoryBackend {
	return &MemoryBackend{
		records:    make(map[string]string),
		QuotaBytes: quotaBytes,
	}
}

func (m *MemoryBackend) Read(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[key]
	return v, ok, nil
}

func (m *MemoryBackend) Write(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	newSize := m.size + len(key) + len(value)
	if old, ok := m.records[key]; ok {
		newSize -= len(key) + len(old)
	}
	if m.QuotaBytes > 0 && newSize > m.QuotaBytes {
		return fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, newSize, m.QuotaBytes)
	}

	m.records[key] = value
	m.size = newSize
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.records[key]; ok {
		m.size -= len(key) + len(old)
		delete(m.records, key)
	}
	return nil
}

func (m *MemoryBackend) Close(context.Context) error {
	return nil
}

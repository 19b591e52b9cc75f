package cart

import (
	"context"
	"sync"
)

// Storage persists cart records under opaque string keys. Implementations
// return nil lines (not an error) for keys that are absent or hold malformed
// data; errors are reserved for the backing store itself failing.
type Storage interface {
	Save(ctx context.Context, key string, lines []Line) error
	Load(ctx context.Context, key string) ([]Line, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStorage is an in-process Storage, used in tests and as the fallback
// when no durable store is wired.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStorage returns an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string][]byte)}
}

func (m *MemoryStorage) Save(_ context.Context, key string, lines []Line) error {
	data, err := EncodeLines(lines)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = data
	return nil
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return DecodeLines(m.records[key]), nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

// SetRaw stores raw bytes under a key, bypassing encoding. Tests use it to
// simulate corrupt records.
func (m *MemoryStorage) SetRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = data
}

// Has reports whether a record exists under the key.
func (m *MemoryStorage) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[key]
	return ok
}

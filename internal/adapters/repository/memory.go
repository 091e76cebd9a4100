package repository

import (
	"context"
	"sync"
)

// MemoryBlob keeps values in process memory.
type MemoryBlob struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// NewMemoryBlob returns an empty MemoryBlob.
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{values: make(map[string][]byte)}
}

func (m *MemoryBlob) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBlob) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

func (m *MemoryBlob) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; ok {
		delete(m.values, key)
		m.writes++
	}
	return nil
}

func (m *MemoryBlob) Name() string { return "memory" }

// Writes counts successful mutations (puts and effective deletes).
func (m *MemoryBlob) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

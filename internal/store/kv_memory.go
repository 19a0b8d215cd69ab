package store

import (
	"context"
	"sync"
)

// MemoryKV keeps values in process memory. Nothing survives Close.
type MemoryKV struct {
	mu   sync.Mutex
	vals map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{vals: map[string][]byte{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.vals[key] = v
	return nil
}

func (m *MemoryKV) Close() error { return nil }

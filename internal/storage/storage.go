// Package storage is the durable key→JSON mirror for cart and coupon
// snapshots. Writes are last-writer-wins; there is no expiry.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrNotFound indicates the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store reads and writes JSON snapshots under fixed keys.
type Store interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

// Memory is an in-process Store used in tests and as a fallback when no
// Redis address is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, out any) error {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *Memory) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.data, key)
	}
	m.mu.Unlock()
	return nil
}

// Has reports whether a key currently holds a value. Test helper.
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

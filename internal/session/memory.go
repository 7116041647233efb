// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package session

import (
	"context"
	"maps"
	"sync"
)

// MemoryKV is an in-process KV. Its contents die with the process.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Load returns the values present for keys.
func (m *MemoryKV) Load(_ context.Context, keys []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Store writes values under a single lock.
func (m *MemoryKV) Store(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.values, values)
	return nil
}

// Delete removes keys under a single lock.
func (m *MemoryKV) Delete(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Close is a no-op.
func (m *MemoryKV) Close() error {
	return nil
}

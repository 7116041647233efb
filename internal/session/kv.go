// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package session

import "context"

// Persisted keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// sessionKeys lists every key the store owns.
var sessionKeys = []string{KeyToken, KeyUser}

// KV is a durable string key/value backend. Multi-key operations must be
// atomic: all keys are written (or deleted) or none are.
type KV interface {
	// Load returns the values present for keys. Missing keys are absent from the map.
	Load(ctx context.Context, keys []string) (map[string]string, error)

	// Store writes every entry in values atomically.
	Store(ctx context.Context, values map[string]string) error

	// Delete removes keys atomically. Deleting missing keys is not an error.
	Delete(ctx context.Context, keys []string) error

	// Close releases backend resources.
	Close() error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package session persists the authenticated session across client runs.
//
// Store is the only writer of the persisted session. It keeps the current
// auth.Session in memory and mirrors it to a KV backend under two keys:
// "token" (the raw session token) and "user" (the profile as JSON). Both keys
// are written in one atomic operation and deleted in one atomic operation,
// so no reader ever observes a token without its profile.
//
// Backends:
//   - SQLiteKV - default, file under the XDG state directory
//   - RedisKV - shared store for containers and shared terminals
//   - MemoryKV - tests and ephemeral runs
package session

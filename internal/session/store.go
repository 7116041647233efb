// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/quillpress/quill/internal/auth"
)

// StoreOption configures a Store during construction.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store owns the authenticated session. Reads are served from memory;
// writes reach the backend before the in-memory value is swapped.
type Store struct {
	kv     KV
	logger *slog.Logger

	writeMu sync.Mutex // serializes backend writes

	mu      sync.RWMutex
	current auth.Session
}

// Open loads the persisted session from kv. An incomplete or malformed pair
// loads as the absent session and is removed from the backend.
func Open(ctx context.Context, kv KV, opts ...StoreOption) (*Store, error) {
	if kv == nil {
		return nil, oops.Errorf("kv backend is required")
	}
	s := &Store{
		kv:     kv,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.current = current
	return s, nil
}

func (s *Store) load(ctx context.Context) (auth.Session, error) {
	values, err := s.kv.Load(ctx, sessionKeys)
	if err != nil {
		return auth.Session{}, oops.Code("SESSION_LOAD_FAILED").Wrap(err)
	}
	if len(values) == 0 {
		return auth.Session{}, nil
	}

	current, decodeErr := decodeSession(values)
	if decodeErr == nil {
		return current, nil
	}

	s.logger.Warn("discarding persisted session",
		"event", "session_discarded",
		"reason", decodeErr.Error(),
	)
	if err := s.kv.Delete(ctx, sessionKeys); err != nil {
		return auth.Session{}, oops.Code("SESSION_LOAD_FAILED").With("operation", "discard malformed session").Wrap(err)
	}
	return auth.Session{}, nil
}

func decodeSession(values map[string]string) (auth.Session, error) {
	token, hasToken := values[KeyToken]
	user, hasUser := values[KeyUser]
	if !hasToken || !hasUser {
		return auth.Session{}, auth.InvariantViolation("persisted session is incomplete")
	}
	if token == "" || token == "null" {
		return auth.Session{}, auth.InvariantViolation("persisted session token is empty")
	}
	profile, err := decodeProfile(user)
	if err != nil {
		return auth.Session{}, oops.Code(auth.CodeInvariantViolation).Wrap(err)
	}
	return auth.NewSession(auth.SessionToken(token), profile)
}

// Get returns the current session; the zero Session when anonymous.
func (s *Store) Get() auth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set persists token and profile together.
// Returns SESSION_INVARIANT_VIOLATION without writing if either is missing.
func (s *Store) Set(ctx context.Context, token auth.SessionToken, profile auth.UserProfile) error {
	next, err := auth.NewSession(token, profile)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(profile)
	if err != nil {
		return oops.Code("SESSION_PERSIST_FAILED").With("operation", "encode profile").Wrap(err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.kv.Store(ctx, map[string]string{
		KeyToken: string(token),
		KeyUser:  string(doc),
	}); err != nil {
		return oops.Code("SESSION_PERSIST_FAILED").With("user_id", profile.ID).Wrap(err)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.logger.Debug("session persisted", "event", "session_set", "user_id", profile.ID)
	return nil
}

// Clear removes the persisted session.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.kv.Delete(ctx, sessionKeys); err != nil {
		return oops.Code("SESSION_CLEAR_FAILED").Wrap(err)
	}

	s.mu.Lock()
	s.current = auth.Session{}
	s.mu.Unlock()

	s.logger.Debug("session cleared", "event", "session_cleared")
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package orchestrator_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/quillpress/quill/internal/auth"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Login(ctx context.Context, creds auth.Credentials) (auth.SessionToken, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(auth.SessionToken), args.Error(1)
}

func (m *mockGateway) Signup(ctx context.Context, input auth.SignupInput) (auth.SessionToken, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(auth.SessionToken), args.Error(1)
}

func (m *mockGateway) Authenticate(ctx context.Context, token auth.SessionToken) (auth.UserProfile, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.UserProfile), args.Error(1)
}

func (m *mockGateway) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockGateway) EmailAvailable(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// recorder captures navigations and notifications.
type recorder struct {
	mu      sync.Mutex
	routes  []string
	notices []string
}

func (r *recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *recorder) Notify(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, message)
}

func (r *recorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

func (r *recorder) Notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

// failingStore wraps a store and fails every write.
type failingStore struct {
	auth.Session
	err error
}

func (f *failingStore) Get() auth.Session {
	return f.Session
}

func (f *failingStore) Set(context.Context, auth.SessionToken, auth.UserProfile) error {
	return f.err
}

func (f *failingStore) Clear(context.Context) error {
	return f.err
}

var hitesh = auth.UserProfile{ID: "1", Email: "hitesh@example.com", Username: "hitesh5678"}

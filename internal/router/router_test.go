// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package router_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/router"
)

func record(seen *[]string) router.Handler {
	return func(_ context.Context, route string) error {
		*seen = append(*seen, route)
		return nil
	}
}

func TestRouter_On_InvalidPatterns(t *testing.T) {
	r := router.New()
	noop := func(context.Context, string) error { return nil }

	errs := []error{
		r.On("", noop),
		r.On("/login", nil),
		r.On("/[unclosed", noop),
	}
	for _, err := range errs {
		require.Error(t, err)
		assert.Equal(t, "ROUTE_INVALID", auth.CodeOf(err))
	}
}

func TestRouter_Match(t *testing.T) {
	r := router.New()
	var seen []string
	require.NoError(t, r.On(router.RouteHome, record(&seen)))
	require.NoError(t, r.On("/user/*", record(&seen)))
	require.NoError(t, r.On("/admin/**", record(&seen)))

	tests := []struct {
		route string
		want  bool
	}{
		{"/", true},
		{"/user/42", true},
		{"/user/42/posts", false},
		{"/admin/a/b/c", true},
		{"/login", false},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			_, ok := r.Match(tt.route)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRouter_NavigateIsDeferredUntilResolve(t *testing.T) {
	r := router.New()
	var seen []string
	require.NoError(t, r.On(router.RouteLogin, record(&seen)))

	r.Navigate(router.RouteLogin)
	assert.Empty(t, seen)
	route, ok := r.Pending()
	assert.True(t, ok)
	assert.Equal(t, router.RouteLogin, route)

	ran, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{router.RouteLogin}, seen)
	assert.Equal(t, router.RouteLogin, r.Current())

	ran, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestRouter_Run_FollowsNavigationChain(t *testing.T) {
	r := router.New()
	var seen []string

	require.NoError(t, r.On(router.RouteSignup, func(_ context.Context, route string) error {
		seen = append(seen, route)
		r.Navigate(router.RouteLogin)
		return nil
	}))
	require.NoError(t, r.On(router.RouteLogin, func(_ context.Context, route string) error {
		seen = append(seen, route)
		r.Navigate(router.RouteHome)
		return nil
	}))
	require.NoError(t, r.On(router.RouteHome, record(&seen)))

	r.Navigate(router.RouteSignup)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"/signup", "/login", "/"}, seen)
	assert.Equal(t, router.RouteHome, r.Current())
}

func TestRouter_NotFound(t *testing.T) {
	t.Run("fallback handler", func(t *testing.T) {
		r := router.New()
		var seen []string
		r.NotFound(record(&seen))

		r.Navigate("/nowhere")
		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, []string{"/nowhere"}, seen)
	})

	t.Run("no fallback", func(t *testing.T) {
		r := router.New()
		r.Navigate("/nowhere")
		err := r.Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, "ROUTE_NOT_FOUND", auth.CodeOf(err))
	})
}

func TestRouter_Run_HandlerError(t *testing.T) {
	r := router.New()
	boom := errors.New("boom")
	require.NoError(t, r.On(router.RouteHome, func(context.Context, string) error { return boom }))

	r.Navigate(router.RouteHome)
	err := r.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRouter_Run_CanceledContext(t *testing.T) {
	r := router.New()
	var seen []string
	require.NoError(t, r.On(router.RouteHome, record(&seen)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Navigate(router.RouteHome)
	require.Error(t, r.Run(ctx))
	assert.Empty(t, seen)
}

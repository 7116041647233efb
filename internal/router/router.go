// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package router maps view routes to handlers.
//
// Patterns use gobwas/glob with '/' as the segment separator:
//   - "/login" matches only "/login"
//   - "/user/*" matches "/user/42" but NOT "/user/42/posts"
//   - "/user/**" matches both
//
// Navigation is one-way: Navigate records the target and Run dispatches it
// after the current handler returns, so handlers never nest.
package router

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Well-known routes.
const (
	RouteHome   = "/"
	RouteLogin  = "/login"
	RouteSignup = "/signup"
)

// Handler renders the view for route.
type Handler func(ctx context.Context, route string) error

type compiledRoute struct {
	pattern string
	glob    glob.Glob
	handler Handler
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// Router dispatches navigations to the first registered matching handler.
// Router is safe for concurrent use.
type Router struct {
	logger *slog.Logger

	mu       sync.Mutex
	routes   []compiledRoute
	notFound Handler
	current  string
	pending  string
	queued   bool
}

// New creates an empty Router.
func New(opts ...Option) *Router {
	r := &Router{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// On registers handler for routes matching pattern. Routes are tried in
// registration order.
func (r *Router) On(pattern string, handler Handler) error {
	if pattern == "" {
		return oops.Code("ROUTE_INVALID").Errorf("empty route pattern")
	}
	if handler == nil {
		return oops.Code("ROUTE_INVALID").With("pattern", pattern).Errorf("nil handler for %q", pattern)
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return oops.Code("ROUTE_INVALID").With("pattern", pattern).Wrap(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, compiledRoute{pattern: pattern, glob: g, handler: handler})
	return nil
}

// NotFound sets the handler for routes no pattern matches.
func (r *Router) NotFound(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = handler
}

// Navigate requests a transition to route. The latest request wins if
// several are made before the next dispatch.
func (r *Router) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = route
	r.queued = true
}

// Current returns the route most recently dispatched.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Pending returns the route waiting to be dispatched, if any.
func (r *Router) Pending() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending, r.queued
}

// Match returns the handler that would serve route.
func (r *Router) Match(route string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matchLocked(route)
}

func (r *Router) matchLocked(route string) (Handler, bool) {
	for _, rt := range r.routes {
		if rt.glob.Match(route) {
			return rt.handler, true
		}
	}
	return nil, false
}

// Resolve dispatches the pending navigation, if any, and reports whether a
// handler ran.
func (r *Router) Resolve(ctx context.Context) (bool, error) {
	r.mu.Lock()
	if !r.queued {
		r.mu.Unlock()
		return false, nil
	}
	route := r.pending
	r.pending, r.queued = "", false
	r.current = route
	handler, ok := r.matchLocked(route)
	if !ok {
		handler = r.notFound
	}
	r.mu.Unlock()

	if handler == nil {
		r.logger.WarnContext(ctx, "no handler for route", "event", "route_not_found", "route", route)
		return false, oops.Code("ROUTE_NOT_FOUND").With("route", route).Errorf("no view for %q", route)
	}

	r.logger.DebugContext(ctx, "dispatching route", "event", "route_dispatch", "route", route)
	if err := handler(ctx, route); err != nil {
		return true, oops.With("route", route).Wrap(err)
	}
	return true, nil
}

// Run dispatches navigations until a handler returns without navigating,
// a handler fails or ctx is done.
func (r *Router) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return oops.Wrap(err)
		}
		ran, err := r.Resolve(ctx)
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}
	}
}

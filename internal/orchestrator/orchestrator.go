// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package orchestrator sequences the login and signup chains: credential
// exchange, session hydration, persistence and navigation.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/observability"
	"github.com/quillpress/quill/internal/router"
	"github.com/quillpress/quill/pkg/errutil"
)

var tracer = otel.Tracer("quill/orchestrator")

// Error codes for rejected transitions.
const (
	CodeInProgress           = "AUTH_IN_PROGRESS"
	CodeAlreadyAuthenticated = "AUTH_ALREADY_AUTHENTICATED"
	CodeNotAuthenticated     = "AUTH_NOT_AUTHENTICATED"
	CodeEmptyToken           = "AUTH_EMPTY_TOKEN"
)

const (
	flowLogin  = "login"
	flowSignup = "signup"
)

// SessionStore is the persisted session the orchestrator mutates.
// *session.Store satisfies it.
type SessionStore interface {
	Get() auth.Session
	Set(ctx context.Context, token auth.SessionToken, profile auth.UserProfile) error
	Clear(ctx context.Context) error
}

// Navigator triggers a view transition. *router.Router satisfies it.
type Navigator interface {
	Navigate(route string)
}

// Notifier shows a blocking alert to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics records chain outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// Orchestrator owns the authentication state machine. All methods are safe
// for concurrent use; at most one chain runs at a time.
type Orchestrator struct {
	gateway  auth.Gateway
	store    SessionStore
	nav      Navigator
	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu    sync.Mutex
	state State
}

// New creates an Orchestrator whose initial state follows the persisted session.
func New(gateway auth.Gateway, store SessionStore, nav Navigator, notifier Notifier, opts ...Option) (*Orchestrator, error) {
	if gateway == nil {
		return nil, oops.Errorf("gateway is required")
	}
	if store == nil {
		return nil, oops.Errorf("session store is required")
	}
	if nav == nil {
		return nil, oops.Errorf("navigator is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}

	o := &Orchestrator{
		gateway:  gateway,
		store:    store,
		nav:      nav,
		notifier: notifier,
		logger:   slog.New(slog.DiscardHandler),
		state:    StateAnonymous,
	}
	for _, opt := range opts {
		opt(o)
	}
	if store.Get().Present() {
		o.state = StateAuthenticated
	}
	return o, nil
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns the persisted session, which is absent unless the state is
// Authenticated.
func (o *Orchestrator) Current() auth.Session {
	return o.store.Get()
}

// SubmitLogin runs the login chain.
func (o *Orchestrator) SubmitLogin(ctx context.Context, creds auth.Credentials) error {
	return o.run(ctx, flowLogin, func(ctx context.Context) (auth.SessionToken, error) {
		return o.gateway.Login(ctx, creds)
	})
}

// SubmitSignup runs the signup chain. The account is created by the first
// call, so it is never retried.
func (o *Orchestrator) SubmitSignup(ctx context.Context, input auth.SignupInput) error {
	return o.run(ctx, flowSignup, func(ctx context.Context) (auth.SessionToken, error) {
		return o.gateway.Signup(ctx, input)
	})
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateAuthenticating:
		return oops.Code(CodeInProgress).Errorf("authentication already in progress")
	case StateAuthenticated:
		return oops.Code(CodeAlreadyAuthenticated).Errorf("already logged in")
	}
	o.state = StateAuthenticating
	return nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

func (o *Orchestrator) run(ctx context.Context, flow string, exchange func(context.Context) (auth.SessionToken, error)) (err error) {
	if err := o.begin(); err != nil {
		return err
	}

	attempt := ulid.Make().String()
	ctx, span := tracer.Start(ctx, "orchestrator."+flow,
		trace.WithAttributes(
			attribute.String("auth.flow", flow),
			attribute.String("auth.attempt_id", attempt),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger := o.logger.With("flow", flow, "attempt_id", attempt)

	token, err := exchange(ctx)
	if err == nil && token == "" {
		err = oops.Code(CodeEmptyToken).Errorf("identity service returned an empty session token")
	}
	if err != nil {
		return o.fail(ctx, logger, flow, "exchange", err)
	}

	profile, err := o.gateway.Authenticate(ctx, token)
	if err != nil {
		return o.fail(ctx, logger, flow, "authenticate", err)
	}

	if err = o.store.Set(ctx, token, profile); err != nil {
		errutil.LogError(logger, "failed to persist session", err, "event", "session_persist_failed")
		return o.fail(ctx, logger, flow, "persist", err)
	}

	o.setState(StateAuthenticated)
	span.SetAttributes(attribute.String("auth.user_id", profile.ID))
	o.metrics.RecordAuthChain(flow, observability.OutcomeSuccess)
	logger.InfoContext(ctx, "authenticated",
		"event", flow+"_succeeded",
		"user_id", profile.ID,
		"username", profile.Username,
	)
	o.nav.Navigate(router.RouteHome)
	return nil
}

// fail returns to Anonymous and surfaces the failure's message to the user.
func (o *Orchestrator) fail(ctx context.Context, logger *slog.Logger, flow, stage string, err error) error {
	o.setState(StateAnonymous)
	o.metrics.RecordAuthChain(flow, observability.OutcomeFailure)
	logger.WarnContext(ctx, "authentication chain failed",
		"event", flow+"_failed",
		"stage", stage,
		"code", auth.CodeOf(err),
		"error", err.Error(),
	)
	o.notifier.Notify(ctx, auth.Message(err))
	return err
}

// Logout clears the session and navigates to the login view.
func (o *Orchestrator) Logout(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateAuthenticated {
		o.mu.Unlock()
		return oops.Code(CodeNotAuthenticated).Wrap(auth.ErrNotAuthenticated)
	}
	o.state = StateAnonymous
	o.mu.Unlock()

	if err := o.store.Clear(ctx); err != nil {
		o.setState(StateAuthenticated)
		errutil.LogError(o.logger, "failed to clear session", err, "event", "logout_failed")
		o.notifier.Notify(ctx, auth.Message(err))
		return err
	}

	o.logger.InfoContext(ctx, "logged out", "event", "logout")
	o.nav.Navigate(router.RouteLogin)
	return nil
}

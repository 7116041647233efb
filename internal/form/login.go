// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package form

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/observability"
)

const (
	formLogin  = "login"
	formSignup = "signup"
)

// LoginSubmitter performs the login chain.
type LoginSubmitter interface {
	SubmitLogin(ctx context.Context, creds auth.Credentials) error
}

// Option configures a form.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// WithLogger sets the form's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records submit events.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LoginForm is one instance of the login view's form. The login field takes
// a username or an email address.
type LoginForm struct {
	id        ulid.ULID
	guard     SubmissionGuard
	submitter LoginSubmitter
	options
}

// NewLoginForm creates a login form that submits through submitter.
func NewLoginForm(submitter LoginSubmitter, opts ...Option) (*LoginForm, error) {
	if submitter == nil {
		return nil, oops.Errorf("login submitter is required")
	}
	return &LoginForm{
		id:        ulid.Make(),
		submitter: submitter,
		options:   buildOptions(opts),
	}, nil
}

// ID identifies this form instance in logs.
func (f *LoginForm) ID() ulid.ULID {
	return f.id
}

// Submitted reports whether the form's guard has fired.
func (f *LoginForm) Submitted() bool {
	return f.guard.Fired()
}

// Submit runs the login chain once. Later calls on the same instance return
// ErrAlreadySubmitted without contacting the identity service, whatever the
// outcome of the first.
func (f *LoginForm) Submit(ctx context.Context, creds auth.Credentials) error {
	var err error
	ran := f.guard.Do(func() {
		err = f.submitter.SubmitLogin(ctx, creds)
	})
	return finishSubmit(ctx, f.options, f.id, formLogin, ran, err)
}

// finishSubmit records the submit outcome and maps a swallowed event to
// ErrAlreadySubmitted.
func finishSubmit(ctx context.Context, o options, id ulid.ULID, form string, ran bool, err error) error {
	if !ran {
		o.metrics.RecordSubmission(form, observability.OutcomeSwallowed)
		o.logger.DebugContext(ctx, "submit swallowed",
			"event", "submit_swallowed",
			"form", form,
			"form_id", id.String(),
		)
		return oops.Code(CodeAlreadySubmitted).With("form_id", id.String()).Wrap(ErrAlreadySubmitted)
	}
	if err != nil {
		outcome := observability.OutcomeFailure
		if auth.HasCode(err, CodeSubmitBlocked) {
			outcome = observability.OutcomeBlocked
		}
		o.metrics.RecordSubmission(form, outcome)
		return err
	}
	o.metrics.RecordSubmission(form, observability.OutcomeSuccess)
	return nil
}

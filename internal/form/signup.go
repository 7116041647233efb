// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package form

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/validation"
)

// SignupSubmitter performs the signup chain.
type SignupSubmitter interface {
	SubmitSignup(ctx context.Context, input auth.SignupInput) error
}

// SignupForm is one instance of the signup view's form. Field edits are
// validated as they happen; Submit sends the current values.
type SignupForm struct {
	id        ulid.ULID
	guard     SubmissionGuard
	engine    *validation.Engine
	submitter SignupSubmitter
	options
}

// NewSignupForm creates a signup form. engine must be fresh for this form
// instance.
func NewSignupForm(engine *validation.Engine, submitter SignupSubmitter, opts ...Option) (*SignupForm, error) {
	if engine == nil {
		return nil, oops.Errorf("validation engine is required")
	}
	if submitter == nil {
		return nil, oops.Errorf("signup submitter is required")
	}
	return &SignupForm{
		id:        ulid.Make(),
		engine:    engine,
		submitter: submitter,
		options:   buildOptions(opts),
	}, nil
}

// ID identifies this form instance in logs.
func (f *SignupForm) ID() ulid.ULID {
	return f.id
}

// Submitted reports whether the form's guard has fired.
func (f *SignupForm) Submitted() bool {
	return f.guard.Fired()
}

// Engine returns the form's validation engine.
func (f *SignupForm) Engine() *validation.Engine {
	return f.engine
}

// Edit records a new value for field.
func (f *SignupForm) Edit(ctx context.Context, field validation.Field, value string) error {
	return f.engine.Edit(ctx, field, value)
}

// Submit consumes the guard, validates every field and, if all pass, runs the
// signup chain with the current values. A blocked submit still consumes the
// guard and makes no gateway call.
func (f *SignupForm) Submit(ctx context.Context) error {
	var err error
	ran := f.guard.Do(func() {
		err = f.submit(ctx)
	})
	return finishSubmit(ctx, f.options, f.id, formSignup, ran, err)
}

func (f *SignupForm) submit(ctx context.Context) error {
	ok, err := f.engine.Validate(ctx)
	if err != nil {
		return oops.Code(CodeSubmitBlocked).With("form_id", f.id.String()).Wrap(err)
	}
	if !ok {
		f.logger.InfoContext(ctx, "signup blocked by field errors",
			"event", "submit_blocked",
			"form_id", f.id.String(),
		)
		return oops.Code(CodeSubmitBlocked).With("form_id", f.id.String()).Wrap(ErrSubmitBlocked)
	}

	return f.submitter.SubmitSignup(ctx, auth.SignupInput{
		Username: f.engine.Value(validation.FieldUsername),
		Email:    f.engine.Value(validation.FieldEmail),
		Password: f.engine.Value(validation.FieldPassword),
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/form"
	"github.com/quillpress/quill/internal/observability"
	"github.com/quillpress/quill/internal/router"
	"github.com/quillpress/quill/internal/validation"
)

// Link commands accepted at any form prompt.
const (
	linkLogin  = ":login"
	linkSignup = ":signup"
	linkHome   = ":home"
)

// Session is the authentication surface the views drive.
// *orchestrator.Orchestrator satisfies it.
type Session interface {
	Current() auth.Session
	SubmitLogin(ctx context.Context, creds auth.Credentials) error
	SubmitSignup(ctx context.Context, input auth.SignupInput) error
	Logout(ctx context.Context) error
}

// Navigator triggers a view transition. *router.Router satisfies it.
type Navigator interface {
	Navigate(route string)
}

// Option configures Views.
type Option func(*Views)

// WithLogger sets the views' logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Views) {
		v.logger = logger
	}
}

// WithMetrics passes metrics to the forms and validation engines the views create.
func WithMetrics(m *observability.Metrics) Option {
	return func(v *Views) {
		v.metrics = m
	}
}

// Views renders the home, login and signup views. Each visit to a form view
// creates a new form instance.
type Views struct {
	term    *Terminal
	session Session
	checker validation.AvailabilityChecker
	nav     Navigator
	logger  *slog.Logger
	metrics *observability.Metrics

	// draft keeps signup values that passed validation, so a blocked
	// submit only re-asks for the failing fields.
	draft map[validation.Field]string
}

// NewViews creates the views.
func NewViews(term *Terminal, session Session, checker validation.AvailabilityChecker, nav Navigator, opts ...Option) (*Views, error) {
	if term == nil {
		return nil, oops.Errorf("terminal is required")
	}
	if session == nil {
		return nil, oops.Errorf("session is required")
	}
	if checker == nil {
		return nil, oops.Errorf("availability checker is required")
	}
	if nav == nil {
		return nil, oops.Errorf("navigator is required")
	}

	v := &Views{
		term:    term,
		session: session,
		checker: checker,
		nav:     nav,
		logger:  slog.New(slog.DiscardHandler),
		draft:   make(map[validation.Field]string),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Register binds the views to r.
func (v *Views) Register(r *router.Router) error {
	routes := map[string]router.Handler{
		router.RouteHome:   v.Home,
		router.RouteLogin:  v.Login,
		router.RouteSignup: v.Signup,
	}
	for _, pattern := range []string{router.RouteHome, router.RouteLogin, router.RouteSignup} {
		if err := r.On(pattern, routes[pattern]); err != nil {
			return err
		}
	}
	r.NotFound(v.notFound)
	return nil
}

func (v *Views) notFound(_ context.Context, route string) error {
	v.term.Printf("No view at %s.\n", route)
	v.nav.Navigate(router.RouteHome)
	return nil
}

// Home shows the logged-in user or offers login and signup. Returning
// without navigating ends the console.
func (v *Views) Home(ctx context.Context, _ string) error {
	for {
		sess := v.session.Current()
		var choices string
		if sess.Present() {
			p := sess.Profile()
			v.term.Printf("\nLogged in as %s <%s>\n", p.Username, p.Email)
			choices = "[logout, quit] > "
		} else {
			v.term.Println("\nYou are not logged in.")
			choices = "[login, signup, quit] > "
		}

		line, err := v.term.Prompt(choices)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch cmd := strings.ToLower(strings.TrimSpace(line)); {
		case cmd == "quit" || cmd == "exit":
			return nil
		case cmd == "login" && !sess.Present():
			v.nav.Navigate(router.RouteLogin)
			return nil
		case cmd == "signup" && !sess.Present():
			v.nav.Navigate(router.RouteSignup)
			return nil
		case cmd == "logout" && sess.Present():
			// Failures are already shown by the notifier.
			if err := v.session.Logout(ctx); err == nil {
				return nil
			}
		case cmd == "":
		default:
			v.term.Printf("Unknown choice %q.\n", cmd)
		}
	}
}

// followLink navigates if line is a link command and reports whether it was.
func (v *Views) followLink(line string) bool {
	switch strings.TrimSpace(line) {
	case linkLogin:
		v.nav.Navigate(router.RouteLogin)
	case linkSignup:
		v.nav.Navigate(router.RouteSignup)
	case linkHome:
		v.nav.Navigate(router.RouteHome)
	default:
		return false
	}
	return true
}

// Login renders a fresh login form and submits it once.
func (v *Views) Login(ctx context.Context, _ string) error {
	if v.session.Current().Present() {
		v.nav.Navigate(router.RouteHome)
		return nil
	}

	f, err := form.NewLoginForm(v.session, form.WithLogger(v.logger), form.WithMetrics(v.metrics))
	if err != nil {
		return err
	}

	v.term.Println("\nLog in  (type :signup to create an account, :home to go back)")
	var creds auth.Credentials
	for _, field := range []struct {
		label string
		dst   *string
	}{
		{"Username or email (e.g. hitesh5678): ", &creds.Login},
		{"Password: ", &creds.Password},
	} {
		line, err := v.term.Prompt(field.label)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if v.followLink(line) {
			return nil
		}
		*field.dst = line
	}

	if err := f.Submit(ctx, creds); err != nil {
		v.logger.DebugContext(ctx, "login submit failed", "event", "login_submit_failed", "form_id", f.ID().String(), "code", auth.CodeOf(err))
		return v.retry(router.RouteLogin)
	}
	return nil
}

// retry offers to reopen route with a new form instance.
func (v *Views) retry(route string) error {
	line, err := v.term.Prompt("Press enter to try again or type :home > ")
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	if !v.followLink(line) {
		v.nav.Navigate(route)
	}
	return nil
}

var fieldLabels = map[validation.Field]string{
	validation.FieldUsername: "Username",
	validation.FieldEmail:    "Email",
	validation.FieldPassword: "Password",
}

// Signup renders a fresh signup form. Field verdicts print as they arrive;
// uniqueness checks never hold up the next prompt.
func (v *Views) Signup(ctx context.Context, _ string) error {
	if v.session.Current().Present() {
		v.nav.Navigate(router.RouteHome)
		return nil
	}

	engine, err := validation.NewEngine(v.checker,
		validation.WithLogger(v.logger),
		validation.WithMetrics(v.metrics),
		validation.WithOnChange(func(field validation.Field, state validation.FieldState) {
			if state.Message != "" {
				v.term.Printf("  %s: %s\n", fieldLabels[field], state.Message)
			}
		}),
	)
	if err != nil {
		return err
	}
	f, err := form.NewSignupForm(engine, v.session, form.WithLogger(v.logger), form.WithMetrics(v.metrics))
	if err != nil {
		return err
	}

	v.term.Println("\nSign up  (type :login if you already have an account, :home to go back)")
	for _, field := range validation.Fields {
		value, kept := v.draft[field]
		if !kept {
			line, err := v.term.Prompt(fieldLabels[field] + ": ")
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if v.followLink(line) {
				return nil
			}
			value = line
		}
		if err := f.Edit(ctx, field, value); err != nil {
			return err
		}
	}

	err = f.Submit(ctx)
	if errors.Is(err, form.ErrSubmitBlocked) {
		v.keepValid(engine)
		v.term.Println("Please fix the fields above.")
		v.nav.Navigate(router.RouteSignup)
		return nil
	}
	clear(v.draft)
	if err != nil {
		return v.retry(router.RouteSignup)
	}
	return nil
}

// keepValid remembers the fields that passed so the next form only asks
// for the rest.
func (v *Views) keepValid(engine *validation.Engine) {
	clear(v.draft)
	for _, field := range validation.Fields {
		if engine.State(field).Valid() && engine.Value(field) != "" {
			v.draft[field] = engine.Value(field)
		}
	}
}

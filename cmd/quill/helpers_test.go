package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/samber/oops"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/config"
	"github.com/quillpress/quill/internal/session"
)

var hitesh = auth.UserProfile{ID: "u-1", Email: "hitesh@example.com", Username: "hitesh"}

// mockGateway implements Gateway for testing.
type mockGateway struct {
	loginFunc        func(ctx context.Context, creds auth.Credentials) (auth.SessionToken, error)
	signupFunc       func(ctx context.Context, input auth.SignupInput) (auth.SessionToken, error)
	authenticateFunc func(ctx context.Context, token auth.SessionToken) (auth.UserProfile, error)
	usernameFunc     func(ctx context.Context, username string) (bool, error)
	emailFunc        func(ctx context.Context, email string) (bool, error)

	logins  atomic.Int32
	signups atomic.Int32
	closed  atomic.Bool
}

func (m *mockGateway) Login(ctx context.Context, creds auth.Credentials) (auth.SessionToken, error) {
	m.logins.Add(1)
	if m.loginFunc != nil {
		return m.loginFunc(ctx, creds)
	}
	return "tok-1", nil
}

func (m *mockGateway) Signup(ctx context.Context, input auth.SignupInput) (auth.SessionToken, error) {
	m.signups.Add(1)
	if m.signupFunc != nil {
		return m.signupFunc(ctx, input)
	}
	return "tok-2", nil
}

func (m *mockGateway) Authenticate(ctx context.Context, token auth.SessionToken) (auth.UserProfile, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, token)
	}
	return hitesh, nil
}

func (m *mockGateway) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if m.usernameFunc != nil {
		return m.usernameFunc(ctx, username)
	}
	return true, nil
}

func (m *mockGateway) EmailAvailable(ctx context.Context, email string) (bool, error) {
	if m.emailFunc != nil {
		return m.emailFunc(ctx, email)
	}
	return true, nil
}

func (m *mockGateway) Close() error {
	m.closed.Store(true)
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// testEnv runs commands against one in-memory session backend.
type testEnv struct {
	t       *testing.T
	gateway *mockGateway
	kv      *session.MemoryKV
	deps    *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	env := &testEnv{
		t:       t,
		gateway: &mockGateway{},
		kv:      session.NewMemoryKV(),
	}
	env.deps = &Deps{
		GatewayFactory: func(*config.Config, *slog.Logger) (Gateway, error) {
			return env.gateway, nil
		},
		KVFactory: func(context.Context, *config.Config) (session.KV, error) {
			return env.kv, nil
		},
		LogWriterFactory: func(*config.Config) (io.WriteCloser, error) {
			return nopWriteCloser{io.Discard}, nil
		},
	}
	return env
}

// run executes the root command with stdin and returns stdout and stderr.
func (e *testEnv) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	cmd := newRootCmdWithDeps(e.deps)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// login stores a session for hitesh.
func (e *testEnv) login() {
	e.t.Helper()
	if _, _, err := e.run("secret123\n", "login", "--login", "hitesh", "--password-stdin"); err != nil {
		e.t.Fatalf("login: %v", err)
	}
}

var errUnreachable = oops.Code(auth.CodeTransport).Errorf("connection refused")

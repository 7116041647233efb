package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/console"
	"github.com/quillpress/quill/internal/orchestrator"
)

// discardNavigator ignores view transitions; one-shot commands have no views.
type discardNavigator struct{}

func (discardNavigator) Navigate(string) {}

// logNotifier records alerts in the log. One-shot commands report failures
// through their returned error instead.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(ctx context.Context, message string) {
	n.logger.DebugContext(ctx, "alert", "event", "alert", "message", message)
}

func newOneShotOrchestrator(rt *runtime) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(rt.gateway, rt.store, discardNavigator{}, logNotifier{logger: rt.logger},
		orchestrator.WithLogger(rt.logger),
	)
}

// promptValue returns preset, or prompts for a value when it is empty.
func promptValue(term *console.Terminal, preset, name string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	return readLine(term, name+": ", name)
}

// readPassword reads the password from the next input line. With
// fromStdin the line is read without a prompt.
func readPassword(term *console.Terminal, fromStdin bool) (string, error) {
	label := "Password: "
	if fromStdin {
		label = ""
	}
	return readLine(term, label, "password")
}

func readLine(term *console.Terminal, label, name string) (string, error) {
	line, err := term.Prompt(label)
	if errors.Is(err, io.EOF) {
		return "", oops.Code("INPUT_MISSING").With("input", name).Errorf("input ended before %s was given", strings.ToLower(name))
	}
	return line, err
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// noGateway stands in for the identity client in commands that never
// contact the service.
type noGateway struct{}

func (noGateway) Login(context.Context, auth.Credentials) (auth.SessionToken, error) {
	return "", errNoGateway
}

func (noGateway) Signup(context.Context, auth.SignupInput) (auth.SessionToken, error) {
	return "", errNoGateway
}

func (noGateway) Authenticate(context.Context, auth.SessionToken) (auth.UserProfile, error) {
	return auth.UserProfile{}, errNoGateway
}

func (noGateway) UsernameAvailable(context.Context, string) (bool, error) {
	return false, errNoGateway
}

func (noGateway) EmailAvailable(context.Context, string) (bool, error) {
	return false, errNoGateway
}

func (noGateway) Close() error { return nil }

var errNoGateway = oops.Code(auth.CodeTransport).Errorf("identity service not connected")

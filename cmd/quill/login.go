package main

import (
	"github.com/spf13/cobra"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/console"
	"github.com/quillpress/quill/internal/form"
)

// loginConfig holds flags for the login command.
type loginConfig struct {
	login         string
	passwordStdin bool
}

// newLoginCmd creates the login subcommand.
func newLoginCmd(opts *rootOptions) *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Log in with a username or email and password. On success the session
token and user profile are stored for later commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, opts, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.login, "login", "", "username or email (prompted when empty)")
	cmd.Flags().BoolVar(&cfg.passwordStdin, "password-stdin", false, "read the password from stdin")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *rootOptions, cfg *loginConfig) error {
	ctx := contextOf(cmd)
	rt, err := opts.setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	orch, err := newOneShotOrchestrator(rt)
	if err != nil {
		return err
	}
	loginForm, err := form.NewLoginForm(orch, form.WithLogger(rt.logger))
	if err != nil {
		return err
	}

	term := console.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
	login, err := promptValue(term, cfg.login, "Username or email")
	if err != nil {
		return err
	}
	password, err := readPassword(term, cfg.passwordStdin)
	if err != nil {
		return err
	}

	if err := loginForm.Submit(ctx, auth.Credentials{Login: login, Password: password}); err != nil {
		return err
	}

	profile := orch.Current().Profile()
	cmd.Printf("Logged in as %s <%s>\n", profile.Username, profile.Email)
	return nil
}

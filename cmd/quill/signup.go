package main

import (
	"github.com/spf13/cobra"

	"github.com/quillpress/quill/internal/console"
	"github.com/quillpress/quill/internal/form"
	"github.com/quillpress/quill/internal/validation"
)

// signupConfig holds flags for the signup command.
type signupConfig struct {
	username      string
	email         string
	passwordStdin bool
}

// newSignupCmd creates the signup subcommand.
func newSignupCmd(opts *rootOptions) *cobra.Command {
	cfg := &signupConfig{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and store the session",
		Long: `Create an account. Each field is validated before anything is sent;
username and email are also checked for availability. Invalid fields are
listed and nothing is submitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSignup(cmd, opts, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.username, "username", "", "user name (prompted when empty)")
	cmd.Flags().StringVar(&cfg.email, "email", "", "email address (prompted when empty)")
	cmd.Flags().BoolVar(&cfg.passwordStdin, "password-stdin", false, "read the password from stdin")

	return cmd
}

func runSignup(cmd *cobra.Command, opts *rootOptions, cfg *signupConfig) error {
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
	engine, err := validation.NewEngine(rt.gateway, validation.WithLogger(rt.logger))
	if err != nil {
		return err
	}
	signupForm, err := form.NewSignupForm(engine, orch, form.WithLogger(rt.logger))
	if err != nil {
		return err
	}

	term := console.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
	username, err := promptValue(term, cfg.username, "User name")
	if err != nil {
		return err
	}
	email, err := promptValue(term, cfg.email, "Email")
	if err != nil {
		return err
	}
	password, err := readPassword(term, cfg.passwordStdin)
	if err != nil {
		return err
	}

	values := map[validation.Field]string{
		validation.FieldUsername: username,
		validation.FieldEmail:    email,
		validation.FieldPassword: password,
	}
	for _, field := range validation.Fields {
		if err := signupForm.Edit(ctx, field, values[field]); err != nil {
			return err
		}
	}

	if err := signupForm.Submit(ctx); err != nil {
		for _, field := range validation.Fields {
			if state := engine.State(field); state.Message != "" {
				cmd.PrintErrf("%s: %s\n", field, state.Message)
			}
		}
		return err
	}

	profile := orch.Current().Profile()
	cmd.Printf("Signed up as %s <%s>\n", profile.Username, profile.Email)
	return nil
}

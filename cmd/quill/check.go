package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillpress/quill/internal/validation"
)

// CodeCheckFailed is returned when a checked value is not acceptable.
const CodeCheckFailed = "CHECK_FAILED"

// newCheckCmd creates the check subcommand.
func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "check username|email <value>",
		Short:     "Check a user name or email before signing up",
		Long:      `Run the signup rule for one value and, when it passes, ask the identity service whether the value is free.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(validation.FieldUsername), string(validation.FieldEmail)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, validation.Field(args[0]), args[1])
		},
	}
}

func runCheck(cmd *cobra.Command, opts *rootOptions, field validation.Field, value string) error {
	if !validation.IsRemote(field) {
		return oops.Code(validation.CodeUnknownField).
			With("field", string(field)).
			Errorf("can only check %s or %s", validation.FieldUsername, validation.FieldEmail)
	}

	ctx := contextOf(cmd)
	rt, err := opts.setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	engine, err := validation.NewEngine(rt.gateway, validation.WithLogger(rt.logger))
	if err != nil {
		return err
	}
	if err := engine.Edit(ctx, field, value); err != nil {
		return err
	}
	if err := engine.Settle(ctx); err != nil {
		return err
	}

	state := engine.State(field)
	if !state.Valid() {
		return oops.Code(CodeCheckFailed).
			With("field", string(field)).
			With("reason", state.Code).
			Errorf("%s", state.Message)
	}
	cmd.Printf("%s %q is available.\n", field, value)
	return nil
}

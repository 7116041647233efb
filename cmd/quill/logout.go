package main

import (
	"github.com/spf13/cobra"
)

// newLogoutCmd creates the logout subcommand.
func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := contextOf(cmd)
			rt, err := opts.setup(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer rt.shutdown()

			// Logout never contacts the identity service.
			rt.gateway = noGateway{}
			orch, err := newOneShotOrchestrator(rt)
			if err != nil {
				return err
			}
			if err := orch.Logout(ctx); err != nil {
				return err
			}
			cmd.Println("Logged out.")
			return nil
		},
	}
}

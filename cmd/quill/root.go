package main

import (
	"github.com/spf13/cobra"

	"github.com/quillpress/quill/internal/config"
)

// rootOptions carries global flags and dependencies to subcommands.
type rootOptions struct {
	configFile string
	deps       *Deps
}

// NewRootCmd creates the root command for the quill CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithDeps(nil)
}

// newRootCmdWithDeps builds the command tree with injectable dependencies.
// If deps is nil, default implementations are used.
func newRootCmdWithDeps(deps *Deps) *cobra.Command {
	opts := &rootOptions{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "quill",
		Short: "Quill - sign in to your blog from the terminal",
		Long: `Quill is a command-line client for the blog identity service.
Run without a subcommand to open the interactive console.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/quill/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newAppCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newSignupCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

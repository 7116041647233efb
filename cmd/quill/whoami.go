package main

import (
	"encoding/json"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quillpress/quill/internal/auth"
	"github.com/quillpress/quill/internal/orchestrator"
)

// Output formats for whoami.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// whoamiConfig holds flags for the whoami command.
type whoamiConfig struct {
	output string
}

// newWhoamiCmd creates the whoami subcommand.
func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	cfg := &whoamiConfig{}

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Long:  `Show the user profile held by the stored session.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWhoami(cmd, opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.output, "output", "o", outputText, "output format: text, json or yaml")

	return cmd
}

func runWhoami(cmd *cobra.Command, opts *rootOptions, cfg *whoamiConfig) error {
	rt, err := opts.setup(contextOf(cmd), cmd, false)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	current := rt.store.Get()
	if !current.Present() {
		return oops.Code(orchestrator.CodeNotAuthenticated).Wrap(auth.ErrNotAuthenticated)
	}

	out, err := formatProfile(current.Profile(), cfg.output)
	if err != nil {
		return err
	}
	cmd.Print(out)
	return nil
}

// formatProfile renders profile in the requested format.
func formatProfile(profile auth.UserProfile, format string) (string, error) {
	switch format {
	case outputText, "":
		return profile.Username + " <" + profile.Email + ">\n", nil
	case outputJSON:
		data, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return "", oops.Wrapf(err, "failed to marshal profile")
		}
		return string(data) + "\n", nil
	case outputYAML:
		data, err := yaml.Marshal(profile)
		if err != nil {
			return "", oops.Wrapf(err, "failed to marshal profile")
		}
		return string(data), nil
	default:
		return "", oops.Code("OUTPUT_FORMAT_INVALID").With("format", format).Errorf("unknown output format %q", format)
	}
}

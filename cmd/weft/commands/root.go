// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/cli"
	"github.com/weftlabs/weft/internal/ctxlog"
)

// Root returns the root command for the weft CLI.
//
// The root command owns the persistent logging flags and installs the
// configured logger into the command context, where every handler and
// every layer below it picks it up.
func Root() *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "weft",
		Short: "Plan and provision declarative resource topologies",
		Long: `weft reads resource declarations (HCL or YAML), resolves their
dependencies into an ordered provisioning plan, and applies the plan
against a backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := cli.NewLogger(logLevel, logFormat, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	// Flag errors are usage mistakes and carry the validation exit code.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cli.Validation(err)
	})

	cmd.AddCommand(Plan())
	cmd.AddCommand(Apply())
	cmd.AddCommand(Validate())
	cmd.AddCommand(Version())

	return cmd
}

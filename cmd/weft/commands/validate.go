package commands

import (
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/cmd/weft/handlers"
)

// Validate returns the command that checks declarations without planning
// or provisioning anything.
func Validate() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check declarations without planning anything",
		Long: `Check that the declarations parse, that every configuration is valid,
and that the dependency graph is complete and acyclic.

All configuration violations are reported together, not just the first
one found.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(cmd.Context(), cmd.OutOrStdout(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", ".", "Path to a declaration file or directory")

	return cmd
}

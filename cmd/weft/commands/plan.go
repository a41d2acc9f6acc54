package commands

import (
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/cmd/weft/handlers"
)

// Plan returns the command that computes an ordered provisioning plan
// without touching any backend.
//
// Optional flags:
//
//	--config, -c: Path to a declaration file or directory (default: current directory)
//	--out:        Write the plan as JSON to this file
//	--state:      State document to diff against (path or s3://bucket/key)
func Plan() *cobra.Command {
	var configPath string
	var outPath string
	var stateRef string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the ordered provisioning plan",
		Long: `Compute the ordered provisioning plan for a set of declarations.

Resources already recorded as applied in the state document come out as
update-dependency operations instead of creates. Without --state every
operation is a create.

Examples:
  # Plan the declarations in the current directory
  weft plan

  # Plan a single file and save the plan for a later apply
  weft plan -c topology.hcl --out topology.plan.json

  # Diff against previously provisioned state
  weft plan -c ./infra --state weft.state.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), cmd.OutOrStdout(), handlers.PlanOptions{
				ConfigPath: configPath,
				OutPath:    outPath,
				StateRef:   stateRef,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", ".", "Path to a declaration file or directory")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the plan as JSON to this file")
	cmd.Flags().StringVar(&stateRef, "state", "", "State document to diff against (path or s3://bucket/key)")

	return cmd
}

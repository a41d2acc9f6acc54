package commands

import (
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/cmd/weft/handlers"
)

// Apply returns the command that executes a provisioning plan against a
// backend.
//
// With a plan file argument the saved plan is applied as-is; otherwise
// the plan is computed from the declarations first, exactly as weft plan
// would.
//
// Optional flags:
//
//	--config, -c:   Path to a declaration file or directory (default: current directory)
//	--state:        State document to read and update (path or s3://bucket/key)
//	--backend:      Provisioning backend: sim or hcloud (default: sim)
//	--metrics-port: Serve Prometheus metrics on this port while applying (0 disables)
//
// Environment variables:
//
//	HCLOUD_TOKEN: Hetzner Cloud API token (required for --backend hcloud)
func Apply() *cobra.Command {
	var configPath string
	var stateRef string
	var backendName string
	var metricsPort int

	cmd := &cobra.Command{
		Use:   "apply [plan-file]",
		Short: "Execute a provisioning plan against a backend",
		Long: `Execute a provisioning plan against a backend.

The backend stops at the first failure; operations downstream of the
failed resource are skipped and recorded as such. With --state the
outcome of every operation is written back to the state document, so the
next plan picks up where this run ended.

Examples:
  # Plan and apply the current directory against the simulation backend
  weft apply

  # Apply a previously saved plan
  weft apply topology.plan.json --state weft.state.json

  # Provision for real on Hetzner Cloud
  HCLOUD_TOKEN=... weft apply -c ./infra --backend hcloud --state s3://infra/weft.state.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := ""
			if len(args) == 1 {
				planPath = args[0]
			}
			return handlers.Apply(cmd.Context(), cmd.OutOrStdout(), handlers.ApplyOptions{
				ConfigPath:  configPath,
				PlanPath:    planPath,
				StateRef:    stateRef,
				Backend:     backendName,
				MetricsPort: metricsPort,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", ".", "Path to a declaration file or directory")
	cmd.Flags().StringVar(&stateRef, "state", "", "State document to read and update (path or s3://bucket/key)")
	cmd.Flags().StringVar(&backendName, "backend", "sim", "Provisioning backend: sim or hcloud")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port while applying (0 disables)")

	return cmd
}

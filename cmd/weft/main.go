// Package main is the entry point for the weft CLI.
//
// weft turns declarative resource files (HCL or YAML) into ordered
// provisioning plans and applies them against a backend. Declarations
// describe networks, caches, services, namespaces and autoscalers; weft
// resolves their dependencies, orders the work, and tracks the outcome in
// a state document.
//
// Commands: plan, apply, validate, version.
//
// For detailed usage information, run:
//
//	weft --help
package main

import (
	"fmt"
	"os"

	"github.com/weftlabs/weft/cmd/weft/commands"
	"github.com/weftlabs/weft/internal/cli"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.Code(err))
	}
}

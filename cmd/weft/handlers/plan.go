package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/weftlabs/weft/internal/builder"
	"github.com/weftlabs/weft/internal/cli"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/plan"
)

// PlanOptions carries the flag values of the plan command.
type PlanOptions struct {
	ConfigPath string
	OutPath    string
	StateRef   string
}

// Plan computes the ordered provisioning plan for the declarations at
// ConfigPath, prints it to outW, and optionally writes it as JSON to
// OutPath for a later apply.
func Plan(ctx context.Context, outW io.Writer, opts PlanOptions) error {
	p, err := buildPlan(ctx, opts.ConfigPath, opts.StateRef)
	if err != nil {
		return err
	}

	if opts.OutPath != "" {
		if err := writePlanFile(p, opts.OutPath); err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Info("Plan written.", "path", opts.OutPath)
	}

	printPlan(outW, p)
	return nil
}

// buildPlan runs the full pipeline from declarations to an ordered plan:
// load, build the topology, diff against prior state, emit.
func buildPlan(ctx context.Context, configPath, stateRef string) (*plan.Plan, error) {
	loader, err := selectLoader(configPath)
	if err != nil {
		return nil, err
	}

	doc, err := loader.Load(ctx, configPath)
	if err != nil {
		return nil, cli.Validation(err)
	}

	topo, err := builder.BuildTopology(ctx, doc)
	if err != nil {
		return nil, cli.Classify(err)
	}

	prior, err := loadState(ctx, stateRef)
	if err != nil {
		return nil, err
	}

	p, err := plan.Emit(ctx, topo, prior.Provisioned())
	if err != nil {
		return nil, cli.Classify(err)
	}
	return p, nil
}

func writePlanFile(p *plan.Plan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plan file %s: %w", path, err)
	}
	if err := p.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write plan file %s: %w", path, err)
	}
	return f.Close()
}

func printPlan(w io.Writer, p *plan.Plan) {
	if len(p.Operations) == 0 {
		fmt.Fprintln(w, "Nothing to provision.")
		return
	}

	fmt.Fprintf(w, "Plan: %d operations\n\n", len(p.Operations))
	for _, op := range p.Operations {
		fmt.Fprintf(w, "%4d. %-17s %-10s %q", op.Index+1, op.Op, op.Kind, op.Name)
		if len(op.DependsOn) > 0 {
			fmt.Fprintf(w, "  after: %s", strings.Join(op.DependsOn, ", "))
		}
		fmt.Fprintln(w)
	}
}

package integration_tests

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/weftlabs/weft/internal/builder"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/hcl"
	"github.com/weftlabs/weft/internal/plan"
)

func loadPlan(t *testing.T, declarations string) *plan.Plan {
	t.Helper()
	tempDir := t.TempDir()
	declPath := filepath.Join(tempDir, "main.hcl")
	if err := os.WriteFile(declPath, []byte(declarations), 0600); err != nil {
		t.Fatalf("failed to write declaration file: %v", err)
	}
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))

	doc, err := hcl.NewLoader().Load(ctx, declPath)
	if err != nil {
		t.Fatalf("loading declarations failed: %v", err)
	}
	topo, err := builder.BuildTopology(ctx, doc)
	if err != nil {
		t.Fatalf("building the topology failed: %v", err)
	}
	p, err := plan.Emit(ctx, topo, nil)
	if err != nil {
		t.Fatalf("emitting the plan failed: %v", err)
	}
	return p
}

func position(t *testing.T, p *plan.Plan, name string) int {
	t.Helper()
	for _, op := range p.Operations {
		if op.Name == name {
			return op.Index
		}
	}
	t.Fatalf("operation %q not found in plan", name)
	return -1
}

// Test for: depends_on forces an ordering no reference implies
func TestHclFeatures_ExplicitDependency_OrdersPlan(t *testing.T) {
	// --- Arrange ---
	declarations := `
		network "core" {
			cidr = "10.0.0.0/16"
			zone = "eu-central"
		}

		service "migrations" {
			network = "core"
			image   = "registry.local/migrate:1"
			port    = 9000
		}

		service "api" {
			network    = "core"
			image      = "registry.local/api:1"
			port       = 8080
			depends_on = ["migrations"]
		}
	`

	// --- Act ---
	p := loadPlan(t, declarations)

	// --- Assert ---
	if got := len(p.Operations); got != 3 {
		t.Fatalf("expected 3 operations, got %d", got)
	}
	if position(t, p, "migrations") >= position(t, p, "api") {
		t.Error("depends_on was ignored: 'api' does not come after 'migrations'")
	}

	for _, op := range p.Operations {
		if op.Name != "api" {
			continue
		}
		found := false
		for _, dep := range op.DependsOn {
			if dep == "migrations" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected the 'api' operation to record 'migrations' as a dependency, got %v", op.DependsOn)
		}
	}
}

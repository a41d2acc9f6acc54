package integration_tests

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/hcl"
)

// Test for: locals declared in one file resolve in every other file
func TestHclFeatures_Locals_ResolveAcrossFiles(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()

	valuesFile := `
		locals {
			zone     = "eu-central"
			cache_gb = 8
		}
	`
	topologyFile := `
		network "core" {
			cidr = "10.0.0.0/16"
			zone = local.zone
		}

		cache "sessions" {
			network     = "core"
			capacity_gb = local.cache_gb
		}
	`
	if err := os.WriteFile(filepath.Join(tempDir, "values.hcl"), []byte(valuesFile), 0600); err != nil {
		t.Fatalf("failed to write values file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "topology.hcl"), []byte(topologyFile), 0600); err != nil {
		t.Fatalf("failed to write topology file: %v", err)
	}
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))

	// --- Act ---
	doc, err := hcl.NewLoader().Load(ctx, tempDir)

	// --- Assert ---
	if err != nil {
		t.Fatalf("loading declarations failed: %v", err)
	}
	if len(doc.Networks) != 1 || len(doc.Caches) != 1 {
		t.Fatalf("expected one network and one cache, got %d and %d", len(doc.Networks), len(doc.Caches))
	}
	if got := doc.Networks[0].Zone; got != "eu-central" {
		t.Errorf("expected the zone local to resolve, got %q", got)
	}
	if got := doc.Caches[0].CapacityGB; got != 8 {
		t.Errorf("expected the capacity local to resolve, got %d", got)
	}
}

package integration_tests

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/weftlabs/weft/internal/builder"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/hcl"
)

// Test for: malformed HCL is rejected with the offending file named
func TestErrorHandling_InvalidHcl_IsRejected(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	declPath := filepath.Join(tempDir, "broken.hcl")
	if err := os.WriteFile(declPath, []byte(`network "core" {`), 0600); err != nil {
		t.Fatalf("failed to write declaration file: %v", err)
	}
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))

	// --- Act ---
	_, err := hcl.NewLoader().Load(ctx, declPath)

	// --- Assert ---
	if err == nil {
		t.Fatal("Load() should have returned an error, but it returned nil")
	}
	if !strings.Contains(err.Error(), "broken.hcl") {
		t.Errorf("expected the error to name the offending file, got: %v", err)
	}
}

// Test for: every invalid declaration is reported, not just the first
func TestErrorHandling_InvalidDeclarations_AllViolationsReported(t *testing.T) {
	// --- Arrange ---
	tempDir := t.TempDir()
	declarations := `
		network "core" {
			zone = "eu-central"
		}

		cache "sessions" {
			network     = "core"
			capacity_gb = 4096
		}

		service "api" {
			network = "core"
			port    = 8080
		}
	`
	declPath := filepath.Join(tempDir, "main.hcl")
	if err := os.WriteFile(declPath, []byte(declarations), 0600); err != nil {
		t.Fatalf("failed to write declaration file: %v", err)
	}
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))

	doc, err := hcl.NewLoader().Load(ctx, declPath)
	if err != nil {
		t.Fatalf("loading declarations failed: %v", err)
	}

	// --- Act ---
	_, err = builder.BuildTopology(ctx, doc)

	// --- Assert ---
	if err == nil {
		t.Fatal("BuildTopology() should have returned an error, but it returned nil")
	}

	for _, want := range []string{
		`invalid network "core"`,
		"cidr is required",
		`invalid cache "sessions"`,
		"capacity_gb 4096",
		`invalid service "api"`,
		"image is required",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected the joined error to contain %q, got: %v", want, err)
		}
	}
}

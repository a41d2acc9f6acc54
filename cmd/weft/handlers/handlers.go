// Package handlers implements the work behind the CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/weftlabs/weft/internal/backend"
	hcloudbackend "github.com/weftlabs/weft/internal/backend/hcloud"
	"github.com/weftlabs/weft/internal/backend/sim"
	"github.com/weftlabs/weft/internal/cli"
	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/fsutil"
	"github.com/weftlabs/weft/internal/hcl"
	"github.com/weftlabs/weft/internal/state"
	"github.com/weftlabs/weft/internal/yaml"
)

// documentLoader reads declaration files into the unified document model.
// Both the HCL and the YAML loader satisfy it.
type documentLoader interface {
	Load(ctx context.Context, path string) (*config.Document, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newHCLLoader creates the HCL declaration loader.
	newHCLLoader = func() documentLoader { return hcl.NewLoader() }

	// newYAMLLoader creates the YAML declaration loader.
	newYAMLLoader = func() documentLoader { return yaml.NewLoader() }

	// newSimBackend creates the in-memory simulation backend.
	newSimBackend = func() backend.Backend { return sim.New() }

	// newHCloudBackend creates the Hetzner Cloud backend.
	newHCloudBackend = func(token string) backend.Backend { return hcloudbackend.New(token) }

	// newStateStore resolves a state reference into a store.
	newStateStore = state.NewStoreFromRef
)

// selectLoader picks the loader matching the declarations at path. A file
// is judged by its extension; a directory by the formats found inside it,
// and mixing both formats under one directory is rejected.
func selectLoader(path string) (documentLoader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, cli.Validation(fmt.Errorf("failed to access %s: %w", path, err))
	}

	if !info.IsDir() {
		switch filepath.Ext(path) {
		case ".hcl":
			return newHCLLoader(), nil
		case ".yaml", ".yml":
			return newYAMLLoader(), nil
		default:
			return nil, cli.Validation(fmt.Errorf("unsupported declaration format %q, expected .hcl, .yaml or .yml", path))
		}
	}

	hclFiles, err := fsutil.FindFilesByExtensions(path, ".hcl")
	if err != nil {
		return nil, cli.Validation(fmt.Errorf("failed to scan %s: %w", path, err))
	}
	yamlFiles, err := fsutil.FindFilesByExtensions(path, ".yaml", ".yml")
	if err != nil {
		return nil, cli.Validation(fmt.Errorf("failed to scan %s: %w", path, err))
	}

	switch {
	case len(hclFiles) > 0 && len(yamlFiles) > 0:
		return nil, cli.Validation(fmt.Errorf("both HCL and YAML declarations found under %s, pick one format", path))
	case len(yamlFiles) > 0:
		return newYAMLLoader(), nil
	default:
		// The HCL loader reports an empty directory with a useful message.
		return newHCLLoader(), nil
	}
}

// loadState reads the state document behind ref. A blank ref and a state
// that does not exist yet both come back as nil.
func loadState(ctx context.Context, ref string) (*state.State, error) {
	if ref == "" {
		return nil, nil
	}

	store, err := newStateStore(ctx, ref)
	if err != nil {
		return nil, cli.Validation(err)
	}

	st, err := store.Load(ctx)
	if errors.Is(err, state.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state from %s: %w", ref, err)
	}
	return st, nil
}

// saveState writes the state document behind ref.
func saveState(ctx context.Context, ref string, st *state.State) error {
	store, err := newStateStore(ctx, ref)
	if err != nil {
		return cli.Validation(err)
	}
	if err := store.Save(ctx, st); err != nil {
		return fmt.Errorf("failed to save state to %s: %w", ref, err)
	}
	return nil
}

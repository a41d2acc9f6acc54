package builder

import (
	"context"
	"fmt"
	"regexp"

	"github.com/weftlabs/weft/internal/topology"
)

// Builder is the per-kind construction contract. Validate inspects one spec
// in isolation and returns an *InvalidConfigError listing every violation,
// or nil. Materialize inserts the spec's node and dependency edges into the
// topology; it assumes Validate already passed and reports only
// cross-resource problems such as unknown references.
type Builder[S any] interface {
	Kind() topology.Kind
	Validate(spec S) error
	Materialize(ctx context.Context, topo *topology.Topology, spec S) error
}

// CacheEnvKey is the environment key under which a service's cache address
// is injected. It is reserved; declarations cannot set it themselves.
const CacheEnvKey = "CACHE_URL"

// maxNameLength bounds logical names and DNS labels alike, since names
// become endpoint host names.
const maxNameLength = 63

// Supported port range for caches and services.
const (
	minPort = 1
	maxPort = 65535
)

// Cache capacity range in GB.
const (
	minCacheCapacityGB = 1
	maxCacheCapacityGB = 512
)

var (
	namePattern   = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	envKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// validName reports whether s works as a logical name or DNS label.
func validName(s string) bool {
	return len(s) > 0 && len(s) <= maxNameLength && namePattern.MatchString(s)
}

// validEnvKey reports whether s is usable as an environment variable name.
func validEnvKey(s string) bool {
	return envKeyPattern.MatchString(s)
}

// checkName appends the standard name violation if needed and returns the
// updated list.
func checkName(violations []string, name string) []string {
	if !validName(name) {
		violations = append(violations, fmt.Sprintf("name %q must be a lowercase DNS label (letters, digits, hyphens, max %d chars)", name, maxNameLength))
	}
	return violations
}

// addExplicitDeps wires the depends_on edges of a declaration. It runs as a
// separate pass after every node exists, so the listed names may point
// anywhere in the document.
func addExplicitDeps(topo *topology.Topology, name string, deps []string) error {
	for _, dep := range deps {
		if err := topo.AddDependency(name, dep); err != nil {
			return fmt.Errorf("resource %q depends_on: %w", name, err)
		}
	}
	return nil
}

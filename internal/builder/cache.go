package builder

import (
	"context"
	"fmt"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/topology"
)

// cacheEngines lists the supported cache engines. The engine doubles as the
// URL scheme of the cache's endpoint address.
var cacheEngines = map[string]struct{}{
	"redis":     {},
	"memcached": {},
}

// CacheBuilder builds cache nodes.
type CacheBuilder struct{}

// NewCacheBuilder returns a builder for cache declarations.
func NewCacheBuilder() *CacheBuilder { return &CacheBuilder{} }

// Kind implements Builder.
func (*CacheBuilder) Kind() topology.Kind { return topology.KindCache }

// Validate implements Builder.
func (b *CacheBuilder) Validate(spec *config.CacheSpec) error {
	var violations []string
	violations = checkName(violations, spec.Name)

	if spec.Network == "" {
		violations = append(violations, "network is required")
	}
	if _, ok := cacheEngines[spec.Engine]; !ok {
		violations = append(violations, fmt.Sprintf("engine %q is not supported (redis, memcached)", spec.Engine))
	}
	if spec.CapacityGB < minCacheCapacityGB || spec.CapacityGB > maxCacheCapacityGB {
		violations = append(violations, fmt.Sprintf("capacity_gb %d is outside the supported range %d-%d", spec.CapacityGB, minCacheCapacityGB, maxCacheCapacityGB))
	}
	if spec.Port < minPort || spec.Port > maxPort {
		violations = append(violations, fmt.Sprintf("port %d is outside the valid range %d-%d", spec.Port, minPort, maxPort))
	}

	return invalid(b.Kind(), spec.Name, violations)
}

// Materialize implements Builder.
func (b *CacheBuilder) Materialize(ctx context.Context, topo *topology.Topology, spec *config.CacheSpec) error {
	ctxlog.FromContext(ctx).Debug("Materializing cache.", "name", spec.Name, "engine", spec.Engine)

	_, err := topo.AddNode(spec.Name, topology.KindCache, &topology.CachePayload{
		Network:    spec.Network,
		Engine:     spec.Engine,
		CapacityGB: spec.CapacityGB,
		Port:       spec.Port,
	})
	if err != nil {
		return err
	}
	if err := topo.AddDependency(spec.Name, spec.Network); err != nil {
		return fmt.Errorf("cache %q network: %w", spec.Name, err)
	}
	return nil
}

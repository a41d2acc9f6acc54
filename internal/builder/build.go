package builder

import (
	"context"
	"errors"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/endpoint"
	"github.com/weftlabs/weft/internal/topology"
)

// BuildTopology constructs a complete topology from a declaration document.
//
// The first pass validates every spec and collects all invalid declarations
// into one joined error. The second pass materializes nodes in fixed kind
// phases, declaration order within each phase, so that a cache can resolve
// its network and a service its cache without forward references across
// kinds. The third pass wires explicit depends_on edges once every node
// exists.
func BuildTopology(ctx context.Context, doc *config.Document) (*topology.Topology, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting topology construction.", "declarations", doc.Len())

	topo := topology.New()
	resolver := endpoint.NewResolver(topo)

	networks := NewNetworkBuilder()
	caches := NewCacheBuilder()
	services := NewServiceBuilder(resolver)
	namespaces := NewNamespaceBuilder()
	autoscalers := NewAutoscalerBuilder()

	var errs []error
	for _, spec := range doc.Networks {
		if err := networks.Validate(spec); err != nil {
			errs = append(errs, err)
		}
	}
	for _, spec := range doc.Caches {
		if err := caches.Validate(spec); err != nil {
			errs = append(errs, err)
		}
	}
	for _, spec := range doc.Services {
		if err := services.Validate(spec); err != nil {
			errs = append(errs, err)
		}
	}
	for _, spec := range doc.Namespaces {
		if err := namespaces.Validate(spec); err != nil {
			errs = append(errs, err)
		}
	}
	for _, spec := range doc.Autoscalers {
		if err := autoscalers.Validate(spec); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	logger.Debug("Build: validation complete.")

	for _, spec := range doc.Networks {
		if err := networks.Materialize(ctx, topo, spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range doc.Caches {
		if err := caches.Materialize(ctx, topo, spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range doc.Services {
		if err := services.Materialize(ctx, topo, spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range doc.Namespaces {
		if err := namespaces.Materialize(ctx, topo, spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range doc.Autoscalers {
		if err := autoscalers.Materialize(ctx, topo, spec); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: nodes materialized.", "nodes", topo.Len())

	// Third pass: explicit depends_on edges. Every node exists by now, so
	// these may point anywhere in the document, and a mutual reference
	// surfaces as a cycle rather than a missing node.
	for _, spec := range doc.Networks {
		if err := addExplicitDeps(topo, spec.Name, spec.DependsOn); err != nil {
			return nil, err
		}
	}
	for _, spec := range doc.Caches {
		if err := addExplicitDeps(topo, spec.Name, spec.DependsOn); err != nil {
			return nil, err
		}
	}
	for _, spec := range doc.Services {
		if err := addExplicitDeps(topo, spec.Name, spec.DependsOn); err != nil {
			return nil, err
		}
	}
	for _, spec := range doc.Namespaces {
		if err := addExplicitDeps(topo, spec.Name, spec.DependsOn); err != nil {
			return nil, err
		}
	}
	for _, spec := range doc.Autoscalers {
		if err := addExplicitDeps(topo, spec.Name, spec.DependsOn); err != nil {
			return nil, err
		}
	}

	logger.Debug("Build: topology complete.")
	return topo, nil
}

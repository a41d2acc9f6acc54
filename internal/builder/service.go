package builder

import (
	"context"
	"fmt"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/endpoint"
	"github.com/weftlabs/weft/internal/topology"
)

// linkProtocols lists the protocols a link declaration may request.
var linkProtocols = map[string]struct{}{
	endpoint.ProtocolHTTP:         {},
	endpoint.ProtocolCache:        {},
	endpoint.ProtocolDiscoveryDNS: {},
}

// ServiceBuilder builds service nodes. It resolves cache references and
// links through the endpoint resolver, so targets must already be in the
// topology when a service materializes.
type ServiceBuilder struct {
	resolver *endpoint.Resolver
}

// NewServiceBuilder returns a builder for service declarations.
func NewServiceBuilder(resolver *endpoint.Resolver) *ServiceBuilder {
	return &ServiceBuilder{resolver: resolver}
}

// Kind implements Builder.
func (*ServiceBuilder) Kind() topology.Kind { return topology.KindService }

// Validate implements Builder.
func (b *ServiceBuilder) Validate(spec *config.ServiceSpec) error {
	var violations []string
	violations = checkName(violations, spec.Name)

	if spec.Network == "" {
		violations = append(violations, "network is required")
	}
	if spec.Image == "" {
		violations = append(violations, "image is required")
	}
	if spec.Port < minPort || spec.Port > maxPort {
		violations = append(violations, fmt.Sprintf("port %d is outside the valid range %d-%d", spec.Port, minPort, maxPort))
	}
	if spec.Replicas != nil && *spec.Replicas < 1 {
		violations = append(violations, fmt.Sprintf("replicas must be at least 1, got %d", *spec.Replicas))
	}

	for key := range spec.Env {
		if !validEnvKey(key) {
			violations = append(violations, fmt.Sprintf("env key %q is not a valid environment variable name", key))
		}
	}
	if spec.Cache != "" {
		if _, ok := spec.Env[CacheEnvKey]; ok {
			violations = append(violations, fmt.Sprintf("env key %s is reserved for the cache address", CacheEnvKey))
		}
	}

	seenLinkEnvs := make(map[string]struct{})
	for i, link := range spec.Links {
		if link.Service == "" {
			violations = append(violations, fmt.Sprintf("link %d: service is required", i+1))
		}
		if !validEnvKey(link.Env) {
			violations = append(violations, fmt.Sprintf("link %d: env %q is not a valid environment variable name", i+1, link.Env))
		}
		if _, ok := linkProtocols[link.Protocol]; !ok {
			violations = append(violations, fmt.Sprintf("link %d: protocol %q is not supported", i+1, link.Protocol))
		}
		if spec.Cache != "" && link.Env == CacheEnvKey {
			violations = append(violations, fmt.Sprintf("link %d: env %s collides with the cache address key", i+1, CacheEnvKey))
		}
		if _, dup := seenLinkEnvs[link.Env]; dup {
			violations = append(violations, fmt.Sprintf("link %d: env %q is used by an earlier link", i+1, link.Env))
		}
		seenLinkEnvs[link.Env] = struct{}{}
	}

	return invalid(b.Kind(), spec.Name, violations)
}

// Materialize implements Builder. The cache reference and every link are
// resolved before the node exists, and their addresses land in the payload
// env, so the payload is complete at insertion and never mutated after.
func (b *ServiceBuilder) Materialize(ctx context.Context, topo *topology.Topology, spec *config.ServiceSpec) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Materializing service.", "name", spec.Name)

	env := make(map[string]string, len(spec.Env)+len(spec.Links)+1)
	for key, value := range spec.Env {
		env[key] = value
	}

	if spec.Cache != "" {
		desc, err := b.resolver.Resolve(spec.Cache, endpoint.ProtocolCache)
		if err != nil {
			return fmt.Errorf("service %q cache: %w", spec.Name, err)
		}
		env[CacheEnvKey] = desc.Address
		logger.Debug("Injected cache address.", "service", spec.Name, "cache", spec.Cache, "address", desc.Address)
	}

	for _, link := range spec.Links {
		desc, err := b.resolver.Resolve(link.Service, link.Protocol)
		if err != nil {
			return fmt.Errorf("service %q link %q: %w", spec.Name, link.Service, err)
		}
		env[link.Env] = desc.Address
	}

	if len(env) == 0 {
		env = nil
	}

	replicas := 1
	if spec.Replicas != nil {
		replicas = *spec.Replicas
	}

	_, err := topo.AddNode(spec.Name, topology.KindService, &topology.ServicePayload{
		Network:  spec.Network,
		Image:    spec.Image,
		Port:     spec.Port,
		Replicas: replicas,
		Cache:    spec.Cache,
		Env:      env,
	})
	if err != nil {
		return err
	}

	if err := topo.AddDependency(spec.Name, spec.Network); err != nil {
		return fmt.Errorf("service %q network: %w", spec.Name, err)
	}
	if spec.Cache != "" {
		if err := topo.AddDependency(spec.Name, spec.Cache); err != nil {
			return fmt.Errorf("service %q cache: %w", spec.Name, err)
		}
	}
	for _, link := range spec.Links {
		if err := topo.AddDependency(spec.Name, link.Service); err != nil {
			return fmt.Errorf("service %q link: %w", spec.Name, err)
		}
	}
	return nil
}

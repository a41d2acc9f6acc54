package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/topology"
)

// NamespaceBuilder builds service discovery namespace nodes.
type NamespaceBuilder struct{}

// NewNamespaceBuilder returns a builder for namespace declarations.
func NewNamespaceBuilder() *NamespaceBuilder { return &NamespaceBuilder{} }

// Kind implements Builder.
func (*NamespaceBuilder) Kind() topology.Kind { return topology.KindNamespace }

// Validate implements Builder. DNS labels are compared case-insensitively,
// so "Gateway" and "gateway" count as the same registration.
func (b *NamespaceBuilder) Validate(spec *config.NamespaceSpec) error {
	var violations []string
	violations = checkName(violations, spec.Name)

	if spec.Domain == "" {
		violations = append(violations, "domain is required")
	} else if !validDomain(spec.Domain) {
		violations = append(violations, fmt.Sprintf("domain %q is not a valid DNS name", spec.Domain))
	}

	seen := make(map[string]int)
	for i, reg := range spec.Registrations {
		if reg.Service == "" {
			violations = append(violations, fmt.Sprintf("registration %d: service is required", i+1))
		}
		label := strings.ToLower(reg.DNS)
		if !validName(label) {
			violations = append(violations, fmt.Sprintf("registration %d: dns %q is not a valid DNS label", i+1, reg.DNS))
			continue
		}
		if first, dup := seen[label]; dup {
			violations = append(violations, fmt.Sprintf("registration %d: dns %q already used by registration %d", i+1, reg.DNS, first))
			continue
		}
		seen[label] = i + 1
	}

	return invalid(b.Kind(), spec.Name, violations)
}

// Materialize implements Builder. The namespace depends on every service it
// registers: a DNS record is only meaningful once its target exists.
func (b *NamespaceBuilder) Materialize(ctx context.Context, topo *topology.Topology, spec *config.NamespaceSpec) error {
	ctxlog.FromContext(ctx).Debug("Materializing namespace.", "name", spec.Name, "domain", spec.Domain)

	records := make(map[string]string, len(spec.Registrations))
	for _, reg := range spec.Registrations {
		target, ok := topo.Node(reg.Service)
		if !ok {
			return fmt.Errorf("namespace %q registration: %w: %q", spec.Name, topology.ErrUnknownNode, reg.Service)
		}
		if target.Kind() != topology.KindService {
			return &InvalidConfigError{
				Kind: b.Kind(), Name: spec.Name,
				Violations: []string{fmt.Sprintf("registration target %q is a %s, not a service", reg.Service, target.Kind())},
			}
		}
		records[strings.ToLower(reg.DNS)] = reg.Service
	}
	if len(records) == 0 {
		records = nil
	}

	_, err := topo.AddNode(spec.Name, topology.KindNamespace, &topology.NamespacePayload{
		Domain:  spec.Domain,
		Records: records,
	})
	if err != nil {
		return err
	}

	for _, reg := range spec.Registrations {
		if err := topo.AddDependency(spec.Name, reg.Service); err != nil {
			return fmt.Errorf("namespace %q registration: %w", spec.Name, err)
		}
	}
	return nil
}

// validDomain reports whether every dot-separated label of s is a valid DNS
// label.
func validDomain(s string) bool {
	labels := strings.Split(strings.ToLower(s), ".")
	for _, label := range labels {
		if !validName(label) {
			return false
		}
	}
	return true
}

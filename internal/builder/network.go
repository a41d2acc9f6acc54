package builder

import (
	"context"
	"fmt"
	"net"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/topology"
)

// NetworkBuilder builds network nodes.
type NetworkBuilder struct{}

// NewNetworkBuilder returns a builder for network declarations.
func NewNetworkBuilder() *NetworkBuilder { return &NetworkBuilder{} }

// Kind implements Builder.
func (*NetworkBuilder) Kind() topology.Kind { return topology.KindNetwork }

// Validate implements Builder.
func (b *NetworkBuilder) Validate(spec *config.NetworkSpec) error {
	var violations []string
	violations = checkName(violations, spec.Name)

	if spec.CIDR == "" {
		violations = append(violations, "cidr is required")
	} else if _, _, err := net.ParseCIDR(spec.CIDR); err != nil {
		violations = append(violations, fmt.Sprintf("cidr %q is not a valid CIDR block", spec.CIDR))
	}

	return invalid(b.Kind(), spec.Name, violations)
}

// Materialize implements Builder.
func (b *NetworkBuilder) Materialize(ctx context.Context, topo *topology.Topology, spec *config.NetworkSpec) error {
	ctxlog.FromContext(ctx).Debug("Materializing network.", "name", spec.Name)

	_, err := topo.AddNode(spec.Name, topology.KindNetwork, &topology.NetworkPayload{
		CIDR: spec.CIDR,
		Zone: spec.Zone,
	})
	return err
}

package builder

import (
	"context"
	"fmt"
	"math"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/topology"
)

// AutoscalerBuilder builds autoscaler nodes.
type AutoscalerBuilder struct{}

// NewAutoscalerBuilder returns a builder for autoscaler declarations.
func NewAutoscalerBuilder() *AutoscalerBuilder { return &AutoscalerBuilder{} }

// Kind implements Builder.
func (*AutoscalerBuilder) Kind() topology.Kind { return topology.KindAutoscaler }

// Validate implements Builder. Step bounds are inclusive and a missing bound
// leaves that side of the range open, so two steps overlap whenever the
// larger of their lower bounds does not exceed the smaller of their upper
// bounds. Steps sharing a boundary value therefore overlap too.
func (b *AutoscalerBuilder) Validate(spec *config.AutoscalerSpec) error {
	var violations []string
	violations = checkName(violations, spec.Name)

	if spec.Service == "" {
		violations = append(violations, "service is required")
	}
	if spec.MinReplicas < 1 {
		violations = append(violations, fmt.Sprintf("min_replicas must be at least 1, got %d", spec.MinReplicas))
	}
	if spec.MaxReplicas < spec.MinReplicas {
		violations = append(violations, fmt.Sprintf("max_replicas %d must not be below min_replicas %d", spec.MaxReplicas, spec.MinReplicas))
	}

	if len(spec.Steps) == 0 {
		violations = append(violations, "at least one step is required")
	}
	for i, step := range spec.Steps {
		if step.LowerBound == nil && step.UpperBound == nil {
			violations = append(violations, fmt.Sprintf("step %d: at least one bound is required", i+1))
		}
		if step.LowerBound != nil && step.UpperBound != nil && *step.LowerBound > *step.UpperBound {
			violations = append(violations, fmt.Sprintf("step %d: lower_bound %v exceeds upper_bound %v", i+1, *step.LowerBound, *step.UpperBound))
		}
		if step.Delta == 0 {
			violations = append(violations, fmt.Sprintf("step %d: delta must not be zero", i+1))
		}
	}
	for i := 0; i < len(spec.Steps); i++ {
		for j := i + 1; j < len(spec.Steps); j++ {
			if stepsOverlap(spec.Steps[i], spec.Steps[j]) {
				violations = append(violations, fmt.Sprintf("steps %d and %d cover overlapping metric ranges", i+1, j+1))
			}
		}
	}

	return invalid(b.Kind(), spec.Name, violations)
}

// stepsOverlap reports whether two steps' metric ranges intersect.
func stepsOverlap(a, b *config.StepSpec) bool {
	lower := math.Inf(-1)
	if a.LowerBound != nil {
		lower = *a.LowerBound
	}
	if b.LowerBound != nil && *b.LowerBound > lower {
		lower = *b.LowerBound
	}

	upper := math.Inf(1)
	if a.UpperBound != nil {
		upper = *a.UpperBound
	}
	if b.UpperBound != nil && *b.UpperBound < upper {
		upper = *b.UpperBound
	}

	return lower <= upper
}

// Materialize implements Builder.
func (b *AutoscalerBuilder) Materialize(ctx context.Context, topo *topology.Topology, spec *config.AutoscalerSpec) error {
	ctxlog.FromContext(ctx).Debug("Materializing autoscaler.", "name", spec.Name, "service", spec.Service)

	target, ok := topo.Node(spec.Service)
	if !ok {
		return fmt.Errorf("autoscaler %q: %w: %q", spec.Name, topology.ErrUnknownNode, spec.Service)
	}
	if target.Kind() != topology.KindService {
		return &InvalidConfigError{
			Kind: b.Kind(), Name: spec.Name,
			Violations: []string{fmt.Sprintf("target %q is a %s, not a service", spec.Service, target.Kind())},
		}
	}

	steps := make([]topology.ScalingStep, len(spec.Steps))
	for i, step := range spec.Steps {
		steps[i] = topology.ScalingStep{
			LowerBound: copyBound(step.LowerBound),
			UpperBound: copyBound(step.UpperBound),
			Delta:      step.Delta,
		}
	}

	_, err := topo.AddNode(spec.Name, topology.KindAutoscaler, &topology.AutoscalerPayload{
		Service:     spec.Service,
		MinReplicas: spec.MinReplicas,
		MaxReplicas: spec.MaxReplicas,
		Steps:       steps,
	})
	if err != nil {
		return err
	}
	if err := topo.AddDependency(spec.Name, spec.Service); err != nil {
		return fmt.Errorf("autoscaler %q service: %w", spec.Name, err)
	}
	return nil
}

// copyBound clones an optional bound so the payload does not alias the spec.
func copyBound(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/topology"
)

// Emit orders the topology's resources into an executable plan. Resources
// named in existing are emitted as update-dependency operations, everything
// else as create. Ties between simultaneously ready resources break by name
// ascending.
//
// The topology rejects cycles at insertion time, so an unprocessable graph
// here means corruption; Emit still re-checks and reports it rather than
// returning a short plan.
func Emit(ctx context.Context, topo *topology.Topology, existing map[string]struct{}) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	total := topo.Len()
	nodes := make(map[string]*topology.ResourceNode, total)
	indegree := make(map[string]int, total)
	var ready []string
	for node := range topo.Nodes() {
		nodes[node.Name()] = node
		deps := len(node.Dependencies())
		indegree[node.Name()] = deps
		if deps == 0 {
			ready = insertSorted(ready, node.Name())
		}
	}

	ops := make([]Operation, 0, total)
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		node := nodes[name]

		op := OpCreate
		if _, ok := existing[name]; ok {
			op = OpUpdateDependency
		}
		deps := node.Dependencies()
		if len(deps) == 0 {
			deps = nil
		}
		ops = append(ops, Operation{
			Index:     len(ops),
			Name:      name,
			Kind:      node.Kind(),
			Op:        op,
			DependsOn: deps,
			Config:    node.Payload(),
		})

		for _, dependent := range node.Dependents() {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = insertSorted(ready, dependent)
			}
		}
	}

	if len(ops) != total {
		var stuck []string
		for name, deps := range indegree {
			if deps > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: unprocessable resources: %s",
			topology.ErrCycleDetected, strings.Join(stuck, ", "))
	}

	if err := verifyOrder(ops); err != nil {
		return nil, err
	}

	logger.Debug("Plan emitted.", "operations", len(ops))
	return &Plan{FormatVersion: FormatVersion, Operations: ops}, nil
}

// verifyOrder confirms every dependency lands at a smaller index than its
// dependents. A failure is a bug in the emitter, not in the input.
func verifyOrder(ops []Operation) error {
	index := make(map[string]int, len(ops))
	for _, op := range ops {
		index[op.Name] = op.Index
	}
	for _, op := range ops {
		for _, dep := range op.DependsOn {
			at, ok := index[dep]
			if !ok {
				return fmt.Errorf("internal: operation %q depends on %q which is not in the plan", op.Name, dep)
			}
			if at >= op.Index {
				return fmt.Errorf("internal: operation %q at index %d precedes its dependency %q at index %d",
					op.Name, op.Index, dep, at)
			}
		}
	}
	return nil
}

// insertSorted places v into s keeping s sorted ascending.
func insertSorted(s []string, v string) []string {
	i := sort.SearchStrings(s, v)
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

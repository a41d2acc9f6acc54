// Package sim provides an in-memory provisioning backend. It assigns
// generated IDs instead of talking to a cloud, which makes it the default
// for dry runs and the workhorse of the test suite.
//
// The simulator is deliberately strict: it refuses any operation whose
// dependencies have not been provisioned first, so a mis-ordered plan
// fails loudly instead of appearing to work.
package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/weftlabs/weft/internal/backend"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/plan"
	"github.com/weftlabs/weft/internal/topology"
)

// Resource is one provisioned entry of the simulated world.
type Resource struct {
	ID        string
	Kind      topology.Kind
	DependsOn []string
}

// Backend implements backend.Backend against an in-memory world.
type Backend struct {
	mutex  sync.Mutex
	world  map[string]Resource
	failOn map[string]error
}

// New returns a simulator with an empty world.
func New() *Backend {
	return &Backend{
		world:  make(map[string]Resource),
		failOn: make(map[string]error),
	}
}

// Name implements backend.Backend.
func (b *Backend) Name() string {
	return "sim"
}

// FailOn makes the next Apply fail when it reaches the named resource.
func (b *Backend) FailOn(name string, err error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.failOn[name] = err
}

// Seed inserts a resource into the world as if a previous run had
// provisioned it, and returns its generated ID.
func (b *Backend) Seed(name string, kind topology.Kind) string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	res := Resource{ID: uuid.NewString(), Kind: kind}
	b.world[name] = res
	return res.ID
}

// Resource looks up a provisioned resource by name.
func (b *Backend) Resource(name string) (Resource, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	res, ok := b.world[name]
	return res, ok
}

// Len reports how many resources the world holds.
func (b *Backend) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.world)
}

// Apply implements backend.Backend.
func (b *Backend) Apply(ctx context.Context, ops []plan.Operation) ([]backend.OperationResult, error) {
	logger := ctxlog.FromContext(ctx)
	b.mutex.Lock()
	defer b.mutex.Unlock()

	results := make([]backend.OperationResult, 0, len(ops))
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("apply interrupted: %w", err)
		}

		logger.Debug("Provisioning operation.", "index", op.Index, "name", op.Name, "op", op.Op)
		if err := b.provision(op); err != nil {
			results = append(results, backend.OperationResult{Index: op.Index, Err: err})
			return results, &backend.Error{Index: op.Index, Name: op.Name, Err: err}
		}
		results = append(results, backend.OperationResult{Index: op.Index, ID: b.world[op.Name].ID})
	}
	return results, nil
}

func (b *Backend) provision(op plan.Operation) error {
	for _, dep := range op.DependsOn {
		if _, ok := b.world[dep]; !ok {
			return fmt.Errorf("dependency %q of %q is not provisioned", dep, op.Name)
		}
	}
	if err := b.failOn[op.Name]; err != nil {
		return err
	}

	switch op.Op {
	case plan.OpCreate:
		if _, ok := b.world[op.Name]; ok {
			return fmt.Errorf("resource %q already exists", op.Name)
		}
		b.world[op.Name] = Resource{
			ID:        uuid.NewString(),
			Kind:      op.Kind,
			DependsOn: op.DependsOn,
		}
	case plan.OpUpdateDependency:
		res, ok := b.world[op.Name]
		if !ok {
			// State claimed the resource exists but the world disagrees;
			// provision it instead of failing the whole run.
			res = Resource{ID: uuid.NewString(), Kind: op.Kind}
		}
		res.DependsOn = op.DependsOn
		b.world[op.Name] = res
	default:
		return fmt.Errorf("unsupported operation type %q", op.Op)
	}
	return nil
}

// Package hcloud provisions topologies on Hetzner Cloud. Networks map to
// hcloud networks, caches to labeled servers sized by their declared
// capacity, and services to load balancers attached to the service's
// network. Namespaces and autoscalers have no hcloud counterpart; they
// succeed with synthetic IDs so the plan's bookkeeping stays complete.
package hcloud

import (
	"context"
	"fmt"
	"time"

	"github.com/weftlabs/weft/internal/backend"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/plan"
	"github.com/weftlabs/weft/internal/retry"
	"github.com/weftlabs/weft/internal/topology"
)

// Label keys attached to every managed resource.
const (
	labelManagedBy = "weft.io/managed-by"
	labelKind      = "weft.io/kind"
	labelEngine    = "weft.io/engine"
)

// Backend implements backend.Backend against the Hetzner Cloud API.
type Backend struct {
	api       api
	retryOpts []retry.Option
}

// New returns a backend authenticated with the given API token.
func New(token string) *Backend {
	return &Backend{
		api: newRealAPI(token),
		retryOpts: []retry.Option{
			retry.WithMaxRetries(4),
			retry.WithInitialDelay(2 * time.Second),
		},
	}
}

func newWithAPI(a api, opts ...retry.Option) *Backend {
	return &Backend{api: a, retryOpts: opts}
}

// Name implements backend.Backend.
func (b *Backend) Name() string {
	return "hcloud"
}

// Apply implements backend.Backend.
func (b *Backend) Apply(ctx context.Context, ops []plan.Operation) ([]backend.OperationResult, error) {
	logger := ctxlog.FromContext(ctx)

	results := make([]backend.OperationResult, 0, len(ops))
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("apply interrupted: %w", err)
		}

		id, err := b.provision(ctx, op)
		if err != nil {
			results = append(results, backend.OperationResult{Index: op.Index, Err: err})
			return results, &backend.Error{Index: op.Index, Name: op.Name, Err: err}
		}
		logger.Info("Provisioned resource.", "name", op.Name, "kind", op.Kind, "id", id)
		results = append(results, backend.OperationResult{Index: op.Index, ID: id})
	}
	return results, nil
}

func (b *Backend) provision(ctx context.Context, op plan.Operation) (string, error) {
	switch payload := op.Config.(type) {
	case *topology.NetworkPayload:
		return b.ensure(ctx, func() (string, error) {
			return b.api.EnsureNetwork(ctx, op.Name, payload.CIDR, payload.Zone, b.labels(op, nil))
		})
	case *topology.CachePayload:
		extra := map[string]string{labelEngine: payload.Engine}
		return b.ensure(ctx, func() (string, error) {
			return b.api.EnsureServer(ctx, op.Name, serverTypeFor(payload.CapacityGB), payload.Network, b.labels(op, extra))
		})
	case *topology.ServicePayload:
		return b.ensure(ctx, func() (string, error) {
			return b.api.EnsureLoadBalancer(ctx, op.Name, payload.Network, payload.Port, b.labels(op, nil))
		})
	case *topology.NamespacePayload, *topology.AutoscalerPayload:
		// Nothing to create on hcloud; the plan itself is the artifact.
		return "unmanaged:" + op.Name, nil
	default:
		return "", fmt.Errorf("unsupported resource kind %q", op.Kind)
	}
}

// ensure runs one idempotent provisioning call, retrying transient API
// failures and giving up immediately on parameter errors.
func (b *Backend) ensure(ctx context.Context, call func() (string, error)) (string, error) {
	var id string
	err := retry.Do(ctx, func() error {
		got, err := call()
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		id = got
		return nil
	}, b.retryOpts...)
	return id, err
}

func (b *Backend) labels(op plan.Operation, extra map[string]string) map[string]string {
	labels := map[string]string{
		labelManagedBy: "weft",
		labelKind:      string(op.Kind),
	}
	for k, v := range extra {
		labels[k] = v
	}
	return labels
}

// serverTypeFor picks the server tier for a cache by its capacity.
func serverTypeFor(capacityGB int) string {
	switch {
	case capacityGB <= 2:
		return "cx22"
	case capacityGB <= 8:
		return "cx32"
	default:
		return "cx42"
	}
}

package apply

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/backend"
	"github.com/weftlabs/weft/internal/backend/sim"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/plan"
	"github.com/weftlabs/weft/internal/state"
	"github.com/weftlabs/weft/internal/topology"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))
}

func chainPlan(t *testing.T) *plan.Plan {
	t.Helper()
	topo := topology.New()
	_, err := topo.AddNode("core", topology.KindNetwork, &topology.NetworkPayload{CIDR: "10.0.0.0/16", Zone: "eu-central"})
	require.NoError(t, err)
	_, err = topo.AddNode("sessions", topology.KindCache, &topology.CachePayload{Network: "core", Engine: "redis", CapacityGB: 2, Port: 6379})
	require.NoError(t, err)
	_, err = topo.AddNode("api", topology.KindService, &topology.ServicePayload{Network: "core", Image: "registry.local/api:1", Port: 8080, Replicas: 1})
	require.NoError(t, err)
	// An unrelated network that happens to sort after the cache.
	_, err = topo.AddNode("solo", topology.KindNetwork, &topology.NetworkPayload{CIDR: "10.1.0.0/16", Zone: "eu-central"})
	require.NoError(t, err)

	require.NoError(t, topo.AddDependency("sessions", "core"))
	require.NoError(t, topo.AddDependency("api", "core"))
	require.NoError(t, topo.AddDependency("api", "sessions"))

	p, err := plan.Emit(testContext(t), topo, nil)
	require.NoError(t, err)
	return p
}

func TestRun(t *testing.T) {
	t.Run("clean run applies everything", func(t *testing.T) {
		b := sim.New()
		report, next, err := NewRunner(b).Run(testContext(t), chainPlan(t), nil)
		require.NoError(t, err)

		assert.Equal(t, "sim", report.Backend)
		assert.Equal(t, 4, report.Applied)
		assert.Zero(t, report.Failed)
		assert.Zero(t, report.Skipped)

		require.Len(t, next.Resources, 4)
		for name, entry := range next.Resources {
			assert.Equal(t, state.StatusApplied, entry.Status, name)
			assert.NotEmpty(t, entry.ID, name)
		}
		assert.WithinDuration(t, time.Now().UTC(), next.UpdatedAt, time.Minute)
		assert.Equal(t, []string{"core", "sessions"}, next.Resources["api"].DependsOn)
	})

	t.Run("failure taints downstream operations only", func(t *testing.T) {
		b := sim.New()
		b.FailOn("sessions", errors.New("capacity exhausted"))

		report, next, err := NewRunner(b).Run(testContext(t), chainPlan(t), nil)
		require.Error(t, err)

		backendErr, ok := backend.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "sessions", backendErr.Name)

		// Plan order: core, sessions, api, solo.
		assert.Equal(t, 1, report.Applied)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, 2, report.Skipped)

		rows := map[string]Row{}
		for _, row := range report.Rows {
			rows[row.Name] = row
		}
		assert.Equal(t, state.StatusApplied, rows["core"].Status)
		assert.Equal(t, state.StatusFailed, rows["sessions"].Status)
		assert.Contains(t, rows["sessions"].Detail, "capacity exhausted")

		assert.Equal(t, state.StatusSkipped, rows["api"].Status)
		assert.Equal(t, "skipped due to upstream failure of 'sessions'", rows["api"].Detail)

		assert.Equal(t, state.StatusSkipped, rows["solo"].Status)
		assert.Equal(t, "not attempted, apply stopped at 'sessions'", rows["solo"].Detail)

		assert.Equal(t, state.StatusFailed, next.Resources["sessions"].Status)
		assert.Equal(t, "capacity exhausted", next.Resources["sessions"].Error)
		assert.Equal(t, state.StatusSkipped, next.Resources["api"].Status)
	})

	t.Run("skipped resources keep their prior applied entry", func(t *testing.T) {
		b := sim.New()
		b.FailOn("core", errors.New("quota"))

		prior := state.New("sim")
		prior.Resources["api"] = state.Entry{
			Kind:   topology.KindService,
			ID:     "lb-1",
			Status: state.StatusApplied,
		}

		p := &plan.Plan{FormatVersion: plan.FormatVersion, Operations: []plan.Operation{
			{Index: 0, Name: "core", Kind: topology.KindNetwork, Op: plan.OpCreate,
				Config: &topology.NetworkPayload{CIDR: "10.0.0.0/16", Zone: "eu-central"}},
			{Index: 1, Name: "api", Kind: topology.KindService, Op: plan.OpUpdateDependency, DependsOn: []string{"core"},
				Config: &topology.ServicePayload{Network: "core", Image: "registry.local/api:1", Port: 8080, Replicas: 1}},
		}}

		report, next, err := NewRunner(b).Run(testContext(t), p, prior)
		require.Error(t, err)
		assert.Equal(t, state.StatusSkipped, report.Rows[1].Status)

		entry := next.Resources["api"]
		assert.Equal(t, state.StatusApplied, entry.Status, "the world still holds the resource")
		assert.Equal(t, "lb-1", entry.ID)
	})

	t.Run("failed update keeps the prior backend ID", func(t *testing.T) {
		b := sim.New()
		id := b.Seed("core", topology.KindNetwork)
		b.FailOn("core", errors.New("api unreachable"))

		prior := state.New("sim")
		prior.Resources["core"] = state.Entry{Kind: topology.KindNetwork, ID: id, Status: state.StatusApplied}

		p := &plan.Plan{FormatVersion: plan.FormatVersion, Operations: []plan.Operation{
			{Index: 0, Name: "core", Kind: topology.KindNetwork, Op: plan.OpUpdateDependency,
				Config: &topology.NetworkPayload{CIDR: "10.0.0.0/16", Zone: "eu-central"}},
		}}

		_, next, err := NewRunner(b).Run(testContext(t), p, prior)
		require.Error(t, err)

		entry := next.Resources["core"]
		assert.Equal(t, state.StatusFailed, entry.Status)
		assert.Equal(t, id, entry.ID)
		assert.Equal(t, "api unreachable", entry.Error)
	})

	t.Run("resources dropped from the document leave the state", func(t *testing.T) {
		b := sim.New()
		prior := state.New("sim")
		prior.Resources["retired"] = state.Entry{Kind: topology.KindNetwork, ID: "net-9", Status: state.StatusApplied}

		p := &plan.Plan{FormatVersion: plan.FormatVersion, Operations: []plan.Operation{
			{Index: 0, Name: "core", Kind: topology.KindNetwork, Op: plan.OpCreate,
				Config: &topology.NetworkPayload{CIDR: "10.0.0.0/16", Zone: "eu-central"}},
		}}

		_, next, err := NewRunner(b).Run(testContext(t), p, prior)
		require.NoError(t, err)
		assert.NotContains(t, next.Resources, "retired")
	})
}

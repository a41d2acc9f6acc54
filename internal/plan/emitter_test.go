package plan

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/topology"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))
}

func addNetwork(t *testing.T, topo *topology.Topology, name string) {
	t.Helper()
	_, err := topo.AddNode(name, topology.KindNetwork, &topology.NetworkPayload{CIDR: "10.0.0.0/16", Zone: "eu-central"})
	require.NoError(t, err)
}

func link(t *testing.T, topo *topology.Topology, from, to string) {
	t.Helper()
	require.NoError(t, topo.AddDependency(from, to))
}

func names(p *Plan) []string {
	out := make([]string, len(p.Operations))
	for i, op := range p.Operations {
		out[i] = op.Name
	}
	return out
}

func TestEmit(t *testing.T) {
	t.Run("dependencies precede dependents", func(t *testing.T) {
		topo := topology.New()
		addNetwork(t, topo, "c")
		addNetwork(t, topo, "a")
		addNetwork(t, topo, "b")
		link(t, topo, "c", "a")
		link(t, topo, "c", "b")
		link(t, topo, "b", "a")

		p, err := Emit(testContext(t), topo, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c"}, names(p))
		assert.Equal(t, FormatVersion, p.FormatVersion)
		for i, op := range p.Operations {
			assert.Equal(t, i, op.Index)
			assert.Equal(t, OpCreate, op.Op)
		}
	})

	t.Run("ties break by name ascending", func(t *testing.T) {
		topo := topology.New()
		// Declared in reverse so insertion order cannot mask the tie-break.
		for _, name := range []string{"zeta", "mike", "echo", "alpha"} {
			addNetwork(t, topo, name)
		}

		p, err := Emit(testContext(t), topo, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "echo", "mike", "zeta"}, names(p))
	})

	t.Run("diamond releases branches in name order", func(t *testing.T) {
		topo := topology.New()
		for _, name := range []string{"root", "right", "left", "sink"} {
			addNetwork(t, topo, name)
		}
		link(t, topo, "right", "root")
		link(t, topo, "left", "root")
		link(t, topo, "sink", "right")
		link(t, topo, "sink", "left")

		p, err := Emit(testContext(t), topo, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "left", "right", "sink"}, names(p))
	})

	t.Run("known resources become update-dependency", func(t *testing.T) {
		topo := topology.New()
		addNetwork(t, topo, "core")
		addNetwork(t, topo, "edge")
		link(t, topo, "edge", "core")

		existing := map[string]struct{}{"core": {}}
		p, err := Emit(testContext(t), topo, existing)
		require.NoError(t, err)

		assert.Equal(t, OpUpdateDependency, p.Operations[0].Op)
		assert.Equal(t, "core", p.Operations[0].Name)
		assert.Equal(t, OpCreate, p.Operations[1].Op)
	})

	t.Run("empty topology yields empty plan", func(t *testing.T) {
		p, err := Emit(testContext(t), topology.New(), nil)
		require.NoError(t, err)
		assert.Empty(t, p.Operations)
		assert.Equal(t, FormatVersion, p.FormatVersion)
	})

	t.Run("operations carry dependency lists", func(t *testing.T) {
		topo := topology.New()
		addNetwork(t, topo, "core")
		_, err := topo.AddNode("sessions", topology.KindCache, &topology.CachePayload{
			Network: "core", Engine: "redis", CapacityGB: 2, Port: 6379,
		})
		require.NoError(t, err)
		link(t, topo, "sessions", "core")

		p, err := Emit(testContext(t), topo, nil)
		require.NoError(t, err)

		require.Len(t, p.Operations, 2)
		assert.Nil(t, p.Operations[0].DependsOn)
		assert.Equal(t, []string{"core"}, p.Operations[1].DependsOn)
		assert.Equal(t, topology.KindCache, p.Operations[1].Kind)
	})
}

func TestVerifyOrder(t *testing.T) {
	ops := []Operation{
		{Index: 0, Name: "late", DependsOn: []string{"early"}},
		{Index: 1, Name: "early"},
	}
	err := verifyOrder(ops)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precedes its dependency")

	require.NoError(t, verifyOrder([]Operation{
		{Index: 0, Name: "early"},
		{Index: 1, Name: "late", DependsOn: []string{"early"}},
	}))
}

func TestPlanRoundTrip(t *testing.T) {
	topo := topology.New()
	addNetwork(t, topo, "core")
	_, err := topo.AddNode("sessions", topology.KindCache, &topology.CachePayload{
		Network: "core", Engine: "redis", CapacityGB: 4, Port: 6379,
	})
	require.NoError(t, err)
	_, err = topo.AddNode("api", topology.KindService, &topology.ServicePayload{
		Network: "core", Image: "registry.local/api:1.2", Port: 8080, Replicas: 2,
		Cache: "sessions", Env: map[string]string{"CACHE_URL": "redis://sessions:6379"},
	})
	require.NoError(t, err)
	link(t, topo, "sessions", "core")
	link(t, topo, "api", "core")
	link(t, topo, "api", "sessions")

	p, err := Emit(testContext(t), topo, map[string]struct{}{"core": {}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	decoded, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, p, decoded)

	// Payloads come back as their concrete types.
	svc, ok := decoded.Operations[2].Config.(*topology.ServicePayload)
	require.True(t, ok)
	assert.Equal(t, "redis://sessions:6379", svc.Env["CACHE_URL"])

	// Encoding is deterministic.
	var again bytes.Buffer
	require.NoError(t, p.Encode(&again))
	assert.Equal(t, buf.String(), again.String())
}

func TestDecode(t *testing.T) {
	t.Run("rejects unknown format version", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"format_version": 99, "operations": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported plan format version 99")
	})

	t.Run("rejects unknown resource kind", func(t *testing.T) {
		doc := `{
			"format_version": 1,
			"operations": [
				{"index": 0, "name": "data", "kind": "volume", "op": "create", "config": {}}
			]
		}`
		_, err := Decode(strings.NewReader(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown resource kind "volume"`)
	})

	t.Run("rejects missing config", func(t *testing.T) {
		doc := `{
			"format_version": 1,
			"operations": [
				{"index": 0, "name": "core", "kind": "network", "op": "create"}
			]
		}`
		_, err := Decode(strings.NewReader(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no config payload")
	})
}

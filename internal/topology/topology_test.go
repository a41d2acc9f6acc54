package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTestNode(t *testing.T, topo *Topology, name string) *ResourceNode {
	t.Helper()
	n, err := topo.AddNode(name, KindNetwork, &NetworkPayload{CIDR: "10.0.0.0/16"})
	require.NoError(t, err)
	return n
}

func TestNew(t *testing.T) {
	topo := New()
	require.NotNil(t, topo)
	assert.Zero(t, topo.Len())
}

func TestAddNode(t *testing.T) {
	t.Run("registers node under its name", func(t *testing.T) {
		topo := New()
		n, err := topo.AddNode("core", KindNetwork, &NetworkPayload{CIDR: "10.0.0.0/16"})
		require.NoError(t, err)
		assert.Equal(t, "core", n.Name())
		assert.Equal(t, KindNetwork, n.Kind())

		got, ok := topo.Node("core")
		require.True(t, ok)
		assert.Same(t, n, got)
	})

	t.Run("duplicate name fails even across kinds", func(t *testing.T) {
		topo := New()
		addTestNode(t, topo, "core")

		_, err := topo.AddNode("core", KindCache, &CachePayload{Network: "core"})
		require.ErrorIs(t, err, ErrDuplicateName)
		assert.Equal(t, 1, topo.Len())

		// The survivor is the original node.
		got, ok := topo.Node("core")
		require.True(t, ok)
		assert.Equal(t, KindNetwork, got.Kind())
	})

	t.Run("payload kind must match node kind", func(t *testing.T) {
		topo := New()
		_, err := topo.AddNode("core", KindCache, &NetworkPayload{})
		require.Error(t, err)
		assert.Zero(t, topo.Len())
	})

	t.Run("nil payload rejected", func(t *testing.T) {
		topo := New()
		_, err := topo.AddNode("core", KindNetwork, nil)
		require.Error(t, err)
	})
}

func TestAddDependency(t *testing.T) {
	t.Run("links both directions", func(t *testing.T) {
		topo := New()
		addTestNode(t, topo, "core")
		addTestNode(t, topo, "api")

		require.NoError(t, topo.AddDependency("api", "core"))

		api, _ := topo.Node("api")
		core, _ := topo.Node("core")
		assert.Equal(t, []string{"core"}, api.Dependencies())
		assert.Equal(t, []string{"api"}, core.Dependents())
		assert.True(t, api.DependsOn("core"))
		assert.False(t, core.DependsOn("api"))
	})

	t.Run("unknown endpoints", func(t *testing.T) {
		topo := New()
		addTestNode(t, topo, "core")

		assert.ErrorIs(t, topo.AddDependency("missing", "core"), ErrUnknownNode)
		assert.ErrorIs(t, topo.AddDependency("core", "missing"), ErrUnknownNode)
	})

	t.Run("self dependency is a cycle", func(t *testing.T) {
		topo := New()
		addTestNode(t, topo, "core")

		err := topo.AddDependency("core", "core")
		require.ErrorIs(t, err, ErrCycleDetected)
	})

	t.Run("closing edge of a chain is rejected", func(t *testing.T) {
		topo := New()
		addTestNode(t, topo, "a")
		addTestNode(t, topo, "b")
		addTestNode(t, topo, "c")
		require.NoError(t, topo.AddDependency("b", "a"))
		require.NoError(t, topo.AddDependency("c", "b"))

		err := topo.AddDependency("a", "c")
		require.ErrorIs(t, err, ErrCycleDetected)

		ce, ok := AsCycleError(err)
		require.True(t, ok)
		assert.Equal(t, "a", ce.From)
		assert.Equal(t, "c", ce.To)
		assert.Equal(t, []string{"c", "b", "a"}, ce.Path)

		// The rejected edge must not have been recorded.
		a, _ := topo.Node("a")
		assert.Empty(t, a.Dependencies())
	})

	t.Run("re-adding an edge is a no-op", func(t *testing.T) {
		topo := New()
		addTestNode(t, topo, "core")
		addTestNode(t, topo, "api")
		require.NoError(t, topo.AddDependency("api", "core"))
		require.NoError(t, topo.AddDependency("api", "core"))

		api, _ := topo.Node("api")
		assert.Equal(t, []string{"core"}, api.Dependencies())
		core, _ := topo.Node("core")
		assert.Equal(t, []string{"api"}, core.Dependents())
	})

	t.Run("diamond does not trip the cycle check", func(t *testing.T) {
		topo := New()
		for _, name := range []string{"base", "left", "right", "top"} {
			addTestNode(t, topo, name)
		}
		require.NoError(t, topo.AddDependency("left", "base"))
		require.NoError(t, topo.AddDependency("right", "base"))
		require.NoError(t, topo.AddDependency("top", "left"))
		require.NoError(t, topo.AddDependency("top", "right"))
	})
}

func TestNodesIterator(t *testing.T) {
	topo := New()
	names := []string{"delta", "alpha", "charlie", "bravo"}
	for _, name := range names {
		addTestNode(t, topo, name)
	}

	collect := func() []string {
		var got []string
		for n := range topo.Nodes() {
			got = append(got, n.Name())
		}
		return got
	}

	t.Run("yields insertion order, not lexical order", func(t *testing.T) {
		assert.Equal(t, names, collect())
	})

	t.Run("restartable", func(t *testing.T) {
		assert.Equal(t, collect(), collect())
	})

	t.Run("early break stops the walk", func(t *testing.T) {
		var got []string
		for n := range topo.Nodes() {
			got = append(got, n.Name())
			if len(got) == 2 {
				break
			}
		}
		assert.Equal(t, names[:2], got)
	})
}

func TestCycleErrorMessage(t *testing.T) {
	err := &CycleError{From: "a", To: "c", Path: []string{"c", "b", "a"}}
	assert.Equal(t, "dependency cycle detected: a -> c -> b -> a", err.Error())
}

func TestNewPayload(t *testing.T) {
	for _, kind := range []Kind{KindNetwork, KindCache, KindService, KindNamespace, KindAutoscaler} {
		t.Run(string(kind), func(t *testing.T) {
			p, err := NewPayload(kind)
			require.NoError(t, err)
			assert.Equal(t, kind, p.PayloadKind())
		})
	}

	_, err := NewPayload(Kind("volume"))
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("unknown resource kind %q", "volume"), err.Error())
}

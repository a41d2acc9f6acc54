package topology

import (
	"fmt"
	"iter"
	"sync"
)

// Topology is the collection of resource nodes and their dependency edges.
// All operations on it are concurrency-safe.
type Topology struct {
	// mutex protects nodes and order during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes keyed by logical name. Names are unique
	// across kinds, so one map covers the whole graph.
	nodes map[string]*ResourceNode
	// order remembers insertion order for deterministic traversal.
	order []string
}

// New creates and returns an initialized, empty Topology.
func New() *Topology {
	return &Topology{
		nodes: make(map[string]*ResourceNode),
	}
}

// AddNode adds a new node under the given logical name. It fails with
// ErrDuplicateName if the name is already taken by any kind, leaving the
// topology untouched. The payload's kind must match kind; a mismatch is a
// caller bug and is reported as a plain error.
func (t *Topology) AddNode(name string, kind Kind, payload Payload) (*ResourceNode, error) {
	if payload == nil {
		return nil, fmt.Errorf("node %q: nil payload", name)
	}
	if payload.PayloadKind() != kind {
		return nil, fmt.Errorf("node %q: payload kind %q does not match node kind %q", name, payload.PayloadKind(), kind)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if existing, ok := t.nodes[name]; ok {
		return nil, fmt.Errorf("%w: %q already declared as %s", ErrDuplicateName, name, existing.kind)
	}

	n := &ResourceNode{
		name:    name,
		kind:    kind,
		payload: payload,
		depSet:  make(map[string]struct{}),
	}
	t.nodes[name] = n
	t.order = append(t.order, name)
	return n, nil
}

// AddDependency records that node `from` depends on node `to`. It fails with
// ErrUnknownNode if either endpoint is absent, and with a CycleError
// (matching ErrCycleDetected) if the edge would make the graph cyclic,
// including the self-referential case. Re-adding an existing edge is a
// no-op.
func (t *Topology) AddDependency(from, to string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	fromNode, ok := t.nodes[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, from)
	}
	toNode, ok := t.nodes[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, to)
	}

	if from == to {
		return &CycleError{From: from, To: to, Path: []string{to}}
	}
	if _, ok := fromNode.depSet[to]; ok {
		return nil
	}

	// The graph is acyclic before this call, so the new edge closes a
	// cycle exactly when `from` is already reachable from `to` along
	// existing dependency edges.
	if path := t.pathBetween(toNode, from); path != nil {
		return &CycleError{From: from, To: to, Path: path}
	}

	fromNode.deps = append(fromNode.deps, to)
	fromNode.depSet[to] = struct{}{}
	toNode.dependents = append(toNode.dependents, from)
	return nil
}

// pathBetween walks dependency edges depth-first from start and returns the
// node names visited on the way to target, inclusive on both ends. It
// returns nil when target is unreachable. Callers must hold the mutex.
func (t *Topology) pathBetween(start *ResourceNode, target string) []string {
	visited := make(map[string]struct{})

	var walk func(n *ResourceNode) []string
	walk = func(n *ResourceNode) []string {
		if n.name == target {
			return []string{n.name}
		}
		visited[n.name] = struct{}{}
		for _, dep := range n.deps {
			if _, seen := visited[dep]; seen {
				continue
			}
			if rest := walk(t.nodes[dep]); rest != nil {
				return append([]string{n.name}, rest...)
			}
		}
		return nil
	}

	return walk(start)
}

// Node returns the node registered under name, or false if there is none.
func (t *Topology) Node(name string) (*ResourceNode, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	n, ok := t.nodes[name]
	return n, ok
}

// Len returns the number of nodes in the topology.
func (t *Topology) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.nodes)
}

// Nodes returns an iterator over all nodes in insertion order. The sequence
// is lazy and restartable; each range starts from the beginning. Nodes
// added while iterating are not picked up by an iteration already in
// flight.
func (t *Topology) Nodes() iter.Seq[*ResourceNode] {
	return func(yield func(*ResourceNode) bool) {
		t.mutex.RLock()
		names := make([]string, len(t.order))
		copy(names, t.order)
		t.mutex.RUnlock()

		for _, name := range names {
			t.mutex.RLock()
			n := t.nodes[name]
			t.mutex.RUnlock()
			if !yield(n) {
				return
			}
		}
	}
}

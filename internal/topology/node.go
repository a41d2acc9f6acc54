package topology

// ResourceNode is a single vertex in the topology. Nodes are created through
// Topology.AddNode and never shared between topologies; the struct stays
// unexported-field only so edges cannot be wired up behind the graph's back.
type ResourceNode struct {
	name    string
	kind    Kind
	payload Payload

	// deps holds logical names this node depends on, in the order the
	// edges were added.
	deps   []string
	depSet map[string]struct{}

	// dependents holds the names of nodes that depend on this node. They
	// are back-links for traversal; the dependency edge itself is owned
	// by the depending node.
	dependents []string
}

// Name returns the node's logical name.
func (n *ResourceNode) Name() string { return n.name }

// Kind returns the node's resource kind.
func (n *ResourceNode) Kind() Kind { return n.kind }

// Payload returns the node's configuration payload.
func (n *ResourceNode) Payload() Payload { return n.payload }

// Dependencies returns the logical names this node depends on, in edge
// insertion order. The slice is a copy.
func (n *ResourceNode) Dependencies() []string {
	out := make([]string, len(n.deps))
	copy(out, n.deps)
	return out
}

// Dependents returns the logical names of nodes depending on this node, in
// edge insertion order. The slice is a copy.
func (n *ResourceNode) Dependents() []string {
	out := make([]string, len(n.dependents))
	copy(out, n.dependents)
	return out
}

// DependsOn reports whether the node has a direct dependency on name.
func (n *ResourceNode) DependsOn(name string) bool {
	_, ok := n.depSet[name]
	return ok
}

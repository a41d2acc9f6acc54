// Package topology holds the in-memory resource graph that planning operates
// on.
//
// A Topology maps logical names to resource nodes and records the dependency
// edges between them. Names are unique across all resource kinds, so a cache
// and a service can never share a name; every cross-resource reference in a
// declaration is a bare logical name.
//
// The graph is kept acyclic at all times: AddDependency rejects any edge that
// would close a cycle, checking reachability incrementally rather than
// re-scanning the whole graph. Later stages may still re-verify, but they
// should never find one.
//
// Nodes are owned by the Topology. Once added, a node's payload never
// changes; only dependency edges may be attached afterwards.
package topology

// Package builder turns declaration specs into topology nodes and edges.
//
// There is one builder per resource kind, each with two responsibilities
// kept strictly apart: Validate checks a single spec in isolation and
// reports every violated constraint at once, and Materialize inserts the
// node plus the dependency edges the declaration implies. Materialize never
// touches anything outside the topology.
//
// BuildTopology drives a whole document through three passes. All specs are
// validated before any node is created, so an invalid document never
// produces a half-built topology. Materialization then runs in fixed kind
// phases (networks, caches, services, namespaces, autoscalers) so that
// cross-kind references point at nodes that already exist. Explicit
// depends_on edges are wired last, when every node is present.
package builder

// Package plan produces the ordered provisioning plan from a topology.
//
// Emit runs Kahn's algorithm over the dependency graph. Whenever several
// resources are ready at once, the lexically smallest name goes first, so
// the same topology always yields byte-identical plans. Every operation
// carries its index, the resource's payload snapshot and its dependency
// list; a backend needs nothing but the plan to execute it.
//
// Plans serialize to JSON and back. Payloads are decoded by the operation's
// kind tag, so a plan written by `weft plan --out` replays through
// `weft apply` without consulting the original declarations.
package plan

// Package topo computes a deterministic evaluation order for a causal-loop
// graph.
//
// The order satisfies two guarantees: nodes with no cyclic dependency between
// them appear in a valid dependency order, and nodes that participate
// together in a cycle appear contiguously as one group. The relative order
// inside a group is stable across repeated calls on an unmodified graph but
// is otherwise unspecified; callers must not rely on it beyond stability.
package topo

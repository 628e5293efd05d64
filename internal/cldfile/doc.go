// Package cldfile loads causal-loop diagram documents from CUE files and
// compiles them into executable graphs.
//
// A diagram document is any set of .cue files in one directory that unify
// into a top-level "diagram" struct:
//
//	diagram: {
//		nodes: [{id: "A", kind: "constant", params: {value: 5}}, ...]
//		edges: [{from: "A", to: "B"}, ...]
//		state: {B: {value: 2}}                       // optional
//		strategy: {kind: "multi", iterations: 3}      // optional
//	}
//
// Edge ports default to "out"/"in", matching the reference node kinds.
// Loading is file-level; Compile resolves kinds through a node registry,
// assembles the graph, and runs graph.Validate on the result.
package cldfile

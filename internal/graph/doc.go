// Package graph defines the causal-loop diagram data model: nodes, ports,
// edges, and the insertion-ordered Graph value that owns them.
//
// The model is deliberately arena-shaped: nodes and edges refer to each other
// by string id through maps, never by pointer, so a cyclic dependency
// structure never becomes a cyclic ownership structure. Cycles are data here,
// not a defect.
//
// Graph values are immutable. AddNode and AddEdge return a new Graph and
// never touch their receiver, so a caller can hold on to any intermediate
// graph value and reuse it safely. Structural invariants are checked by one
// explicit Validate call, not continuously; AddEdge in particular performs no
// reference checks so that edges may be appended before the nodes they name.
package graph

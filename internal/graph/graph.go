package graph

// Graph is an immutable causal-loop diagram: an insertion-ordered set of
// nodes plus an ordered list of edges.
//
// INVARIANT: node insertion order is preserved and participates in
// tie-breaking during topology analysis. Two graphs built by the same
// sequence of operations are interchangeable.
//
// The zero Graph is empty and usable; New is provided for symmetry with the
// builder operations.
type Graph struct {
	order []NodeID
	nodes map[NodeID]Node
	edges []Edge
}

// New returns an empty graph.
func New() Graph {
	return Graph{}
}

// AddNode returns a new graph with n inserted after all existing nodes.
// The receiver is never modified. Fails if a node with the same id already
// exists.
func (g Graph) AddNode(n Node) (Graph, error) {
	if _, exists := g.nodes[n.ID()]; exists {
		return Graph{}, newStructuralError(CodeDuplicateNode, n.ID(), "", "node id already exists")
	}

	nodes := make(map[NodeID]Node, len(g.nodes)+1)
	for id, existing := range g.nodes {
		nodes[id] = existing
	}
	nodes[n.ID()] = n

	order := make([]NodeID, len(g.order), len(g.order)+1)
	copy(order, g.order)
	order = append(order, n.ID())

	return Graph{order: order, nodes: nodes, edges: g.edges}, nil
}

// AddEdge returns a new graph with e appended to the edge list. No reference
// validation happens here: edges may name nodes and ports that do not exist
// yet. Validate checks references once the graph is fully built.
func (g Graph) AddEdge(e Edge) Graph {
	edges := make([]Edge, len(g.edges), len(g.edges)+1)
	copy(edges, g.edges)
	edges = append(edges, e)

	return Graph{order: g.order, nodes: g.nodes, edges: edges}
}

// Node looks up a node by id.
func (g Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node ids in insertion order. The returned slice is a
// copy; callers may keep or reorder it.
func (g Graph) NodeIDs() []NodeID {
	out := make([]NodeID, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all edges in append order. The returned slice is a copy.
func (g Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NumNodes returns the node count.
func (g Graph) NumNodes() int {
	return len(g.order)
}

// NumEdges returns the edge count.
func (g Graph) NumEdges() int {
	return len(g.edges)
}

// Successors returns the ids of nodes reachable from id over one edge, in
// edge append order. Duplicate targets are preserved; topology analysis
// tolerates them.
func (g Graph) Successors(id NodeID) []NodeID {
	var out []NodeID
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// EdgesInto returns the edges targeting id, in edge append order.
func (g Graph) EdgesInto(id NodeID) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

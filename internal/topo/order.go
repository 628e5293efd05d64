package topo

import "github.com/causimlabs/causim/internal/graph"

// Order returns the evaluation order for g: the condensed component graph is
// topologically sorted with Kahn's algorithm, then each component's members
// are concatenated in that emission order.
//
// Condensing drops every edge whose endpoints share a component, self-loops
// included, so the component graph is guaranteed acyclic and Kahn always
// emits every component. The in-degree-zero frontier is a FIFO queue seeded
// in component discovery order, which makes the whole order deterministic.
func Order(g graph.Graph) []graph.NodeID {
	sccs := SCCs(g)

	comp := make(map[graph.NodeID]int, g.NumNodes())
	for i, scc := range sccs {
		for _, id := range scc {
			comp[id] = i
		}
	}

	n := len(sccs)
	adj := make([][]int, n)
	indeg := make([]int, n)
	seen := make(map[[2]int]bool)

	for _, e := range g.Edges() {
		a, okA := comp[e.From]
		b, okB := comp[e.To]
		if !okA || !okB || a == b {
			continue
		}
		key := [2]int{a, b}
		if seen[key] {
			continue
		}
		seen[key] = true
		adj[a] = append(adj[a], b)
		indeg[b]++
	}

	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]graph.NodeID, 0, g.NumNodes())
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		order = append(order, sccs[c]...)
		for _, d := range adj[c] {
			indeg[d]--
			if indeg[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	return order
}

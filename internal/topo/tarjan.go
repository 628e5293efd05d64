package topo

import "github.com/causimlabs/causim/internal/graph"

// SCCs computes the strongly connected components of g using Tarjan's
// algorithm, returned in discovery order. Each component lists its member
// node ids, also in discovery order; an isolated node or a self-loop yields
// a singleton component.
//
// The traversal is seeded in node insertion order and walks successors in
// edge append order, so the result is fully deterministic for an unmodified
// graph. Recursion is replaced by an explicit frame stack to tolerate large
// diagrams.
//
// Edges naming a node absent from the graph are ignored here; reporting them
// is graph.Validate's job.
func SCCs(g graph.Graph) [][]graph.NodeID {
	nodes := g.NodeIDs()

	succ := make(map[graph.NodeID][]graph.NodeID, len(nodes))
	for _, id := range nodes {
		succ[id] = g.Successors(id)
	}

	var (
		index   int
		indices = make(map[graph.NodeID]int, len(nodes))
		lowlink = make(map[graph.NodeID]int, len(nodes))
		onStack = make(map[graph.NodeID]bool, len(nodes))
		stack   []graph.NodeID
		sccs    [][]graph.NodeID
	)

	// frame replaces one recursive strongConnect activation: v is the node,
	// next is the index of its next unexplored successor.
	type frame struct {
		v    graph.NodeID
		next int
	}

	visit := func(v graph.NodeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true
	}

	for _, root := range nodes {
		if _, visited := indices[root]; visited {
			continue
		}

		visit(root)
		work := []frame{{v: root}}

		for len(work) > 0 {
			f := &work[len(work)-1]
			descended := false

			for f.next < len(succ[f.v]) {
				w := succ[f.v][f.next]
				f.next++

				if _, visited := indices[w]; !visited {
					if _, inGraph := g.Node(w); !inGraph {
						continue // dangling edge
					}
					visit(w)
					work = append(work, frame{v: w})
					descended = true
					break
				}
				if onStack[w] && indices[w] < lowlink[f.v] {
					lowlink[f.v] = indices[w]
				}
			}
			if descended {
				continue
			}

			// All successors of f.v explored: retire the frame, fold its
			// low-link into the parent, and pop a component if f.v is a root.
			v := f.v
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if lowlink[v] < lowlink[parent.v] {
					lowlink[parent.v] = lowlink[v]
				}
			}

			if lowlink[v] == indices[v] {
				var scc []graph.NodeID
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				// The stack pops members newest-first; flip so each
				// component lists its members in discovery order.
				for i, j := 0, len(scc)-1; i < j; i, j = i+1, j-1 {
					scc[i], scc[j] = scc[j], scc[i]
				}
				sccs = append(sccs, scc)
			}
		}
	}

	return sccs
}

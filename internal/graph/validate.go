package graph

import "fmt"

// Validate checks the graph's structural invariants and returns the first
// violation found, or nil. It is an explicit pass: builders defer all
// reference checks to it, and the engine relies on it having succeeded.
//
// Checked, in order, per node then per edge:
//   - every declared input port carries PortKindInput, outputs PortKindOutput
//   - port ids are unique within a node's input set and within its output set
//   - every edge references existing nodes on both sides
//   - every edge's source port is a declared output of the source node and
//     its target port a declared input of the target node
func Validate(g Graph) error {
	for _, id := range g.order {
		n := g.nodes[id]
		if err := validatePorts(id, n.InputPorts(), PortKindInput); err != nil {
			return err
		}
		if err := validatePorts(id, n.OutputPorts(), PortKindOutput); err != nil {
			return err
		}
	}

	for _, e := range g.edges {
		if err := validateEdge(g, e); err != nil {
			return err
		}
	}

	return nil
}

func validatePorts(nodeID NodeID, ports []Port, want PortKind) error {
	seen := make(map[PortID]bool, len(ports))
	for _, p := range ports {
		if p.Kind != want {
			return newStructuralError(CodePortKindMismatch, nodeID, p.ID,
				fmt.Sprintf("port declared in %s set has kind %q", want, p.Kind))
		}
		if seen[p.ID] {
			return newStructuralError(CodeDuplicatePort, nodeID, p.ID,
				fmt.Sprintf("duplicate %s port id", want))
		}
		seen[p.ID] = true
	}
	return nil
}

func validateEdge(g Graph, e Edge) error {
	from, ok := g.nodes[e.From]
	if !ok {
		return newEdgeError(CodeMissingNode, e,
			fmt.Sprintf("edge source node %q not in graph", e.From))
	}
	to, ok := g.nodes[e.To]
	if !ok {
		return newEdgeError(CodeMissingNode, e,
			fmt.Sprintf("edge target node %q not in graph", e.To))
	}

	if !hasPort(from.OutputPorts(), e.FromPort) {
		return newEdgeError(CodeMissingPort, e,
			fmt.Sprintf("node %q declares no output port %q", e.From, e.FromPort))
	}
	if !hasPort(to.InputPorts(), e.ToPort) {
		return newEdgeError(CodeMissingPort, e,
			fmt.Sprintf("node %q declares no input port %q", e.To, e.ToPort))
	}

	return nil
}

func hasPort(ports []Port, id PortID) bool {
	for _, p := range ports {
		if p.ID == id {
			return true
		}
	}
	return false
}

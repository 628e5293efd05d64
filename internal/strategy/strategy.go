package strategy

import (
	"fmt"

	"github.com/causimlabs/causim/internal/graph"
)

// Outputs maps node ids to the output record each node returned in one
// iteration.
type Outputs map[graph.NodeID]graph.Record

// Strategy decides scheduling for the execution engine.
//
// Implementations may hold internal state across ShouldContinue calls (the
// Convergence variant compares successive output snapshots), so a Strategy
// value belongs to one engine and must not be shared across concurrent runs.
type Strategy interface {
	// Order returns the evaluation order for the current iteration. It may
	// recompute on every call; no caching is promised.
	Order(g graph.Graph) []graph.NodeID

	// ShouldContinue reports whether another iteration should run. iteration
	// is the number of the iteration that just completed, starting at 1.
	ShouldContinue(iteration int, outputs Outputs) bool

	// BackEdgeDefaults returns substitute values for back edges, keyed
	// "nodeID.portID". previous holds the prior iteration's outputs and is
	// nil on the first iteration.
	BackEdgeDefaults(iteration int, previous Outputs) map[string]float64
}

// DefaultKey builds the "nodeID.portID" key used by BackEdgeDefaults maps.
func DefaultKey(nodeID graph.NodeID, portID graph.PortID) string {
	return fmt.Sprintf("%s.%s", nodeID, portID)
}

// scanDefaults derives back-edge defaults from a previous iteration's
// outputs: every numeric field of every output record becomes an entry keyed
// "nodeID.fieldName". The field name doubles as the port id; see the
// back-edge contract on graph.Node.
func scanDefaults(previous Outputs) map[string]float64 {
	defaults := make(map[string]float64)
	for nodeID, record := range previous {
		for field, value := range record {
			if v, ok := graph.NumericValue(value); ok {
				defaults[DefaultKey(nodeID, graph.PortID(field))] = v
			}
		}
	}
	return defaults
}

// cloneOutputs snapshots an Outputs map, copying each record so later
// engine-side writes cannot alias into a stored snapshot.
func cloneOutputs(outputs Outputs) Outputs {
	snap := make(Outputs, len(outputs))
	for id, record := range outputs {
		snap[id] = record.Clone()
	}
	return snap
}

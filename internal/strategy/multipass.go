package strategy

import (
	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/topo"
)

// MultiPass evaluates the graph a fixed number of times. From the second
// iteration on, back edges resolve to the source node's previous-iteration
// output, which lets values propagate around cycles one step per pass.
type MultiPass struct {
	maxIterations int
}

// NewMultiPass returns a multi-pass strategy running exactly maxIterations
// iterations. maxIterations below 1 is a configuration error.
func NewMultiPass(maxIterations int) (*MultiPass, error) {
	if maxIterations < 1 {
		return nil, newConfigError("MultiPass", "maxIterations", "must be at least 1, got %d", maxIterations)
	}
	return &MultiPass{maxIterations: maxIterations}, nil
}

// Order returns the topology analyzer's order.
func (s *MultiPass) Order(g graph.Graph) []graph.NodeID {
	return topo.Order(g)
}

// ShouldContinue is true until maxIterations iterations have run.
func (s *MultiPass) ShouldContinue(iteration int, outputs Outputs) bool {
	return iteration < s.maxIterations
}

// BackEdgeDefaults is empty on the first iteration (no history); afterwards
// it maps every numeric field of the previous outputs to "nodeID.fieldName".
func (s *MultiPass) BackEdgeDefaults(iteration int, previous Outputs) map[string]float64 {
	if iteration <= 1 || previous == nil {
		return map[string]float64{}
	}
	return scanDefaults(previous)
}

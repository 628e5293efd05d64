package strategy

import (
	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/topo"
)

// SinglePass evaluates the graph exactly once. Every back edge resolves to 0:
// with no previous iteration there is no history to draw defaults from.
type SinglePass struct{}

// NewSinglePass returns a single-pass strategy.
func NewSinglePass() *SinglePass {
	return &SinglePass{}
}

// Order returns the topology analyzer's order.
func (s *SinglePass) Order(g graph.Graph) []graph.NodeID {
	return topo.Order(g)
}

// ShouldContinue is true only before the first iteration has run.
func (s *SinglePass) ShouldContinue(iteration int, outputs Outputs) bool {
	return iteration < 1
}

// BackEdgeDefaults always returns an empty mapping.
func (s *SinglePass) BackEdgeDefaults(iteration int, previous Outputs) map[string]float64 {
	return map[string]float64{}
}

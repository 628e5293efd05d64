package strategy

import (
	"math"

	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/topo"
)

// DefaultConvergenceMaxIterations bounds a Convergence run that never
// stabilizes.
const DefaultConvergenceMaxIterations = 100

// Convergence iterates until successive output snapshots stop moving, or
// until a hard iteration cap is hit. Back-edge policy is identical to
// MultiPass.
//
// Convergence requires, between the previous and current snapshot:
//   - no size mismatch (same node count)
//   - every node from the previous snapshot still present with the same
//     output shape
//   - every numeric field present in both to differ by less than threshold
//     in absolute value
//
// The previous snapshot is internal state, so a Convergence value belongs to
// one run at a time.
type Convergence struct {
	threshold     float64
	maxIterations int
	previous      Outputs
}

// ConvergenceOption configures a Convergence strategy.
type ConvergenceOption func(*Convergence)

// WithMaxIterations overrides the iteration cap
// (DefaultConvergenceMaxIterations).
func WithMaxIterations(n int) ConvergenceOption {
	return func(c *Convergence) {
		c.maxIterations = n
	}
}

// NewConvergence returns a convergence strategy. A negative threshold or a
// cap below 1 is a configuration error.
func NewConvergence(threshold float64, opts ...ConvergenceOption) (*Convergence, error) {
	c := &Convergence{
		threshold:     threshold,
		maxIterations: DefaultConvergenceMaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.threshold < 0 {
		return nil, newConfigError("Convergence", "threshold", "must be non-negative, got %v", c.threshold)
	}
	if c.maxIterations < 1 {
		return nil, newConfigError("Convergence", "maxIterations", "must be at least 1, got %d", c.maxIterations)
	}
	return c, nil
}

// Order returns the topology analyzer's order.
func (s *Convergence) Order(g graph.Graph) []graph.NodeID {
	return topo.Order(g)
}

// ShouldContinue is false once the cap is reached; otherwise the first call
// stores a baseline and continues, and later calls compare against the
// stored snapshot, update it, and continue iff not yet converged.
func (s *Convergence) ShouldContinue(iteration int, outputs Outputs) bool {
	if iteration >= s.maxIterations {
		return false
	}

	if s.previous == nil {
		s.previous = cloneOutputs(outputs)
		return true
	}

	converged := s.converged(s.previous, outputs)
	s.previous = cloneOutputs(outputs)
	return !converged
}

// BackEdgeDefaults uses the same previous-output field scan as MultiPass.
func (s *Convergence) BackEdgeDefaults(iteration int, previous Outputs) map[string]float64 {
	if iteration <= 1 || previous == nil {
		return map[string]float64{}
	}
	return scanDefaults(previous)
}

func (s *Convergence) converged(prev, cur Outputs) bool {
	if len(prev) != len(cur) {
		return false
	}

	for nodeID, prevRecord := range prev {
		curRecord, ok := cur[nodeID]
		if !ok {
			return false
		}
		if len(prevRecord) != len(curRecord) {
			return false
		}
		for field, prevValue := range prevRecord {
			curValue, ok := curRecord[field]
			if !ok {
				return false
			}
			pv, prevNumeric := graph.NumericValue(prevValue)
			cv, curNumeric := graph.NumericValue(curValue)
			switch {
			case prevNumeric && curNumeric:
				if math.Abs(cv-pv) >= s.threshold {
					return false
				}
			case prevNumeric != curNumeric:
				// A field changed between numeric and non-numeric: the
				// output shape moved.
				return false
			}
		}
	}

	return true
}

package engine

import "github.com/causimlabs/causim/internal/graph"

// execContext is the engine's graph.Context implementation: a per-(node,
// iteration) window onto the run's state map, scoped so a node can only
// touch its own slot.
type execContext struct {
	nodeID    graph.NodeID
	iteration int
	state     map[graph.NodeID]graph.Record
}

var _ graph.Context = (*execContext)(nil)

func (c *execContext) NodeID() graph.NodeID {
	return c.nodeID
}

func (c *execContext) Iteration() int {
	return c.iteration
}

func (c *execContext) State() graph.Record {
	return c.state[c.nodeID]
}

func (c *execContext) SetState(r graph.Record) {
	c.state[c.nodeID] = r
}

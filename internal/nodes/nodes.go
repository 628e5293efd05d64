package nodes

import "github.com/causimlabs/causim/internal/graph"

// Port ids shared by all reference kinds.
const (
	PortIn  graph.PortID = "in"
	PortOut graph.PortID = "out"
)

var (
	inPorts  = []graph.Port{{ID: PortIn, DisplayName: "Input", Kind: graph.PortKindInput}}
	outPorts = []graph.Port{{ID: PortOut, DisplayName: "Output", Kind: graph.PortKindOutput}}
)

// Constant emits a fixed value on "out" every iteration. It has no inputs
// and no state.
type Constant struct {
	id    graph.NodeID
	value float64
}

// NewConstant creates a constant source node.
func NewConstant(id graph.NodeID, value float64) *Constant {
	return &Constant{id: id, value: value}
}

func (c *Constant) ID() graph.NodeID           { return c.id }
func (c *Constant) TypeTag() string            { return "constant" }
func (c *Constant) DefaultState() graph.Record { return nil }
func (c *Constant) InputPorts() []graph.Port   { return nil }
func (c *Constant) OutputPorts() []graph.Port  { return outPorts }

func (c *Constant) Compute(inputs graph.Inputs, ctx graph.Context) (graph.Record, error) {
	return graph.Record{"out": c.value}, nil
}

// Accumulator latches the signal it receives: each iteration it stores the
// summed "in" value in its state slot under "value" and emits it on "out".
// The constructor's initial value is the state before the first iteration.
type Accumulator struct {
	id      graph.NodeID
	initial float64
}

// NewAccumulator creates an accumulator node with the given initial value.
func NewAccumulator(id graph.NodeID, initial float64) *Accumulator {
	return &Accumulator{id: id, initial: initial}
}

func (a *Accumulator) ID() graph.NodeID { return a.id }
func (a *Accumulator) TypeTag() string  { return "accumulator" }

func (a *Accumulator) DefaultState() graph.Record {
	return graph.Record{"value": a.initial}
}

func (a *Accumulator) InputPorts() []graph.Port  { return inPorts }
func (a *Accumulator) OutputPorts() []graph.Port { return outPorts }

func (a *Accumulator) Compute(inputs graph.Inputs, ctx graph.Context) (graph.Record, error) {
	value := inputs[PortIn]
	ctx.SetState(graph.Record{"value": value})
	return graph.Record{"out": value}, nil
}

// Gain multiplies its summed "in" value by a fixed factor. Stateless.
type Gain struct {
	id     graph.NodeID
	factor float64
}

// NewGain creates a gain node.
func NewGain(id graph.NodeID, factor float64) *Gain {
	return &Gain{id: id, factor: factor}
}

func (g *Gain) ID() graph.NodeID           { return g.id }
func (g *Gain) TypeTag() string            { return "gain" }
func (g *Gain) DefaultState() graph.Record { return nil }
func (g *Gain) InputPorts() []graph.Port   { return inPorts }
func (g *Gain) OutputPorts() []graph.Port  { return outPorts }

func (g *Gain) Compute(inputs graph.Inputs, ctx graph.Context) (graph.Record, error) {
	return graph.Record{"out": inputs[PortIn] * g.factor}, nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/nodes"
	"github.com/causimlabs/causim/internal/strategy"
)

// failingNode returns an error from Compute, for NODE_FAILED paths.
type failingNode struct {
	id graph.NodeID
}

func (n *failingNode) ID() graph.NodeID           { return n.id }
func (n *failingNode) TypeTag() string            { return "failing" }
func (n *failingNode) DefaultState() graph.Record { return nil }
func (n *failingNode) InputPorts() []graph.Port {
	return []graph.Port{{ID: "in", Kind: graph.PortKindInput}}
}
func (n *failingNode) OutputPorts() []graph.Port {
	return []graph.Port{{ID: "out", Kind: graph.PortKindOutput}}
}

func (n *failingNode) Compute(inputs graph.Inputs, ctx graph.Context) (graph.Record, error) {
	return nil, errors.New("boom")
}

// nilOutputNode returns a nil record, which the engine must normalize.
type nilOutputNode struct {
	id graph.NodeID
}

func (n *nilOutputNode) ID() graph.NodeID           { return n.id }
func (n *nilOutputNode) TypeTag() string            { return "nil-output" }
func (n *nilOutputNode) DefaultState() graph.Record { return nil }
func (n *nilOutputNode) InputPorts() []graph.Port   { return nil }
func (n *nilOutputNode) OutputPorts() []graph.Port {
	return []graph.Port{{ID: "out", Kind: graph.PortKindOutput}}
}

func (n *nilOutputNode) Compute(inputs graph.Inputs, ctx graph.Context) (graph.Record, error) {
	return nil, nil
}

// truncatedOrder wraps a strategy but drops the last node from its order,
// for MISSING_FROM_ORDER paths.
type truncatedOrder struct {
	strategy.Strategy
}

func (s *truncatedOrder) Order(g graph.Graph) []graph.NodeID {
	order := s.Strategy.Order(g)
	return order[:len(order)-1]
}

func mustAdd(t *testing.T, g graph.Graph, n graph.Node) graph.Graph {
	t.Helper()
	g, err := g.AddNode(n)
	require.NoError(t, err)
	return g
}

func edge(i int, from, to graph.NodeID) graph.Edge {
	return graph.Edge{
		ID:       graph.EdgeID(fmt.Sprintf("e%d", i)),
		From:     from,
		FromPort: nodes.PortOut,
		To:       to,
		ToPort:   nodes.PortIn,
	}
}

func newEngine(t *testing.T, s strategy.Strategy) *Engine {
	t.Helper()
	return New(s, WithRunIDGenerator(NewFixedGenerator("run-test")))
}

// =============================================================================
// Execution Tests
// =============================================================================

func TestExecute_Chain_SinglePass(t *testing.T) {
	g := graph.New()
	g = mustAdd(t, g, nodes.NewConstant("A", 5))
	g = mustAdd(t, g, nodes.NewAccumulator("B", 0))
	g = mustAdd(t, g, nodes.NewAccumulator("C", 0))
	g = g.AddEdge(edge(0, "A", "B"))
	g = g.AddEdge(edge(1, "B", "C"))
	require.NoError(t, graph.Validate(g))

	e := newEngine(t, strategy.NewSinglePass())
	res, err := e.Execute(context.Background(), g, nil)
	require.NoError(t, err)

	assert.Equal(t, "run-test", res.RunID)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, graph.Record{"out": 5.0}, res.Outputs["A"])
	assert.Equal(t, graph.Record{"out": 5.0}, res.Outputs["B"])
	assert.Equal(t, graph.Record{"out": 5.0}, res.Outputs["C"])
	assert.Equal(t, graph.Record{"value": 5.0}, res.State["B"])
	assert.Equal(t, graph.Record{"value": 5.0}, res.State["C"])
}

func TestExecute_Cycle_MultiPass(t *testing.T) {
	// INPUT feeds a three-node loop. Each pass carries the looped value one
	// more step, so A sees the constant once per completed lap.
	g := graph.New()
	g = mustAdd(t, g, nodes.NewConstant("INPUT", 1))
	g = mustAdd(t, g, nodes.NewAccumulator("A", 0))
	g = mustAdd(t, g, nodes.NewAccumulator("B", 0))
	g = mustAdd(t, g, nodes.NewAccumulator("C", 0))
	g = g.AddEdge(edge(0, "INPUT", "A"))
	g = g.AddEdge(edge(1, "A", "B"))
	g = g.AddEdge(edge(2, "B", "C"))
	g = g.AddEdge(edge(3, "C", "A"))
	require.NoError(t, graph.Validate(g))

	multi, err := strategy.NewMultiPass(3)
	require.NoError(t, err)

	e := newEngine(t, multi)
	res, err := e.Execute(context.Background(), g, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations)
	// Iteration 1: A=1 (back edge from C defaults to 0).
	// Iteration 2: A=1+1=2. Iteration 3: A=1+2=3.
	assert.Equal(t, graph.Record{"out": 3.0}, res.Outputs["A"])
	assert.Equal(t, graph.Record{"value": 3.0}, res.State["A"])
}

func TestExecute_FanIn_SumsPerPort(t *testing.T) {
	g := graph.New()
	g = mustAdd(t, g, nodes.NewConstant("X", 2))
	g = mustAdd(t, g, nodes.NewConstant("Y", 3))
	g = mustAdd(t, g, nodes.NewAccumulator("SUM", 0))
	g = g.AddEdge(edge(0, "X", "SUM"))
	g = g.AddEdge(edge(1, "Y", "SUM"))
	require.NoError(t, graph.Validate(g))

	e := newEngine(t, strategy.NewSinglePass())
	res, err := e.Execute(context.Background(), g, nil)
	require.NoError(t, err)

	assert.Equal(t, graph.Record{"out": 5.0}, res.Outputs["SUM"])
}

func TestExecute_SelfLoop_BackEdge(t *testing.T) {
	// A self loop is a back edge even against the node's own slot: first
	// iteration reads 0, later iterations read the previous output.
	g := graph.New()
	g = mustAdd(t, g, nodes.NewConstant("SRC", 1))
	g = mustAdd(t, g, nodes.NewAccumulator("A", 0))
	g = g.AddEdge(edge(0, "SRC", "A"))
	g = g.AddEdge(edge(1, "A", "A"))
	require.NoError(t, graph.Validate(g))

	multi, err := strategy.NewMultiPass(3)
	require.NoError(t, err)

	e := newEngine(t, multi)
	res, err := e.Execute(context.Background(), g, nil)
	require.NoError(t, err)

	// Iteration 1: 1+0. Iteration 2: 1+1. Iteration 3: 1+2.
	assert.Equal(t, graph.Record{"out": 3.0}, res.Outputs["A"])
}

func TestExecute_Convergence_GainLoopSettles(t *testing.T) {
	// A loop through a 0.5 gain: 1, 1.5, 1.75, ... converges toward 2.
	g := graph.New()
	g = mustAdd(t, g, nodes.NewConstant("SRC", 1))
	g = mustAdd(t, g, nodes.NewAccumulator("A", 0))
	g = mustAdd(t, g, nodes.NewGain("HALF", 0.5))
	g = g.AddEdge(edge(0, "SRC", "A"))
	g = g.AddEdge(edge(1, "A", "HALF"))
	g = g.AddEdge(edge(2, "HALF", "A"))
	require.NoError(t, graph.Validate(g))

	conv, err := strategy.NewConvergence(0.01)
	require.NoError(t, err)

	e := newEngine(t, conv)
	res, err := e.Execute(context.Background(), g, nil)
	require.NoError(t, err)

	final, ok := graph.NumericField(res.Outputs["A"], "out")
	require.True(t, ok)
	assert.InDelta(t, 2.0, final, 0.05)
	assert.Less(t, res.Iterations, strategy.DefaultConvergenceMaxIterations)
}

func TestExecute_InitialStateOverridesDefault(t *testing.T) {
	g := graph.New()
	g = mustAdd(t, g, nodes.NewAccumulator("A", 7))
	require.NoError(t, graph.Validate(g))

	initial := map[graph.NodeID]graph.Record{
		"A": {"value": 42.0},
	}

	e := newEngine(t, &noopStrategy{})
	res, err := e.Execute(context.Background(), g, initial)
	require.NoError(t, err)

	assert.Equal(t, graph.Record{"value": 42.0}, res.State["A"])

	// The engine must have copied, not aliased, the caller's record.
	initial["A"]["value"] = 0.0
	assert.Equal(t, graph.Record{"value": 42.0}, res.State["A"])
}

// noopStrategy runs zero node evaluations: an order with no nodes and no
// continuation.
type noopStrategy struct{}

func (s *noopStrategy) Order(g graph.Graph) []graph.NodeID { return nil }
func (s *noopStrategy) ShouldContinue(iteration int, outputs strategy.Outputs) bool {
	return false
}
func (s *noopStrategy) BackEdgeDefaults(iteration int, previous strategy.Outputs) map[string]float64 {
	return nil
}

func TestExecute_NilOutputNormalizedToEmptyRecord(t *testing.T) {
	g := graph.New()
	g = mustAdd(t, g, &nilOutputNode{id: "A"})
	require.NoError(t, graph.Validate(g))

	e := newEngine(t, strategy.NewSinglePass())
	res, err := e.Execute(context.Background(), g, nil)
	require.NoError(t, err)

	require.NotNil(t, res.Outputs["A"])
	assert.Empty(t, res.Outputs["A"])
}

// =============================================================================
// Error Tests
// =============================================================================

func TestExecute_EdgeToUnknownNode_MissingNode(t *testing.T) {
	g := graph.New()
	g = mustAdd(t, g, nodes.NewConstant("A", 1))
	g = g.AddEdge(edge(0, "A", "ghost"))

	e := newEngine(t, strategy.NewSinglePass())
	_, err := e.Execute(context.Background(), g, nil)
	require.Error(t, err)

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeMissingNode, re.Code)
	assert.Equal(t, graph.NodeID("ghost"), re.NodeID)
	assert.Equal(t, "run-test", re.RunID)
	assert.True(t, IsConsistencyError(err))
}

func TestExecute_NodeMissingFromOrder(t *testing.T) {
	g := graph.New()
	g = mustAdd(t, g, nodes.NewConstant("A", 1))
	g = mustAdd(t, g, nodes.NewAccumulator("B", 0))
	g = g.AddEdge(edge(0, "A", "B"))
	require.NoError(t, graph.Validate(g))

	e := newEngine(t, &truncatedOrder{Strategy: strategy.NewSinglePass()})
	_, err := e.Execute(context.Background(), g, nil)
	require.Error(t, err)

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeMissingFromOrder, re.Code)
	assert.Equal(t, graph.NodeID("B"), re.NodeID)
	assert.True(t, IsConsistencyError(err))
}

func TestExecute_NodeFailure_WrapsCause(t *testing.T) {
	g := graph.New()
	g = mustAdd(t, g, &failingNode{id: "A"})
	require.NoError(t, graph.Validate(g))

	e := newEngine(t, strategy.NewSinglePass())
	_, err := e.Execute(context.Background(), g, nil)
	require.Error(t, err)

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeNodeFailed, re.Code)
	assert.Equal(t, graph.NodeID("A"), re.NodeID)
	assert.EqualError(t, re.Err, "boom")
	assert.False(t, IsConsistencyError(err))
}

func TestExecute_CancelledContext(t *testing.T) {
	g := graph.New()
	g = mustAdd(t, g, nodes.NewConstant("A", 1))
	require.NoError(t, graph.Validate(g))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(t, strategy.NewSinglePass())
	_, err := e.Execute(ctx, g, nil)
	require.Error(t, err)

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeCancelled, re.Code)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// Run ID Tests
// =============================================================================

func TestUUIDv7Generator_ProducesDistinctTokens(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestFixedGenerator_ReturnsTokensInOrder(t *testing.T) {
	gen := NewFixedGenerator("one", "two")
	assert.Equal(t, "one", gen.Generate())
	assert.Equal(t, "two", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

package engine

import (
	"context"
	"log/slog"

	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/strategy"
)

// Engine evaluates a graph under one execution strategy, chosen at
// construction.
//
// An Engine is stateless between runs, but its strategy may not be (see
// strategy.Convergence), so one Engine serves one run at a time. Build a
// fresh engine per concurrent run.
type Engine struct {
	strategy strategy.Strategy
	logger   *slog.Logger
	runIDs   RunIDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRunIDGenerator overrides the run token generator. Tests use
// FixedGenerator for deterministic output.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// New creates an Engine driven by the given strategy.
func New(s strategy.Strategy, opts ...Option) *Engine {
	e := &Engine{
		strategy: s,
		logger:   slog.New(slog.DiscardHandler),
		runIDs:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is everything one Execute call produced.
type Result struct {
	// RunID is the token identifying this run.
	RunID string

	// State is the final per-node state map.
	State map[graph.NodeID]graph.Record

	// Outputs is the per-node output map from the last executed iteration.
	Outputs strategy.Outputs

	// Iterations is the number of iterations that ran.
	Iterations int
}

// Execute runs the graph to completion under the engine's strategy.
//
// initial supplies per-node starting state; nodes absent from it start from
// their DefaultState. initial may be nil. The graph must have passed
// graph.Validate — the engine does not re-validate structure, only the
// graph/strategy consistency it depends on (every edge endpoint resolvable,
// every source present in the computed order).
//
// ctx is consulted between node evaluations; cancellation aborts the run
// with a CANCELLED RunError. Node evaluation itself is never preempted.
func (e *Engine) Execute(ctx context.Context, g graph.Graph, initial map[graph.NodeID]graph.Record) (*Result, error) {
	runID := e.runIDs.Generate()
	logger := e.logger.With("run_id", runID)

	state := make(map[graph.NodeID]graph.Record, g.NumNodes())
	for _, id := range g.NodeIDs() {
		if rec, ok := initial[id]; ok {
			state[id] = rec.Clone()
			continue
		}
		n, _ := g.Node(id)
		state[id] = n.DefaultState().Clone()
	}

	incoming, err := incomingEdges(g, runID)
	if err != nil {
		return nil, err
	}

	logger.Debug("execute: starting", "nodes", g.NumNodes(), "edges", g.NumEdges())

	lastOutputs := make(strategy.Outputs, g.NumNodes())
	var previous strategy.Outputs
	iteration := 0

	for {
		iteration++

		order := e.strategy.Order(g)
		pos := make(map[graph.NodeID]int, len(order))
		for i, id := range order {
			pos[id] = i
		}

		if err := checkOrderConsistency(g, pos, runID); err != nil {
			return nil, err
		}

		defaults := e.strategy.BackEdgeDefaults(iteration, previous)
		results := make(strategy.Outputs, len(order))

		for idx, nodeID := range order {
			if err := ctx.Err(); err != nil {
				return nil, &RunError{Code: CodeCancelled, Message: err.Error(), RunID: runID, NodeID: nodeID, Err: err}
			}

			node, ok := g.Node(nodeID)
			if !ok {
				return nil, &RunError{
					Code:    CodeMissingNode,
					Message: "ordered node not found in graph",
					RunID:   runID,
					NodeID:  nodeID,
				}
			}

			inputs := resolveInputs(incoming[nodeID], idx, pos, results, defaults)

			ectx := &execContext{nodeID: nodeID, iteration: iteration, state: state}
			out, err := node.Compute(inputs, ectx)
			if err != nil {
				return nil, &RunError{
					Code:    CodeNodeFailed,
					Message: "node compute failed",
					RunID:   runID,
					NodeID:  nodeID,
					Err:     err,
				}
			}
			if out == nil {
				out = graph.Record{}
			}

			results[nodeID] = out
			lastOutputs[nodeID] = out

			logger.Debug("node evaluated", "iteration", iteration, "node", nodeID, "type", node.TypeTag())
		}

		cont := e.strategy.ShouldContinue(iteration, results)
		logger.Debug("iteration complete", "iteration", iteration, "continue", cont)

		previous = results
		if !cont {
			break
		}
	}

	return &Result{
		RunID:      runID,
		State:      state,
		Outputs:    lastOutputs,
		Iterations: iteration,
	}, nil
}

// incomingEdges indexes edges by target node and fails fast on any edge
// naming a node the graph does not contain. This is the consistency check
// the engine owns; structural validation stays with graph.Validate.
func incomingEdges(g graph.Graph, runID string) (map[graph.NodeID][]graph.Edge, error) {
	incoming := make(map[graph.NodeID][]graph.Edge)
	for _, e := range g.Edges() {
		if _, ok := g.Node(e.From); !ok {
			return nil, &RunError{
				Code:    CodeMissingNode,
				Message: "edge source not found in graph",
				RunID:   runID,
				NodeID:  e.From,
			}
		}
		if _, ok := g.Node(e.To); !ok {
			return nil, &RunError{
				Code:    CodeMissingNode,
				Message: "edge target not found in graph",
				RunID:   runID,
				NodeID:  e.To,
			}
		}
		incoming[e.To] = append(incoming[e.To], e)
	}
	return incoming, nil
}

// checkOrderConsistency verifies every edge endpoint appears in the order
// the strategy just computed. Runs once per iteration since a strategy may
// recompute its order every call.
func checkOrderConsistency(g graph.Graph, pos map[graph.NodeID]int, runID string) error {
	for _, e := range g.Edges() {
		for _, id := range []graph.NodeID{e.From, e.To} {
			if _, ok := pos[id]; !ok {
				return &RunError{
					Code:    CodeMissingFromOrder,
					Message: "edge endpoint missing from computed order",
					RunID:   runID,
					NodeID:  id,
				}
			}
		}
	}
	return nil
}

// resolveInputs gathers one node's input values for this iteration.
//
// An edge whose source position precedes idx is a forward edge and reads the
// source's already-computed output field for that port, defaulting to 0 when
// the source produced no such numeric field. Any other edge (source at or
// after idx, self-loops included) is a back edge and reads the strategy's
// defaults, again 0 when absent. Fan-in sums per input port.
func resolveInputs(
	edges []graph.Edge,
	idx int,
	pos map[graph.NodeID]int,
	results strategy.Outputs,
	defaults map[string]float64,
) graph.Inputs {
	inputs := make(graph.Inputs, len(edges))

	for _, e := range edges {
		srcIdx := pos[e.From]

		var value float64
		if srcIdx < idx {
			value, _ = graph.NumericField(results[e.From], string(e.FromPort))
		} else {
			value = defaults[strategy.DefaultKey(e.From, e.FromPort)]
		}

		inputs[e.ToPort] += value
	}

	return inputs
}

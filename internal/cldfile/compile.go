package cldfile

import (
	"fmt"

	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/nodes"
	"github.com/causimlabs/causim/internal/strategy"
)

// Compile assembles a validated graph from a decoded document, resolving
// node kinds through the registry. It also returns the document's initial
// state overrides, converted to engine form.
func Compile(doc *Document, registry *nodes.Registry) (graph.Graph, map[graph.NodeID]graph.Record, error) {
	g := graph.New()

	for _, decl := range doc.Nodes {
		if decl.ID == "" {
			return graph.Graph{}, nil, fmt.Errorf("node declaration missing id")
		}
		n, err := registry.New(decl.Kind, graph.NodeID(decl.ID), decl.Params)
		if err != nil {
			return graph.Graph{}, nil, fmt.Errorf("node %q: %w", decl.ID, err)
		}
		g, err = g.AddNode(n)
		if err != nil {
			return graph.Graph{}, nil, err
		}
	}

	for i, decl := range doc.Edges {
		e := graph.Edge{
			ID:       graph.EdgeID(decl.ID),
			From:     graph.NodeID(decl.From),
			FromPort: graph.PortID(decl.FromPort),
			To:       graph.NodeID(decl.To),
			ToPort:   graph.PortID(decl.ToPort),
		}
		if e.ID == "" {
			e.ID = graph.EdgeID(fmt.Sprintf("edge-%d", i))
		}
		if e.FromPort == "" {
			e.FromPort = nodes.PortOut
		}
		if e.ToPort == "" {
			e.ToPort = nodes.PortIn
		}
		g = g.AddEdge(e)
	}

	if err := graph.Validate(g); err != nil {
		return graph.Graph{}, nil, err
	}

	return g, doc.State.ToInitialState(), nil
}

// ToInitialState converts the declaration form into the engine's initial
// state map. Empty declarations yield nil, meaning "defaults everywhere".
func (s StateDecl) ToInitialState() map[graph.NodeID]graph.Record {
	if len(s) == 0 {
		return nil
	}
	initial := make(map[graph.NodeID]graph.Record, len(s))
	for id, fields := range s {
		rec := make(graph.Record, len(fields))
		for k, v := range fields {
			rec[k] = v
		}
		initial[graph.NodeID(id)] = rec
	}
	return initial
}

// BuildStrategy constructs the execution strategy a declaration selects.
// A nil declaration selects SinglePass.
func BuildStrategy(decl *StrategyDecl) (strategy.Strategy, error) {
	if decl == nil {
		return strategy.NewSinglePass(), nil
	}

	switch decl.Kind {
	case "", "single":
		return strategy.NewSinglePass(), nil
	case "multi":
		return strategy.NewMultiPass(decl.Iterations)
	case "converge":
		var opts []strategy.ConvergenceOption
		if decl.MaxIterations != 0 {
			opts = append(opts, strategy.WithMaxIterations(decl.MaxIterations))
		}
		return strategy.NewConvergence(decl.Threshold, opts...)
	default:
		return nil, fmt.Errorf("unknown strategy kind %q (want single, multi, or converge)", decl.Kind)
	}
}

package harness

import (
	"context"
	"fmt"
	"math"

	"github.com/causimlabs/causim/internal/cldfile"
	"github.com/causimlabs/causim/internal/engine"
	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/nodes"
)

// defaultTolerance is the numeric comparison delta when a scenario does not
// set one.
const defaultTolerance = 1e-9

// Run executes a scenario end to end: load and compile the diagram, build
// the strategy, execute with a fixed run token, and evaluate expectations.
// The result is returned even when expectations fail so callers can inspect
// it; failures come back as the error list.
func Run(s *Scenario) (*engine.Result, []error) {
	loadResult, loadErrs := cldfile.Load(s.DiagramDir(), cldfile.LoadModeFailFast)
	if len(loadErrs) > 0 {
		return nil, loadErrs
	}

	g, initial, err := cldfile.Compile(loadResult.Document, nodes.Default())
	if err != nil {
		return nil, []error{err}
	}

	decl := s.Strategy
	if decl == nil {
		decl = loadResult.Document.Strategy
	}
	strat, err := cldfile.BuildStrategy(decl)
	if err != nil {
		return nil, []error{err}
	}

	if s.InitialState != nil {
		initial = cldfile.StateDecl(s.InitialState).ToInitialState()
	}

	eng := engine.New(strat, engine.WithRunIDGenerator(engine.NewFixedGenerator(s.RunID)))
	result, err := eng.Execute(context.Background(), g, initial)
	if err != nil {
		return nil, []error{err}
	}

	return result, s.Expect.check(result)
}

// check evaluates all expectations, collecting every failure.
func (e *Expectations) check(result *engine.Result) []error {
	if e == nil {
		return nil
	}

	tolerance := e.Tolerance
	if tolerance == 0 {
		tolerance = defaultTolerance
	}

	var errs []error

	if e.Iterations != 0 && result.Iterations != e.Iterations {
		errs = append(errs, fmt.Errorf("iterations: got %d, want %d", result.Iterations, e.Iterations))
	}
	if e.MaxIterations != 0 && result.Iterations >= e.MaxIterations {
		errs = append(errs, fmt.Errorf("iterations: got %d, want fewer than %d", result.Iterations, e.MaxIterations))
	}

	for nodeID, fields := range e.Outputs {
		record, ok := result.Outputs[graph.NodeID(nodeID)]
		if !ok {
			errs = append(errs, fmt.Errorf("outputs[%s]: node produced no output", nodeID))
			continue
		}
		errs = append(errs, checkFields("outputs", nodeID, record, fields, tolerance)...)
	}

	for nodeID, fields := range e.State {
		record, ok := result.State[graph.NodeID(nodeID)]
		if !ok {
			errs = append(errs, fmt.Errorf("state[%s]: node has no state", nodeID))
			continue
		}
		errs = append(errs, checkFields("state", nodeID, record, fields, tolerance)...)
	}

	return errs
}

func checkFields(section, nodeID string, record graph.Record, want map[string]float64, tolerance float64) []error {
	var errs []error
	for field, expected := range want {
		actual, ok := graph.NumericField(record, field)
		if !ok {
			errs = append(errs, fmt.Errorf("%s[%s].%s: missing or non-numeric", section, nodeID, field))
			continue
		}
		if math.Abs(actual-expected) > tolerance {
			errs = append(errs, fmt.Errorf("%s[%s].%s: got %v, want %v", section, nodeID, field, actual, expected))
		}
	}
	return errs
}

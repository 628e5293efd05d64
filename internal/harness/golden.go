package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/causimlabs/causim/internal/canon"
	"github.com/causimlabs/causim/internal/engine"
	"github.com/causimlabs/causim/internal/graph"
	"github.com/causimlabs/causim/internal/strategy"
)

// Snapshot converts a run result to the plain-map form canon.Marshal
// accepts. The shape is stable: iterations, outputs, run_id, state.
func Snapshot(result *engine.Result) map[string]any {
	return map[string]any{
		"iterations": result.Iterations,
		"outputs":    outputsToMap(result.Outputs),
		"run_id":     result.RunID,
		"state":      stateToMap(result.State),
	}
}

// RunWithGolden executes a scenario and compares the canonical-JSON result
// snapshot against testdata/golden/<name>.golden. Expectation failures and
// execution errors fail the test immediately.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) {
	t.Helper()

	result, errs := Run(s)
	for _, err := range errs {
		t.Errorf("scenario %s: %v", s.Name, err)
	}
	if result == nil {
		t.Fatalf("scenario %s: no result", s.Name)
	}

	data, err := canon.Marshal(Snapshot(result))
	if err != nil {
		t.Fatalf("scenario %s: marshal snapshot: %v", s.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, data)
}

func outputsToMap(outputs strategy.Outputs) map[string]any {
	out := make(map[string]any, len(outputs))
	for id, record := range outputs {
		out[string(id)] = recordToMap(record)
	}
	return out
}

func stateToMap(state map[graph.NodeID]graph.Record) map[string]any {
	out := make(map[string]any, len(state))
	for id, record := range state {
		out[string(id)] = recordToMap(record)
	}
	return out
}

func recordToMap(r graph.Record) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

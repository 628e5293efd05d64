// Package harness provides scenario-driven conformance testing for the
// execution engine.
//
// A scenario is a YAML file naming a diagram directory, an execution
// strategy, optional initial state, and expectations on the run's outputs,
// final state, and iteration count:
//
//	name: chain_single_pass
//	description: "Constant feeding two accumulators, one pass"
//	diagram: chain
//	strategy: { kind: single }
//	initial_state: { B: { value: 2 } }
//	expect:
//	  iterations: 1
//	  outputs: { A: { out: 5 } }
//	  state: { B: { value: 5 } }
//
// Paths are relative to the scenario file. Every scenario runs with a fixed
// run token so the complete result also golden-compares byte-for-byte: the
// canonical-JSON snapshot lives in testdata/golden/<name>.golden and is
// regenerated with `go test ./internal/harness -update`.
package harness

// Package strategy defines the execution-strategy contract and its three
// implementations: SinglePass, MultiPass, and Convergence.
//
// A strategy answers three questions for the engine: in what order do nodes
// evaluate, does another iteration run, and what value does an edge carry
// when its source has not been evaluated yet this pass (a back edge). All
// three variants order nodes with the topology analyzer; they differ only in
// continuation and back-edge policy.
//
// Constructors reject invalid configuration immediately with a ConfigError.
// Misconfiguration is fatal and non-retryable: there is no repair path.
package strategy

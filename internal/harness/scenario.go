package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/causimlabs/causim/internal/cldfile"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Diagram is the diagram directory, relative to the scenario file.
	Diagram string `yaml:"diagram"`

	// Strategy selects the execution strategy. When nil, the diagram
	// document's own strategy declaration applies, falling back to
	// SinglePass.
	Strategy *cldfile.StrategyDecl `yaml:"strategy,omitempty"`

	// InitialState overrides per-node starting state. Overrides the diagram
	// document's state block entirely when present.
	InitialState map[string]map[string]float64 `yaml:"initial_state,omitempty"`

	// RunID is the fixed run token for this scenario. Defaults to
	// "run-<name>" so golden output stays deterministic.
	RunID string `yaml:"run_id,omitempty"`

	// Expect holds the assertions evaluated after the run.
	Expect *Expectations `yaml:"expect,omitempty"`

	// dir is the directory the scenario file was loaded from.
	dir string
}

// Expectations asserts on one run's result. Zero-valued fields are skipped.
type Expectations struct {
	// Iterations is the exact expected iteration count (0 = don't check).
	Iterations int `yaml:"iterations,omitempty"`

	// MaxIterations asserts the run took fewer than this many iterations
	// (0 = don't check). Useful for convergence scenarios.
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// Outputs asserts numeric output fields per node, subset match.
	Outputs map[string]map[string]float64 `yaml:"outputs,omitempty"`

	// State asserts numeric state fields per node, subset match.
	State map[string]map[string]float64 `yaml:"state,omitempty"`

	// Tolerance is the comparison delta for numeric assertions.
	// Defaults to 1e-9.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// LoadScenario parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Diagram == "" {
		return nil, fmt.Errorf("scenario %s: diagram is required", path)
	}
	if s.RunID == "" {
		s.RunID = "run-" + s.Name
	}
	s.dir = filepath.Dir(path)

	return &s, nil
}

// DiagramDir returns the absolute diagram directory for this scenario.
func (s *Scenario) DiagramDir() string {
	return filepath.Join(s.dir, s.Diagram)
}

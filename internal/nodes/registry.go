package nodes

import (
	"fmt"
	"sort"

	"github.com/causimlabs/causim/internal/graph"
)

// Factory builds a node of one kind from a declaration's parameters.
type Factory func(id graph.NodeID, params map[string]float64) (graph.Node, error)

// Registry maps kind names to factories. The diagram loader resolves node
// declarations through one of these.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given kind name, replacing any previous
// registration.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// New builds a node of the named kind.
func (r *Registry) New(kind string, id graph.NodeID, params map[string]float64) (graph.Node, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q (known: %v)", kind, r.Kinds())
	}
	return f(id, params)
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Default returns a registry holding the reference kinds.
func Default() *Registry {
	r := NewRegistry()
	r.Register("constant", func(id graph.NodeID, params map[string]float64) (graph.Node, error) {
		return NewConstant(id, params["value"]), nil
	})
	r.Register("accumulator", func(id graph.NodeID, params map[string]float64) (graph.Node, error) {
		return NewAccumulator(id, params["initial"]), nil
	})
	r.Register("gain", func(id graph.NodeID, params map[string]float64) (graph.Node, error) {
		factor, ok := params["factor"]
		if !ok {
			factor = 1
		}
		return NewGain(id, factor), nil
	})
	return r
}

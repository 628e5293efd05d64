// Package engine drives iterative evaluation of a causal-loop graph under a
// pluggable execution strategy.
//
// Each Execute call owns its whole world: it seeds a fresh state map, loops
// asking the strategy for an order, back-edge defaults, and a continuation
// decision, and returns everything in a Result. No state outlives the call
// and the graph is only ever read, so concurrent Execute calls against the
// same graph are safe as long as each engine (and thus each strategy value)
// serves one run at a time.
//
// Evaluation is strictly sequential. An edge whose source precedes its
// destination in the order (a forward edge) carries the source's output from
// this same iteration; an edge whose source is scheduled at or after its
// destination (a back edge, self-loops included) carries a strategy-supplied
// default instead. Values fanning in to one input port are summed.
package engine

package graph

// NodeID uniquely identifies a node within one Graph.
type NodeID string

// PortID identifies a port within one node and one kind category.
// Input ids and output ids are independent namespaces on the same node.
type PortID string

// EdgeID identifies an edge within one Graph.
type EdgeID string

// PortKind distinguishes input ports from output ports.
type PortKind string

const (
	// PortKindInput marks a port that receives values from edges.
	PortKindInput PortKind = "input"

	// PortKindOutput marks a port that feeds values into edges.
	PortKindOutput PortKind = "output"
)

// Port declares one connection point on a node.
type Port struct {
	ID          PortID
	DisplayName string
	Kind        PortKind
}

// Edge is a directed connection from an output port to an input port.
// Several edges may target the same input port (fan-in); the engine sums
// their resolved values.
type Edge struct {
	ID       EdgeID
	From     NodeID
	FromPort PortID
	To       NodeID
	ToPort   PortID
}

// Inputs carries the resolved per-port input values handed to Compute.
// Fan-in summation has already happened; each port appears at most once.
type Inputs map[PortID]float64

// Context is the per-(node, iteration) view the engine hands to Compute.
// It is the ONLY sanctioned access to node state: a node reads and writes
// its own state slot through it and can never reach another node's slot.
//
// Implemented by the engine; node kinds only consume it.
type Context interface {
	// NodeID returns the id of the node being evaluated.
	NodeID() NodeID

	// Iteration returns the 1-based iteration number of the current pass.
	Iteration() int

	// State returns the node's current state record. The returned record is
	// live, not a copy; prefer SetState for replacement-style updates.
	State() Record

	// SetState replaces the node's state record.
	SetState(Record)
}

// Node is the contract every node kind implements.
//
// Compute must be effectively pure apart from state access through ctx: same
// inputs and same state produce the same outputs. It must not block on
// external I/O.
//
// BACK-EDGE CONTRACT: for any output field treated as numeric, the record key
// must equal the output port id. Back-edge defaults are derived by scanning
// previous-iteration output records, keyed "nodeID.fieldName"; a field named
// differently from its port silently resolves to 0 on back edges.
type Node interface {
	// ID returns the node's unique id.
	ID() NodeID

	// TypeTag names the node kind (e.g. "constant", "accumulator").
	TypeTag() string

	// DefaultState returns the state record used when the caller supplies no
	// initial state for this node. May be nil for stateless kinds.
	DefaultState() Record

	// InputPorts returns the declared input ports.
	InputPorts() []Port

	// OutputPorts returns the declared output ports.
	OutputPorts() []Port

	// Compute evaluates the node for one iteration.
	Compute(inputs Inputs, ctx Context) (Record, error)
}

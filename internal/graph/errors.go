package graph

import (
	"errors"
	"fmt"
)

// StructuralError reports a violated graph invariant: a duplicate id, a
// port declared with the wrong kind, or an edge naming something that does
// not exist. Structural errors surface only from AddNode and Validate; the
// engine assumes a previously validated graph and never re-checks.
type StructuralError struct {
	// Code identifies the violated invariant.
	Code StructuralErrorCode

	// Message is a human-readable description.
	Message string

	// NodeID identifies the offending node, when known.
	NodeID NodeID

	// PortID identifies the offending port, when known.
	PortID PortID

	// EdgeID identifies the offending edge, when known.
	EdgeID EdgeID
}

// StructuralErrorCode categorizes structural errors.
type StructuralErrorCode string

const (
	// CodeDuplicateNode indicates two nodes share one id.
	CodeDuplicateNode StructuralErrorCode = "DUPLICATE_NODE"

	// CodeDuplicatePort indicates a node declares one port id twice within
	// the same kind category.
	CodeDuplicatePort StructuralErrorCode = "DUPLICATE_PORT"

	// CodePortKindMismatch indicates a port's declared kind does not match
	// its role (an input port declared as output, or vice versa).
	CodePortKindMismatch StructuralErrorCode = "PORT_KIND_MISMATCH"

	// CodeMissingNode indicates an edge references a node id not in the graph.
	CodeMissingNode StructuralErrorCode = "MISSING_NODE"

	// CodeMissingPort indicates an edge references a port the named node does
	// not declare with the required kind.
	CodeMissingPort StructuralErrorCode = "MISSING_PORT"
)

// Error implements the error interface.
func (e *StructuralError) Error() string {
	switch {
	case e.EdgeID != "":
		return fmt.Sprintf("%s: %s (edge=%s)", e.Code, e.Message, e.EdgeID)
	case e.NodeID != "" && e.PortID != "":
		return fmt.Sprintf("%s: %s (node=%s, port=%s)", e.Code, e.Message, e.NodeID, e.PortID)
	case e.NodeID != "":
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.NodeID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsStructuralError reports whether err is (or wraps) a StructuralError.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

func newStructuralError(code StructuralErrorCode, nodeID NodeID, portID PortID, msg string) *StructuralError {
	return &StructuralError{Code: code, Message: msg, NodeID: nodeID, PortID: portID}
}

func newEdgeError(code StructuralErrorCode, e Edge, msg string) *StructuralError {
	return &StructuralError{Code: code, Message: msg, EdgeID: e.ID}
}

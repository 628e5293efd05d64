package engine

import (
	"errors"
	"fmt"

	"github.com/causimlabs/causim/internal/graph"
)

// RunError represents a fatal condition detected during one Execute call.
//
// Run errors signal an inconsistency between the graph and the strategy (an
// edge naming a node the engine cannot resolve, a node missing from the
// computed order) or a node kind failing outright. They abort the run
// immediately and are never retried.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// NodeID identifies the node the engine could not resolve or evaluate.
	NodeID graph.NodeID

	// Err is the underlying node error, for CodeNodeFailed.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// CodeMissingNode indicates an edge references a node id absent from the
	// graph.
	CodeMissingNode RunErrorCode = "MISSING_NODE"

	// CodeMissingFromOrder indicates a node id absent from the order the
	// strategy computed.
	CodeMissingFromOrder RunErrorCode = "MISSING_FROM_ORDER"

	// CodeNodeFailed indicates a node's Compute returned an error.
	CodeNodeFailed RunErrorCode = "NODE_FAILED"

	// CodeCancelled indicates the caller's context was cancelled between
	// node evaluations.
	CodeCancelled RunErrorCode = "CANCELLED"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s (run=%s, node=%s)", e.Code, e.Message, e.RunID, e.NodeID)
	}
	return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
}

// Unwrap exposes the underlying node error.
func (e *RunError) Unwrap() error {
	return e.Err
}

// IsConsistencyError reports whether err is a run error caused by a
// graph/strategy inconsistency rather than a node failure.
func IsConsistencyError(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == CodeMissingNode || re.Code == CodeMissingFromOrder
	}
	return false
}

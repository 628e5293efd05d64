package cldfile

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Load error codes.
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeNoFiles     = "NO_FILES"
	ErrCodeScanError   = "SCAN_ERROR"
	ErrCodeLoadFailed  = "LOAD_FAILED"
	ErrCodeBuildFailed = "BUILD_FAILED"
	ErrCodeBadDocument = "BAD_DOCUMENT"
)

// LoadError represents an error that occurred while loading a diagram
// document.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

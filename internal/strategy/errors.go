package strategy

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid strategy constructor argument. It is raised
// at construction time, never deferred to execution, and is not retryable.
type ConfigError struct {
	// Strategy names the variant being constructed.
	Strategy string

	// Field names the offending argument.
	Field string

	// Message describes the constraint that was violated.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("CONFIG_ERROR: %s.%s: %s", e.Strategy, e.Field, e.Message)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func newConfigError(strategy, field, format string, args ...any) *ConfigError {
	return &ConfigError{Strategy: strategy, Field: field, Message: fmt.Sprintf(format, args...)}
}

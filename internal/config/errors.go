package config

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a fatal misconfiguration detected while
// constructing a component. It is never retried.
type ConfigurationError struct {
	Subject string // The setting, path or binary that is misconfigured
	Cause   error  // The underlying error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("configuration error: %v", e.Cause)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Subject, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(subject string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Subject: subject,
		Cause:   cause,
	}
}

// IsConfigurationError checks if an error is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cerr *ConfigurationError
	return errors.As(err, &cerr)
}

package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string) {
	*ve = append(*ve, ValidationError{Field: field, Message: message})
}

// Validate checks the configuration for values that cannot work at runtime.
func (c EaselConfig) Validate() error {
	var errs ValidationErrors

	if c.Tool.TimeoutSeconds <= 0 {
		errs.Add("tool.timeoutSeconds", "must be positive")
	}
	if c.Dispatch.Concurrency <= 0 {
		errs.Add("dispatch.concurrency", "must be positive")
	}
	if c.Dispatch.AcquireWaitSeconds < 0 {
		errs.Add("dispatch.acquireWaitSeconds", "must not be negative")
	}
	if c.Dispatch.HistorySize <= 0 {
		errs.Add("dispatch.historySize", "must be positive")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

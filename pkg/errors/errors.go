// Package errors provides the error types used across relsync.
// Errors split into two tiers: fatal errors (configuration problems,
// the initial record listing or dataset fetch failing) abort the run,
// while per-record store failures are logged and retried naturally on
// the next scheduled run.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Common sentinel errors.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable indicates that the record store is temporarily unavailable.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrCredentialsRequired indicates that credentials are required but not provided.
	ErrCredentialsRequired = errors.New("credentials required")
)

// APIError represents a failed HTTP exchange with the record store or
// the source dataset endpoint.
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Status)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Status)
}

// Unwrap implements errors.Unwrap.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *APIError) Is(target error) bool {
	if e.StatusCode >= 500 {
		return target == ErrStoreUnavailable
	}
	return false
}

// NewAPIError creates a new APIError.
func NewAPIError(endpoint string, statusCode int, status string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Status:     status,
	}
}

// ConfigError represents a configuration problem, typically a missing
// or invalid environment variable. Always fatal.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("config error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ValidationError represents a validation failure on a single field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ParseError represents a failure to decode a payload.
type ParseError struct {
	Format  string // "json", "yaml"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse error in %s from %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(format, source, message string, err error) *ParseError {
	return &ParseError{Format: format, Source: source, Message: message, Err: err}
}

// ResourceError wraps an error with resource operation context.
type ResourceError struct {
	Operation string // "fetch", "create", "update", "delete"
	Resource  string // "record", "dataset", "request"
	ID        string
	Err       error
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Resource, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// WrapResource wraps an error with resource operation context.
// Returns nil if err is nil.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

// WrapParse wraps a decoding error with format and source context.
// Returns nil if err is nil.
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, source, err.Error(), err)
}

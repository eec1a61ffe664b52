// Package errors provides the error taxonomy for hfrsync.
// Typed errors carry enough context (feed, page, code, endpoint) to be
// logged once at the boundary where they are recovered, while the sentinel
// values keep errors.Is checks cheap for callers that only need the class.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Join returns an error that wraps the given errors.
var Join = errors.Join

// Sentinel errors
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates that an upstream service is temporarily unavailable
	ErrUnavailable = errors.New("service unavailable")

	// ErrRateLimited indicates that an upstream rate limit was hit
	ErrRateLimited = errors.New("rate limited")

	// ErrFetchAborted indicates a feed stopped after exhausting its page retry ceiling
	ErrFetchAborted = errors.New("fetch aborted")

	// ErrCodeConflict indicates a code is already owned by another location
	ErrCodeConflict = errors.New("code conflict")

	// ErrTagMismatch indicates a location was found by code but carries a different level tag
	ErrTagMismatch = errors.New("tag mismatch")

	// ErrOrphan indicates a location below the root levels was requested without a parent
	ErrOrphan = errors.New("missing parent")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a non-success response or transport failure from
// the registry or an upstream feed.
type APIError struct {
	Service    string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d) at %s: %s", e.Service, e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s API error at %s: %s", e.Service, e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode >= 500:
		return target == ErrUnavailable
	}
	return false
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// ParseError represents an error when decoding a wire format
type ParseError struct {
	Format  string // "json", "csv"
	Source  string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" && e.Line > 0 {
		return fmt.Sprintf("%s parse error in %s at line %d: %s", e.Format, e.Source, e.Line, e.Message)
	}
	if e.Source != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, source, message string, err error) *ParseError {
	return &ParseError{Format: format, Source: source, Message: message, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "open", "write"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// ResourceError represents a failed operation on a registry resource
type ResourceError struct {
	Operation string // "create", "rename", "reparent", "set-attribute", "list"
	Resource  string // "location", "request"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Message: message, Err: err}
}

// FetchError reports a feed page that could not be retrieved within its
// attempt ceiling. It always matches ErrFetchAborted.
type FetchError struct {
	Feed     string
	Page     int
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("feed %s: page %d abandoned after %d attempts: %v", e.Feed, e.Page, e.Attempts, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchAborted
}

// RecordError reports a single upstream record that could not be reconciled.
type RecordError struct {
	Feed  string
	Page  int
	Index int
	Code  string
	Err   error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("feed %s page %d record %d (code %s): %v", e.Feed, e.Page, e.Index, e.Code, e.Err)
	}
	return fmt.Sprintf("feed %s page %d record %d: %v", e.Feed, e.Page, e.Index, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCodeConflict checks if an error reports a code already owned by another location
func IsCodeConflict(err error) bool {
	return errors.Is(err, ErrCodeConflict)
}

// IsFetchAborted checks if an error reports an abandoned feed
func IsFetchAborted(err error) bool {
	return errors.Is(err, ErrFetchAborted)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, source, err.Error(), err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(service, endpoint string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Service:    service,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}

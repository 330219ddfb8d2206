// Package errors provides custom error types for the tubmerge system.
// These errors enable programmatic error checking and consistent messages
// across the datastore and migration layers.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the tubmerge system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrReadOnly indicates an attempt to modify a read-only resource
	ErrReadOnly = errors.New("read only")

	// ErrClosed indicates an operation on an already closed writer
	ErrClosed = errors.New("writer closed")

	// ErrMalformedManifest indicates a manifest that does not contain the
	// expected five JSON lines
	ErrMalformedManifest = errors.New("malformed manifest")
)

// ManifestError represents a failure to read or write a dataset manifest
type ManifestError struct {
	Path    string
	Line    int // 1-based manifest line, 0 if not line-specific
	Message string
	Err     error
}

// Error implements the error interface
func (e *ManifestError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("manifest %s line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ManifestError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ManifestError) Is(target error) bool {
	return target == ErrMalformedManifest
}

// NewManifestError creates a new ManifestError
func NewManifestError(path string, line int, message string, err error) *ManifestError {
	return &ManifestError{Path: path, Line: line, Message: message, Err: err}
}

// RecordError represents a failure while reading or writing a single record
type RecordError struct {
	Segment string // catalog segment the record came from
	Index   int    // record index within the dataset, -1 if unknown
	Field   string // offending field, if any
	Err     error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("record %d in %s, field %s: %v", e.Index, e.Segment, e.Field, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("record %d in %s: %v", e.Index, e.Segment, e.Err)
	default:
		return fmt.Sprintf("record in %s: %v", e.Segment, e.Err)
	}
}

// Unwrap implements errors.Unwrap
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError creates a new RecordError
func NewRecordError(segment string, index int, field string, err error) *RecordError {
	return &RecordError{Segment: segment, Index: index, Field: field, Err: err}
}

// IOError represents a file system I/O failure
type IOError struct {
	Operation string // read, write, open, close, ...
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ParseError represents a failure to parse structured data
type ParseError struct {
	Format  string // json, yaml, jpeg, ...
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("failed to parse %s from %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
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
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
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

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapRecord wraps an error as a RecordError
func WrapRecord(segment string, index int, field string, err error) error {
	if err == nil {
		return nil
	}
	return NewRecordError(segment, index, field, err)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
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

// IsReadOnly checks if an error is a read-only error
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

// IsMalformedManifest checks if an error indicates a malformed manifest
func IsMalformedManifest(err error) bool {
	return errors.Is(err, ErrMalformedManifest)
}

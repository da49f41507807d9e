// Package errors provides error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeConfig indicates a configuration error (fatal to the run)
	TypeConfig Type = "CONFIG_ERROR"

	// TypeIngest indicates a supplier-file parsing error
	TypeIngest Type = "INGEST_ERROR"

	// TypeNotFound indicates no remote product matched a supplier reference
	TypeNotFound Type = "NOT_FOUND"

	// TypeAmbiguous indicates more than one remote product matched
	TypeAmbiguous Type = "AMBIGUOUS_MATCH"

	// TypeTransient indicates a retryable network or server failure
	TypeTransient Type = "TRANSIENT_ERROR"

	// TypeMethodNotAllowed indicates the host rejected the update verb
	TypeMethodNotAllowed Type = "METHOD_NOT_ALLOWED"

	// TypeAuthorization indicates rejected credentials or forbidden access
	TypeAuthorization Type = "AUTHORIZATION_ERROR"

	// TypeValidation indicates the remote system rejected the payload
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeCancelled indicates the run was cancelled by the operator
	TypeCancelled Type = "CANCELLED"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error (or any error it wraps) is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the type of a domain error, or TypeInternal for foreign errors
func TypeOf(err error) Type {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// Ingest creates a supplier-file parsing error
func Ingest(message string, cause error) *Error {
	return Wrap(TypeIngest, message, cause)
}

// NotFound creates a not found error for a supplier reference
func NotFound(supplierRef string) *Error {
	return Newf(TypeNotFound, "no remote product matches supplier reference %q", supplierRef)
}

// Ambiguous creates an ambiguous match error naming the reference and count
func Ambiguous(supplierRef string, count int) *Error {
	return Newf(TypeAmbiguous, "supplier reference %q matches %d remote products", supplierRef, count)
}

// Transient creates a retryable failure
func Transient(message string, cause error) *Error {
	return Wrap(TypeTransient, message, cause)
}

// Authorization creates an authorization error
func Authorization(message string) *Error {
	return New(TypeAuthorization, message)
}

// Validation creates a validation error with server-provided detail
func Validation(message string) *Error {
	return New(TypeValidation, message)
}

// Cancelled creates a run-cancelled error
func Cancelled() *Error {
	return New(TypeCancelled, "run cancelled")
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}

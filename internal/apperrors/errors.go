package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal is returned when an unexpected infrastructure failure is hidden from the caller.
var ErrInternal = errors.New("internal error")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller lacks the capability required for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInsufficientFunds is returned when a debit would drive a credit balance below zero.
var ErrInsufficientFunds = errors.New("insufficient credits")

// ErrTypeUnavailable is returned when a request type is missing or inactive.
var ErrTypeUnavailable = errors.New("request type unavailable")

// ErrInvalidState is returned when an operation is not allowed from the entity's current state.
var ErrInvalidState = errors.New("invalid state for operation")

// ErrStaleState is returned when the expected prior status no longer holds.
var ErrStaleState = errors.New("stale state: status changed concurrently")

// ErrAlreadyPublished guards the one-to-one request/published-result invariant.
var ErrAlreadyPublished = errors.New("result already published")

// ErrTransient marks a generation failure that may succeed on retry.
var ErrTransient = errors.New("transient generation failure")

// ErrFatal marks a generation failure that retrying cannot fix.
var ErrFatal = errors.New("fatal generation failure")

// AppError carries an HTTP-ish status code alongside a wrapped infrastructure error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationError reports field-level validation failures.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError from a field->message map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

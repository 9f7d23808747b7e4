// Package errors defines the typed error taxonomy returned by the engine.
// Callers distinguish the kinds with the Is* helpers rather than string matching.
package errors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input or a violated invariant at the boundary.
// The caller can always recover by correcting the input; it is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced item or lock that is absent from the owner's scope.
type NotFoundError struct {
	Resource string
	ID       uint
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFoundError creates a not-found error for a resource id.
func NewNotFoundError(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports an optimistic-concurrency failure on queue ordering or lock state.
type ConflictError struct {
	Resource string
	Reason   string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Reason)
}

// NewConflictError creates a conflict error.
func NewConflictError(resource, format string, args ...interface{}) error {
	return &ConflictError{Resource: resource, Reason: fmt.Sprintf(format, args...)}
}

// PropagationLimitError signals that propagation visited more locks than the owner has,
// which only happens with a malformed lock configuration. It is fatal for the command.
type PropagationLimitError struct {
	OwnerID string
	Visits  int
	Limit   int
}

// Error implements the error interface.
func (e *PropagationLimitError) Error() string {
	return fmt.Sprintf("propagation for owner %s exceeded %d lock visits (limit %d): lock configuration needs cleanup",
		e.OwnerID, e.Visits, e.Limit)
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict checks if an error is a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsPropagationLimit checks if an error is a PropagationLimitError.
func IsPropagationLimit(err error) bool {
	var target *PropagationLimitError
	return errors.As(err, &target)
}

// IsDomain reports whether err belongs to the taxonomy above.
// Domain errors are final; only infrastructure errors are worth retrying.
func IsDomain(err error) bool {
	return IsValidation(err) || IsNotFound(err) || IsConflict(err) || IsPropagationLimit(err)
}

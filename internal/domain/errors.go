// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced to API clients. Each of the three
// domain error kinds maps to exactly one code.
const (
	CodeNotFound         = "ENTITY_NOT_FOUND"
	CodeDuplicateEntity  = "DUPLICATE_ENTITY"
	CodeInvalidOperation = "INVALID_OPERATION"
)

// Common domain errors used across the application.
var (
	// ErrInvalidOperation is returned when a lifecycle guard or business
	// rule is violated. It is always wrapped with a message identifying the
	// specific rule (e.g. the attempted status transition).
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrDuplicateEntity is returned when a uniqueness precondition is
	// violated before insert. Wrapped by DuplicateEntityError.
	ErrDuplicateEntity = errors.New("entity already exists")

	// ErrCurriculumImmutable is returned when an update attempts to change a
	// student's curriculum after it has been assigned.
	ErrCurriculumImmutable = fmt.Errorf(
		"%w: student curriculum cannot be changed once assigned", ErrInvalidOperation)

	// ErrCourseHardDelete is returned for any attempt to physically remove a
	// course row. Courses are soft-deleted by clearing the active flag.
	ErrCourseHardDelete = fmt.Errorf(
		"%w: courses cannot be hard-deleted, clear the active flag instead", ErrInvalidOperation)
)

// InvalidOperationf builds an ErrInvalidOperation with a formatted message
// describing the violated rule.
func InvalidOperationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}

// DuplicateEntityError reports a uniqueness violation detected before insert,
// naming the entity, field, and conflicting value.
type DuplicateEntityError struct {
	Entity string
	Field  string
	Value  string
}

// Error implements the error interface for DuplicateEntityError.
func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

// Is reports whether this error matches ErrDuplicateEntity, supporting
// errors.Is checks at the API boundary.
func (e *DuplicateEntityError) Is(target error) bool {
	return target == ErrDuplicateEntity
}

// NewDuplicateEntityError creates a DuplicateEntityError for the given
// entity, field, and value.
func NewDuplicateEntityError(entity, field, value string) *DuplicateEntityError {
	return &DuplicateEntityError{Entity: entity, Field: field, Value: value}
}

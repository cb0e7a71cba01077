package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert would violate a uniqueness
	// constraint. The service layer performs an explicit duplicate check
	// first; this error is the storage-level backstop.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or
	// violates a referential constraint before being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails to
	// commit or an operation within it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors.

	ErrProgramNotFound      = fmt.Errorf("%w: program", ErrNotFound)
	ErrCurriculumNotFound   = fmt.Errorf("%w: curriculum", ErrNotFound)
	ErrOutcomeNotFound      = fmt.Errorf("%w: learning outcome", ErrNotFound)
	ErrCourseNotFound       = fmt.Errorf("%w: course", ErrNotFound)
	ErrStudentNotFound      = fmt.Errorf("%w: student", ErrNotFound)
	ErrEnrollmentNotFound   = fmt.Errorf("%w: enrollment", ErrNotFound)
	ErrPrerequisiteNotFound = fmt.Errorf("%w: prerequisite", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)

	// ErrEmailExists indicates that a user with the given email already
	// exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

package store

import (
	"context"
	"database/sql"

	"github.com/akademika/obe-api/internal/domain"
)

// EnrollmentStore defines the persistence operations for course enrollments.
type EnrollmentStore interface {
	// Create saves a new enrollment. Returns ErrDuplicate if the student
	// already has a non-dropped enrollment for the course in the same term.
	Create(ctx context.Context, enrollment *domain.Enrollment) error

	// GetByID retrieves an enrollment by its ID. Returns
	// ErrEnrollmentNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Enrollment, error)

	// ListByStudent returns a student's enrollments, newest term first. An
	// empty term filters nothing.
	ListByStudent(ctx context.Context, studentID, term string) ([]*domain.Enrollment, error)

	// HasActiveOrPassed reports whether the student already has an active,
	// repeat, or passed enrollment for the course in the given term.
	HasActiveOrPassed(ctx context.Context, studentID, courseCode, term string) (bool, error)

	// Update saves modifications to an existing enrollment. Returns
	// ErrEnrollmentNotFound if it does not exist.
	Update(ctx context.Context, enrollment *domain.Enrollment) error

	// WithTx returns a store instance that runs its operations within the
	// given transaction.
	WithTx(tx *sql.Tx) EnrollmentStore
}

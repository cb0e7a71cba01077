package store

import (
	"context"
	"database/sql"

	"github.com/akademika/obe-api/internal/domain"
)

// StudentStore defines the persistence operations for students.
type StudentStore interface {
	// Create saves a new student. Returns ErrDuplicate if the student ID or
	// email is already taken.
	Create(ctx context.Context, student *domain.Student) error

	// GetByID retrieves a student by their ID (NIM). Returns
	// ErrStudentNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*domain.Student, error)

	// ListByProgram returns the students of a program filtered by cohort year
	// and status. Zero values filter nothing.
	ListByProgram(ctx context.Context, programID string, cohortYear int, status domain.StudentStatus) ([]*domain.Student, error)

	// ListByCurriculum returns the students assigned to a curriculum.
	ListByCurriculum(ctx context.Context, curriculumID int64) ([]*domain.Student, error)

	// Update saves modifications to an existing student. A student already
	// assigned to a curriculum cannot be moved to a different one; such an
	// update fails with domain.ErrCurriculumImmutable. Returns
	// ErrStudentNotFound if the student does not exist.
	Update(ctx context.Context, student *domain.Student) error

	// WithTx returns a store instance that runs its operations within the
	// given transaction.
	WithTx(tx *sql.Tx) StudentStore
}

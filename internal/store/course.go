package store

import (
	"context"
	"database/sql"

	"github.com/akademika/obe-api/internal/domain"
)

// CourseStore defines the persistence operations for courses. Courses are
// identified by (code, curriculum) so the same course code can carry different
// credits or semesters across curriculum versions.
type CourseStore interface {
	// Create saves a new course. Returns ErrDuplicate if the course code
	// already exists within the curriculum.
	Create(ctx context.Context, course *domain.Course) error

	// Get retrieves a course by code within a curriculum. Returns
	// ErrCourseNotFound if it does not exist.
	Get(ctx context.Context, code string, curriculumID int64) (*domain.Course, error)

	// ListByCurriculum returns the courses of a curriculum ordered by
	// semester, then code. Semester 0 filters nothing.
	ListByCurriculum(ctx context.Context, curriculumID int64, semester int) ([]*domain.Course, error)

	// Update saves modifications to an existing course. Returns
	// ErrCourseNotFound if it does not exist.
	Update(ctx context.Context, course *domain.Course) error

	// Deactivate marks a course inactive without removing its row. Historical
	// enrollment records keep referring to it.
	Deactivate(ctx context.Context, code string, curriculumID int64) error

	// Delete always fails with domain.ErrCourseHardDelete: course rows are
	// never removed because enrollment history references them. Deactivate is
	// the supported way to retire a course.
	Delete(ctx context.Context, code string, curriculumID int64) error

	// TotalCredits returns the credit sum of the active courses in a
	// curriculum.
	TotalCredits(ctx context.Context, curriculumID int64) (int, error)

	// SemesterStats returns per-semester aggregates (course count, credit sum)
	// for the active courses of a curriculum.
	SemesterStats(ctx context.Context, curriculumID int64) ([]*domain.SemesterStats, error)

	// AddPrerequisite links a prerequisite course to a course within the same
	// curriculum. Returns ErrDuplicate if the link already exists.
	AddPrerequisite(ctx context.Context, p *domain.Prerequisite) error

	// ListPrerequisites returns the prerequisites of a course.
	ListPrerequisites(ctx context.Context, courseCode string, curriculumID int64) ([]*domain.Prerequisite, error)

	// RemovePrerequisite deletes a prerequisite link. Returns
	// ErrPrerequisiteNotFound if it does not exist.
	RemovePrerequisite(ctx context.Context, id int64) error

	// WithTx returns a store instance that runs its operations within the
	// given transaction.
	WithTx(tx *sql.Tx) CourseStore
}

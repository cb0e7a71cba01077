package store

import (
	"context"
	"database/sql"

	"github.com/akademika/obe-api/internal/domain"
)

// CurriculumStore defines the persistence operations for curricula.
type CurriculumStore interface {
	// Create saves a new curriculum. Returns ErrDuplicate if a curriculum with
	// the same code already exists within the program.
	Create(ctx context.Context, curriculum *domain.Curriculum) error

	// GetByID retrieves a curriculum by its ID. Returns ErrCurriculumNotFound
	// if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Curriculum, error)

	// GetByCode retrieves a curriculum by program and code. Returns
	// ErrCurriculumNotFound if it does not exist.
	GetByCode(ctx context.Context, programID, code string) (*domain.Curriculum, error)

	// GetPrimary retrieves the primary curriculum of a program. Returns
	// ErrCurriculumNotFound when the program has no primary curriculum.
	GetPrimary(ctx context.Context, programID string) (*domain.Curriculum, error)

	// ListByProgram returns all curricula of a program, newest effective year
	// first. An empty status filters nothing.
	ListByProgram(ctx context.Context, programID string, status domain.CurriculumStatus) ([]*domain.Curriculum, error)

	// Update saves modifications to an existing curriculum. Returns
	// ErrCurriculumNotFound if it does not exist.
	Update(ctx context.Context, curriculum *domain.Curriculum) error

	// ActivateExclusive marks the given curriculum primary and clears the
	// primary flag on every other curriculum of the same program, as a single
	// statement so no two curricula are ever primary at once.
	ActivateExclusive(ctx context.Context, id int64, programID string) error

	// Delete removes a curriculum permanently. Callers must ensure the
	// curriculum is still a draft. Returns ErrCurriculumNotFound if it does
	// not exist.
	Delete(ctx context.Context, id int64) error

	// Stats returns aggregate counts for a curriculum: learning outcomes,
	// courses, and students assigned to it.
	Stats(ctx context.Context, id int64) (*domain.CurriculumStats, error)

	// CountActiveStudents returns the number of students with active status
	// assigned to the curriculum. Used to gate archiving.
	CountActiveStudents(ctx context.Context, id int64) (int, error)

	// WithTx returns a store instance that runs its operations within the
	// given transaction.
	WithTx(tx *sql.Tx) CurriculumStore
}

package store

import (
	"context"
	"database/sql"

	"github.com/akademika/obe-api/internal/domain"
)

// OutcomeStore defines the persistence operations for learning outcomes.
type OutcomeStore interface {
	// Create saves a new learning outcome. Returns ErrDuplicate if an outcome
	// with the same code already exists within the curriculum.
	Create(ctx context.Context, outcome *domain.LearningOutcome) error

	// GetByID retrieves a learning outcome by its ID. Returns
	// ErrOutcomeNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.LearningOutcome, error)

	// GetByCode retrieves an outcome by curriculum and code. Returns
	// ErrOutcomeNotFound if it does not exist.
	GetByCode(ctx context.Context, curriculumID int64, code string) (*domain.LearningOutcome, error)

	// ListByCurriculum returns the outcomes of a curriculum ordered by display
	// order, then code. An empty category filters nothing.
	ListByCurriculum(ctx context.Context, curriculumID int64, category domain.OutcomeCategory) ([]*domain.LearningOutcome, error)

	// CountByCategory returns the number of outcomes per category for a
	// curriculum.
	CountByCategory(ctx context.Context, curriculumID int64) (map[domain.OutcomeCategory]int, error)

	// MaxDisplayOrder returns the highest display order in use within a
	// curriculum, or 0 when the curriculum has no outcomes.
	MaxDisplayOrder(ctx context.Context, curriculumID int64) (int, error)

	// Update saves modifications to an existing outcome. Returns
	// ErrOutcomeNotFound if it does not exist.
	Update(ctx context.Context, outcome *domain.LearningOutcome) error

	// Deactivate clears an outcome's active flag. Outcomes are never
	// hard-deleted except by cascade when a draft curriculum is removed.
	// Returns ErrOutcomeNotFound if it does not exist.
	Deactivate(ctx context.Context, id int64) error

	// WithTx returns a store instance that runs its operations within the
	// given transaction.
	WithTx(tx *sql.Tx) OutcomeStore
}

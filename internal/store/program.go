package store

import (
	"context"
	"database/sql"

	"github.com/akademika/obe-api/internal/domain"
)

// ProgramStore defines the persistence operations for study programs.
type ProgramStore interface {
	// Create saves a new program. Returns ErrDuplicate if the program ID is
	// already taken.
	Create(ctx context.Context, program *domain.Program) error

	// GetByID retrieves a program by its ID. Returns ErrProgramNotFound if it
	// does not exist.
	GetByID(ctx context.Context, id string) (*domain.Program, error)

	// List returns all programs ordered by ID.
	List(ctx context.Context) ([]*domain.Program, error)

	// Update saves modifications to an existing program. Returns
	// ErrProgramNotFound if it does not exist.
	Update(ctx context.Context, program *domain.Program) error

	// WithTx returns a store instance that runs its operations within the
	// given transaction.
	WithTx(tx *sql.Tx) ProgramStore
}

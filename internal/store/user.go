package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/akademika/obe-api/internal/domain"
)

// UserStore defines the persistence operations for user accounts.
type UserStore interface {
	// Create saves a new user, hashing the plaintext password first. Returns
	// ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if it does not
	// exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if it
	// does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update saves modifications to an existing user, re-hashing the password
	// when a new plaintext one is set. Returns ErrUserNotFound if the user
	// does not exist.
	Update(ctx context.Context, user *domain.User) error

	// WithTx returns a store instance that runs its operations within the
	// given transaction.
	WithTx(tx *sql.Tx) UserStore
}

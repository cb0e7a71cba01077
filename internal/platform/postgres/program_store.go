package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/platform/logger"
	"github.com/akademika/obe-api/internal/store"
)

// PostgresProgramStore implements store.ProgramStore backed by PostgreSQL.
type PostgresProgramStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgramStore creates a PostgreSQL implementation of the
// ProgramStore interface.
func NewPostgresProgramStore(db store.DBTX, logger *slog.Logger) *PostgresProgramStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgramStore{
		db:     db,
		logger: logger.With(slog.String("component", "program_store")),
	}
}

var _ store.ProgramStore = (*PostgresProgramStore)(nil)

const programColumns = `id, faculty, name, level, accreditation, created_at, updated_at`

// Create saves a new study program.
func (s *PostgresProgramStore) Create(ctx context.Context, program *domain.Program) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := program.Validate(); err != nil {
		log.Warn("program validation failed during create",
			slog.String("error", err.Error()),
			slog.String("program_id", program.ID))
		return err
	}

	query := `
		INSERT INTO programs (id, faculty, name, level, accreditation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		program.ID,
		program.Faculty,
		program.Name,
		program.Level,
		nullableString(program.Accreditation),
		program.CreatedAt,
		program.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: program %q", store.ErrDuplicate, program.ID)
		}
		log.Error("failed to create program",
			slog.String("error", err.Error()),
			slog.String("program_id", program.ID))
		return MapError(err)
	}

	log.Info("program created", slog.String("program_id", program.ID))
	return nil
}

// GetByID retrieves a program by ID.
func (s *PostgresProgramStore) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1`

	p, err := scanProgram(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgramNotFound
		}
		log.Error("failed to get program",
			slog.String("error", err.Error()),
			slog.String("program_id", id))
		return nil, MapError(err)
	}
	return p, nil
}

// List returns all programs ordered by ID.
func (s *PostgresProgramStore) List(ctx context.Context) ([]*domain.Program, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + programColumns + ` FROM programs ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list programs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	programs := []*domain.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			log.Error("failed to scan program row", slog.String("error", err.Error()))
			return nil, err
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return programs, nil
}

// Update saves modifications to an existing program.
func (s *PostgresProgramStore) Update(ctx context.Context, program *domain.Program) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := program.Validate(); err != nil {
		log.Warn("program validation failed during update",
			slog.String("error", err.Error()),
			slog.String("program_id", program.ID))
		return err
	}

	program.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE programs
		SET faculty = $1, name = $2, level = $3, accreditation = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		program.Faculty,
		program.Name,
		program.Level,
		nullableString(program.Accreditation),
		program.UpdatedAt,
		program.ID,
	)
	if err != nil {
		log.Error("failed to update program",
			slog.String("error", err.Error()),
			slog.String("program_id", program.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProgramNotFound); err != nil {
		return err
	}

	log.Info("program updated", slog.String("program_id", program.ID))
	return nil
}

// WithTx returns a store instance bound to the given transaction.
func (s *PostgresProgramStore) WithTx(tx *sql.Tx) store.ProgramStore {
	return &PostgresProgramStore{db: tx, logger: s.logger}
}

func scanProgram(row rowScanner) (*domain.Program, error) {
	var (
		p             domain.Program
		accreditation sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.Faculty,
		&p.Name,
		&p.Level,
		&accreditation,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Accreditation = accreditation.String
	return &p, nil
}

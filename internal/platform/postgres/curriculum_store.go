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

// PostgresCurriculumStore implements store.CurriculumStore backed by
// PostgreSQL.
type PostgresCurriculumStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCurriculumStore creates a PostgreSQL implementation of the
// CurriculumStore interface. The caller owns the database handle. A nil
// logger falls back to slog.Default.
func NewPostgresCurriculumStore(db store.DBTX, logger *slog.Logger) *PostgresCurriculumStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCurriculumStore{
		db:     db,
		logger: logger.With(slog.String("component", "curriculum_store")),
	}
}

var _ store.CurriculumStore = (*PostgresCurriculumStore)(nil)

const curriculumColumns = `id, program_id, code, name, effective_year, end_year,
	description, status, is_primary, decree_number, decree_date, created_at, updated_at`

// Create saves a new curriculum and fills in its generated ID.
// Returns store.ErrDuplicate if the (program, code) pair is taken.
func (s *PostgresCurriculumStore) Create(ctx context.Context, curriculum *domain.Curriculum) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := curriculum.Validate(); err != nil {
		log.Warn("curriculum validation failed during create",
			slog.String("error", err.Error()),
			slog.String("code", curriculum.Code))
		return err
	}

	query := `
		INSERT INTO curricula (program_id, code, name, effective_year, end_year,
			description, status, is_primary, decree_number, decree_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		curriculum.ProgramID,
		curriculum.Code,
		curriculum.Name,
		curriculum.EffectiveYear,
		curriculum.EndYear,
		nullableString(curriculum.Description),
		curriculum.Status,
		curriculum.IsPrimary,
		nullableString(curriculum.DecreeNumber),
		curriculum.DecreeDate,
		curriculum.CreatedAt,
		curriculum.UpdatedAt,
	).Scan(&curriculum.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate curriculum code",
				slog.String("program_id", curriculum.ProgramID),
				slog.String("code", curriculum.Code))
			return fmt.Errorf("%w: curriculum code %q in program %q",
				store.ErrDuplicate, curriculum.Code, curriculum.ProgramID)
		}
		log.Error("failed to create curriculum",
			slog.String("error", err.Error()),
			slog.String("code", curriculum.Code))
		return MapError(err)
	}

	log.Info("curriculum created",
		slog.Int64("curriculum_id", curriculum.ID),
		slog.String("program_id", curriculum.ProgramID),
		slog.String("code", curriculum.Code))
	return nil
}

// GetByID retrieves a curriculum by ID.
func (s *PostgresCurriculumStore) GetByID(ctx context.Context, id int64) (*domain.Curriculum, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curricula WHERE id = $1`
	return s.scanOne(ctx, query, id)
}

// GetByCode retrieves a curriculum by program and code.
func (s *PostgresCurriculumStore) GetByCode(ctx context.Context, programID, code string) (*domain.Curriculum, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curricula WHERE program_id = $1 AND code = $2`
	return s.scanOne(ctx, query, programID, code)
}

// GetPrimary retrieves the primary curriculum of a program. At most one row
// can match because a partial unique index enforces the primary flag.
func (s *PostgresCurriculumStore) GetPrimary(ctx context.Context, programID string) (*domain.Curriculum, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curricula WHERE program_id = $1 AND is_primary`
	return s.scanOne(ctx, query, programID)
}

// ListByProgram returns a program's curricula, newest effective year first.
func (s *PostgresCurriculumStore) ListByProgram(
	ctx context.Context,
	programID string,
	status domain.CurriculumStatus,
) ([]*domain.Curriculum, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + curriculumColumns + `
		FROM curricula
		WHERE program_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY effective_year DESC, code`

	rows, err := s.db.QueryContext(ctx, query, programID, string(status))
	if err != nil {
		log.Error("failed to list curricula",
			slog.String("error", err.Error()),
			slog.String("program_id", programID))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	curricula := []*domain.Curriculum{}
	for rows.Next() {
		c, err := scanCurriculum(rows)
		if err != nil {
			log.Error("failed to scan curriculum row", slog.String("error", err.Error()))
			return nil, err
		}
		curricula = append(curricula, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return curricula, nil
}

// Update saves modifications to an existing curriculum.
func (s *PostgresCurriculumStore) Update(ctx context.Context, curriculum *domain.Curriculum) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := curriculum.Validate(); err != nil {
		log.Warn("curriculum validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", curriculum.ID))
		return err
	}

	curriculum.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE curricula
		SET name = $1, effective_year = $2, end_year = $3, description = $4,
			status = $5, is_primary = $6, decree_number = $7, decree_date = $8,
			updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		curriculum.Name,
		curriculum.EffectiveYear,
		curriculum.EndYear,
		nullableString(curriculum.Description),
		curriculum.Status,
		curriculum.IsPrimary,
		nullableString(curriculum.DecreeNumber),
		curriculum.DecreeDate,
		curriculum.UpdatedAt,
		curriculum.ID,
	)
	if err != nil {
		log.Error("failed to update curriculum",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", curriculum.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCurriculumNotFound); err != nil {
		return err
	}

	log.Info("curriculum updated",
		slog.Int64("curriculum_id", curriculum.ID),
		slog.String("status", string(curriculum.Status)))
	return nil
}

// ActivateExclusive flips the primary flag to the target curriculum in a
// single UPDATE across the program, so there is no window in which zero or
// two curricula are primary.
func (s *PostgresCurriculumStore) ActivateExclusive(ctx context.Context, id int64, programID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE curricula
		SET is_primary = (id = $1), updated_at = $2
		WHERE program_id = $3
	`
	result, err := s.db.ExecContext(ctx, query, id, time.Now().UTC(), programID)
	if err != nil {
		log.Error("failed to swap primary curriculum",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", id),
			slog.String("program_id", programID))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCurriculumNotFound); err != nil {
		return err
	}

	log.Info("primary curriculum set",
		slog.Int64("curriculum_id", id),
		slog.String("program_id", programID))
	return nil
}

// Delete removes a curriculum row. The service layer only calls this for
// drafts; foreign keys from outcomes and courses cascade.
func (s *PostgresCurriculumStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM curricula WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete curriculum",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCurriculumNotFound); err != nil {
		return err
	}

	log.Info("curriculum deleted", slog.Int64("curriculum_id", id))
	return nil
}

// Stats returns the aggregate counts for a curriculum. The curriculum row
// itself anchors the query so a missing curriculum yields
// store.ErrCurriculumNotFound rather than a row of zeros.
func (s *PostgresCurriculumStore) Stats(ctx context.Context, id int64) (*domain.CurriculumStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT
			(SELECT COUNT(*) FROM learning_outcomes lo WHERE lo.curriculum_id = c.id AND lo.is_active),
			(SELECT COUNT(*) FROM courses co WHERE co.curriculum_id = c.id AND co.is_active),
			(SELECT COUNT(*) FROM students st WHERE st.curriculum_id = c.id)
		FROM curricula c
		WHERE c.id = $1
	`

	var stats domain.CurriculumStats
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&stats.OutcomeCount,
		&stats.CourseCount,
		&stats.StudentCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCurriculumNotFound
		}
		log.Error("failed to load curriculum stats",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", id))
		return nil, MapError(err)
	}
	return &stats, nil
}

// CountActiveStudents returns how many active students are assigned to the
// curriculum.
func (s *PostgresCurriculumStore) CountActiveStudents(ctx context.Context, id int64) (int, error) {
	query := `SELECT COUNT(*) FROM students WHERE curriculum_id = $1 AND status = 'active'`

	var count int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx returns a store instance bound to the given transaction.
func (s *PostgresCurriculumStore) WithTx(tx *sql.Tx) store.CurriculumStore {
	return &PostgresCurriculumStore{db: tx, logger: s.logger}
}

func (s *PostgresCurriculumStore) scanOne(ctx context.Context, query string, args ...any) (*domain.Curriculum, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	c, err := scanCurriculum(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCurriculumNotFound
		}
		log.Error("failed to get curriculum", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return c, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCurriculum(row rowScanner) (*domain.Curriculum, error) {
	var (
		c            domain.Curriculum
		status       string
		description  sql.NullString
		decreeNumber sql.NullString
	)
	err := row.Scan(
		&c.ID,
		&c.ProgramID,
		&c.Code,
		&c.Name,
		&c.EffectiveYear,
		&c.EndYear,
		&description,
		&status,
		&c.IsPrimary,
		&decreeNumber,
		&c.DecreeDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = domain.CurriculumStatus(status)
	c.Description = description.String
	c.DecreeNumber = decreeNumber.String
	return &c, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}

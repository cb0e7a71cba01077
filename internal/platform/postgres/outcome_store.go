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

// PostgresOutcomeStore implements store.OutcomeStore backed by PostgreSQL.
type PostgresOutcomeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOutcomeStore creates a PostgreSQL implementation of the
// OutcomeStore interface.
func NewPostgresOutcomeStore(db store.DBTX, logger *slog.Logger) *PostgresOutcomeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOutcomeStore{
		db:     db,
		logger: logger.With(slog.String("component", "outcome_store")),
	}
}

var _ store.OutcomeStore = (*PostgresOutcomeStore)(nil)

const outcomeColumns = `id, curriculum_id, code, description, category,
	display_order, is_active, created_at, updated_at`

// Create saves a new learning outcome and fills in its generated ID.
func (s *PostgresOutcomeStore) Create(ctx context.Context, outcome *domain.LearningOutcome) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := outcome.Validate(); err != nil {
		log.Warn("outcome validation failed during create",
			slog.String("error", err.Error()),
			slog.String("code", outcome.Code))
		return err
	}

	query := `
		INSERT INTO learning_outcomes (curriculum_id, code, description, category,
			display_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		outcome.CurriculumID,
		outcome.Code,
		outcome.Description,
		outcome.Category,
		outcome.DisplayOrder,
		outcome.IsActive,
		outcome.CreatedAt,
		outcome.UpdatedAt,
	).Scan(&outcome.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: outcome code %q in curriculum %d",
				store.ErrDuplicate, outcome.Code, outcome.CurriculumID)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: curriculum %d not found",
				store.ErrInvalidEntity, outcome.CurriculumID)
		}
		log.Error("failed to create outcome",
			slog.String("error", err.Error()),
			slog.String("code", outcome.Code))
		return MapError(err)
	}

	log.Info("learning outcome created",
		slog.Int64("outcome_id", outcome.ID),
		slog.Int64("curriculum_id", outcome.CurriculumID),
		slog.String("code", outcome.Code))
	return nil
}

// GetByID retrieves a learning outcome by ID.
func (s *PostgresOutcomeStore) GetByID(ctx context.Context, id int64) (*domain.LearningOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + outcomeColumns + ` FROM learning_outcomes WHERE id = $1`

	o, err := scanOutcome(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOutcomeNotFound
		}
		log.Error("failed to get outcome",
			slog.String("error", err.Error()),
			slog.Int64("outcome_id", id))
		return nil, MapError(err)
	}
	return o, nil
}

// GetByCode retrieves an outcome by curriculum and code.
func (s *PostgresOutcomeStore) GetByCode(ctx context.Context, curriculumID int64, code string) (*domain.LearningOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + outcomeColumns + ` FROM learning_outcomes WHERE curriculum_id = $1 AND code = $2`

	o, err := scanOutcome(s.db.QueryRowContext(ctx, query, curriculumID, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOutcomeNotFound
		}
		log.Error("failed to get outcome by code",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", curriculumID),
			slog.String("code", code))
		return nil, MapError(err)
	}
	return o, nil
}

// ListByCurriculum returns the outcomes of a curriculum ordered by display
// order (unordered last), then code.
func (s *PostgresOutcomeStore) ListByCurriculum(
	ctx context.Context,
	curriculumID int64,
	category domain.OutcomeCategory,
) ([]*domain.LearningOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + outcomeColumns + `
		FROM learning_outcomes
		WHERE curriculum_id = $1 AND ($2 = '' OR category = $2)
		ORDER BY display_order NULLS LAST, code`

	rows, err := s.db.QueryContext(ctx, query, curriculumID, string(category))
	if err != nil {
		log.Error("failed to list outcomes",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", curriculumID))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	outcomes := []*domain.LearningOutcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			log.Error("failed to scan outcome row", slog.String("error", err.Error()))
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return outcomes, nil
}

// CountByCategory returns per-category outcome counts for a curriculum.
// Categories with no outcomes are present with a zero count.
func (s *PostgresOutcomeStore) CountByCategory(
	ctx context.Context,
	curriculumID int64,
) (map[domain.OutcomeCategory]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT category, COUNT(*)
		FROM learning_outcomes
		WHERE curriculum_id = $1 AND is_active
		GROUP BY category
	`
	rows, err := s.db.QueryContext(ctx, query, curriculumID)
	if err != nil {
		log.Error("failed to count outcomes by category",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", curriculumID))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	counts := make(map[domain.OutcomeCategory]int, len(domain.OutcomeCategories))
	for _, category := range domain.OutcomeCategories {
		counts[category] = 0
	}
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[domain.OutcomeCategory(category)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return counts, nil
}

// MaxDisplayOrder returns the highest display order within a curriculum, or 0
// when no outcome has one.
func (s *PostgresOutcomeStore) MaxDisplayOrder(ctx context.Context, curriculumID int64) (int, error) {
	query := `SELECT COALESCE(MAX(display_order), 0) FROM learning_outcomes WHERE curriculum_id = $1`

	var max int
	if err := s.db.QueryRowContext(ctx, query, curriculumID).Scan(&max); err != nil {
		return 0, MapError(err)
	}
	return max, nil
}

// Update saves modifications to an existing outcome.
func (s *PostgresOutcomeStore) Update(ctx context.Context, outcome *domain.LearningOutcome) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := outcome.Validate(); err != nil {
		log.Warn("outcome validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("outcome_id", outcome.ID))
		return err
	}

	outcome.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE learning_outcomes
		SET code = $1, description = $2, category = $3, display_order = $4,
			is_active = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		outcome.Code,
		outcome.Description,
		outcome.Category,
		outcome.DisplayOrder,
		outcome.IsActive,
		outcome.UpdatedAt,
		outcome.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: outcome code %q in curriculum %d",
				store.ErrDuplicate, outcome.Code, outcome.CurriculumID)
		}
		log.Error("failed to update outcome",
			slog.String("error", err.Error()),
			slog.Int64("outcome_id", outcome.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrOutcomeNotFound); err != nil {
		return err
	}

	log.Info("learning outcome updated", slog.Int64("outcome_id", outcome.ID))
	return nil
}

// Deactivate clears an outcome's active flag. The row stays; only the
// curriculum cascade removes outcome rows, and that cascade fires for drafts
// alone.
func (s *PostgresOutcomeStore) Deactivate(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE learning_outcomes
		SET is_active = FALSE, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to deactivate outcome",
			slog.String("error", err.Error()),
			slog.Int64("outcome_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrOutcomeNotFound); err != nil {
		return err
	}

	log.Info("learning outcome deactivated", slog.Int64("outcome_id", id))
	return nil
}

// WithTx returns a store instance bound to the given transaction.
func (s *PostgresOutcomeStore) WithTx(tx *sql.Tx) store.OutcomeStore {
	return &PostgresOutcomeStore{db: tx, logger: s.logger}
}

func scanOutcome(row rowScanner) (*domain.LearningOutcome, error) {
	var (
		o        domain.LearningOutcome
		category string
	)
	err := row.Scan(
		&o.ID,
		&o.CurriculumID,
		&o.Code,
		&o.Description,
		&category,
		&o.DisplayOrder,
		&o.IsActive,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Category = domain.OutcomeCategory(category)
	return &o, nil
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/platform/logger"
	"github.com/akademika/obe-api/internal/store"
)

// OutcomeService manages program learning outcomes (CPL) within a curriculum.
type OutcomeService interface {
	// Create saves a new learning outcome. When no display order is given the
	// outcome is appended after the highest existing order. Fails with a
	// DuplicateEntityError if the code is already used within the curriculum.
	Create(ctx context.Context, outcome *domain.LearningOutcome) error

	// Get retrieves a learning outcome by ID.
	Get(ctx context.Context, id int64) (*domain.LearningOutcome, error)

	// ListByCurriculum returns a curriculum's outcomes, optionally filtered by
	// category, in display order.
	ListByCurriculum(ctx context.Context, curriculumID int64, category domain.OutcomeCategory) ([]*domain.LearningOutcome, error)

	// CountByCategory returns the active outcome count per category.
	CountByCategory(ctx context.Context, curriculumID int64) (map[domain.OutcomeCategory]int, error)

	// Update modifies an outcome's description, category, order, and active
	// flag. The curriculum must still be modifiable.
	Update(ctx context.Context, outcome *domain.LearningOutcome) (*domain.LearningOutcome, error)

	// Remove soft-deletes an outcome by clearing its active flag.
	Remove(ctx context.Context, id int64) error

	// Reorder assigns display orders 1..n to the given outcomes, in order.
	// All outcomes must belong to the given curriculum.
	Reorder(ctx context.Context, curriculumID int64, orderedIDs []int64) error
}

type outcomeService struct {
	db              *sql.DB
	outcomeStore    store.OutcomeStore
	curriculumStore store.CurriculumStore
	logger          *slog.Logger
}

// NewOutcomeService creates an OutcomeService.
func NewOutcomeService(
	db *sql.DB,
	outcomeStore store.OutcomeStore,
	curriculumStore store.CurriculumStore,
	logger *slog.Logger,
) (OutcomeService, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if outcomeStore == nil {
		return nil, fmt.Errorf("outcomeStore cannot be nil")
	}
	if curriculumStore == nil {
		return nil, fmt.Errorf("curriculumStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &outcomeService{
		db:              db,
		outcomeStore:    outcomeStore,
		curriculumStore: curriculumStore,
		logger:          logger.With(slog.String("component", "outcome_service")),
	}, nil
}

func (s *outcomeService) Create(ctx context.Context, outcome *domain.LearningOutcome) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	curriculum, err := s.curriculumStore.GetByID(ctx, outcome.CurriculumID)
	if err != nil {
		return err
	}
	if !curriculum.CanBeModified() {
		return domain.InvalidOperationf(
			"cannot add outcomes: curriculum status is %q, must be %q or %q",
			curriculum.Status, domain.CurriculumStatusDraft, domain.CurriculumStatusReview)
	}

	_, err = s.outcomeStore.GetByCode(ctx, outcome.CurriculumID, outcome.Code)
	if err == nil {
		return domain.NewDuplicateEntityError("learning outcome", "code", outcome.Code)
	}
	if !store.IsNotFoundError(err) {
		return fmt.Errorf("failed to check outcome code: %w", err)
	}

	if outcome.DisplayOrder == nil {
		max, err := s.outcomeStore.MaxDisplayOrder(ctx, outcome.CurriculumID)
		if err != nil {
			return fmt.Errorf("failed to determine display order: %w", err)
		}
		next := max + 1
		outcome.DisplayOrder = &next
	}

	if err := s.outcomeStore.Create(ctx, outcome); err != nil {
		if store.IsDuplicateError(err) {
			return domain.NewDuplicateEntityError("learning outcome", "code", outcome.Code)
		}
		return err
	}

	log.Info("learning outcome created",
		slog.Int64("outcome_id", outcome.ID),
		slog.Int64("curriculum_id", outcome.CurriculumID),
		slog.String("category", string(outcome.Category)))
	return nil
}

func (s *outcomeService) Get(ctx context.Context, id int64) (*domain.LearningOutcome, error) {
	return s.outcomeStore.GetByID(ctx, id)
}

func (s *outcomeService) ListByCurriculum(
	ctx context.Context,
	curriculumID int64,
	category domain.OutcomeCategory,
) ([]*domain.LearningOutcome, error) {
	return s.outcomeStore.ListByCurriculum(ctx, curriculumID, category)
}

func (s *outcomeService) CountByCategory(ctx context.Context, curriculumID int64) (map[domain.OutcomeCategory]int, error) {
	return s.outcomeStore.CountByCategory(ctx, curriculumID)
}

func (s *outcomeService) Update(ctx context.Context, outcome *domain.LearningOutcome) (*domain.LearningOutcome, error) {
	current, err := s.outcomeStore.GetByID(ctx, outcome.ID)
	if err != nil {
		return nil, err
	}

	curriculum, err := s.curriculumStore.GetByID(ctx, current.CurriculumID)
	if err != nil {
		return nil, err
	}
	if !curriculum.CanBeModified() {
		return nil, domain.InvalidOperationf(
			"cannot modify outcomes: curriculum status is %q, must be %q or %q",
			curriculum.Status, domain.CurriculumStatusDraft, domain.CurriculumStatusReview)
	}

	current.Description = outcome.Description
	current.Category = outcome.Category
	current.DisplayOrder = outcome.DisplayOrder
	current.IsActive = outcome.IsActive

	if err := s.outcomeStore.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *outcomeService) Remove(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.outcomeStore.Deactivate(ctx, id); err != nil {
		return err
	}

	log.Info("learning outcome removed", slog.Int64("outcome_id", id))
	return nil
}

func (s *outcomeService) Reorder(ctx context.Context, curriculumID int64, orderedIDs []int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(orderedIDs) == 0 {
		return nil
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.outcomeStore.WithTx(tx)

		for position, id := range orderedIDs {
			outcome, err := txStore.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if outcome.CurriculumID != curriculumID {
				return domain.InvalidOperationf(
					"cannot reorder: outcome %d belongs to curriculum %d, not %d",
					id, outcome.CurriculumID, curriculumID)
			}

			order := position + 1
			outcome.DisplayOrder = &order
			if err := txStore.Update(ctx, outcome); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("learning outcomes reordered",
		slog.Int64("curriculum_id", curriculumID),
		slog.Int("count", len(orderedIDs)))
	return nil
}

package service

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

// CurriculumService drives the curriculum lifecycle: creation, review,
// approval, activation with the primary-flag swap, deactivation, archiving,
// and draft deletion.
type CurriculumService interface {
	// Create saves a new draft curriculum. Fails with a DuplicateEntityError
	// if the code is already used within the program, and with
	// store.ErrProgramNotFound if the program does not exist.
	Create(ctx context.Context, curriculum *domain.Curriculum) error

	// Get retrieves a curriculum by ID.
	Get(ctx context.Context, id int64) (*domain.Curriculum, error)

	// GetPrimary retrieves the primary curriculum of a program.
	GetPrimary(ctx context.Context, programID string) (*domain.Curriculum, error)

	// ListByProgram returns a program's curricula, optionally filtered by
	// status.
	ListByProgram(ctx context.Context, programID string, status domain.CurriculumStatus) ([]*domain.Curriculum, error)

	// Update modifies a curriculum's descriptive fields. Only draft and
	// review curricula can be modified.
	Update(ctx context.Context, curriculum *domain.Curriculum) (*domain.Curriculum, error)

	// SubmitForReview moves a draft curriculum into review.
	SubmitForReview(ctx context.Context, id int64) (*domain.Curriculum, error)

	// Approve moves a curriculum from review to approved.
	Approve(ctx context.Context, id int64) (*domain.Curriculum, error)

	// Activate moves an approved curriculum to active, recording the decree.
	// When setPrimary is true the primary flag moves to this curriculum and
	// off every other curriculum of the program in the same transaction.
	Activate(ctx context.Context, id int64, decreeNumber string, decreeDate time.Time, setPrimary bool) (*domain.Curriculum, error)

	// Deactivate moves an active curriculum to inactive.
	Deactivate(ctx context.Context, id int64) (*domain.Curriculum, error)

	// Archive moves a curriculum to its terminal archived state. Fails while
	// active students are still assigned to it.
	Archive(ctx context.Context, id int64) (*domain.Curriculum, error)

	// Delete permanently removes a draft curriculum. Any other status fails.
	Delete(ctx context.Context, id int64) error

	// Stats returns outcome, course, and student counts for a curriculum.
	Stats(ctx context.Context, id int64) (*domain.CurriculumStats, error)
}

type curriculumService struct {
	db              *sql.DB
	curriculumStore store.CurriculumStore
	programStore    store.ProgramStore
	logger          *slog.Logger
}

// NewCurriculumService creates a CurriculumService. The database handle is
// used to open transactions for activation and archiving.
func NewCurriculumService(
	db *sql.DB,
	curriculumStore store.CurriculumStore,
	programStore store.ProgramStore,
	logger *slog.Logger,
) (CurriculumService, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if curriculumStore == nil {
		return nil, fmt.Errorf("curriculumStore cannot be nil")
	}
	if programStore == nil {
		return nil, fmt.Errorf("programStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &curriculumService{
		db:              db,
		curriculumStore: curriculumStore,
		programStore:    programStore,
		logger:          logger.With(slog.String("component", "curriculum_service")),
	}, nil
}

func (s *curriculumService) Create(ctx context.Context, curriculum *domain.Curriculum) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := curriculum.Validate(); err != nil {
		return err
	}

	if _, err := s.programStore.GetByID(ctx, curriculum.ProgramID); err != nil {
		return err
	}

	// Explicit duplicate check so the caller gets a structured error; the
	// unique index backs this up under concurrency.
	_, err := s.curriculumStore.GetByCode(ctx, curriculum.ProgramID, curriculum.Code)
	if err == nil {
		return domain.NewDuplicateEntityError("curriculum", "code", curriculum.Code)
	}
	if !store.IsNotFoundError(err) {
		return fmt.Errorf("failed to check curriculum code: %w", err)
	}

	if err := s.curriculumStore.Create(ctx, curriculum); err != nil {
		if store.IsDuplicateError(err) {
			return domain.NewDuplicateEntityError("curriculum", "code", curriculum.Code)
		}
		return err
	}

	log.Info("curriculum draft created",
		slog.Int64("curriculum_id", curriculum.ID),
		slog.String("program_id", curriculum.ProgramID),
		slog.String("code", curriculum.Code))
	return nil
}

func (s *curriculumService) Get(ctx context.Context, id int64) (*domain.Curriculum, error) {
	return s.curriculumStore.GetByID(ctx, id)
}

func (s *curriculumService) GetPrimary(ctx context.Context, programID string) (*domain.Curriculum, error) {
	return s.curriculumStore.GetPrimary(ctx, programID)
}

func (s *curriculumService) ListByProgram(
	ctx context.Context,
	programID string,
	status domain.CurriculumStatus,
) ([]*domain.Curriculum, error) {
	return s.curriculumStore.ListByProgram(ctx, programID, status)
}

func (s *curriculumService) Update(ctx context.Context, curriculum *domain.Curriculum) (*domain.Curriculum, error) {
	current, err := s.curriculumStore.GetByID(ctx, curriculum.ID)
	if err != nil {
		return nil, err
	}

	if !current.CanBeModified() {
		return nil, domain.InvalidOperationf(
			"cannot modify curriculum: status is %q, must be %q or %q",
			current.Status, domain.CurriculumStatusDraft, domain.CurriculumStatusReview)
	}

	// Only descriptive fields change; identity, status, and the primary flag
	// move through their dedicated operations.
	current.Name = curriculum.Name
	current.EndYear = curriculum.EndYear
	current.Description = curriculum.Description
	current.DecreeNumber = curriculum.DecreeNumber
	current.DecreeDate = curriculum.DecreeDate

	if err := s.curriculumStore.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *curriculumService) SubmitForReview(ctx context.Context, id int64) (*domain.Curriculum, error) {
	return s.transition(ctx, id, "submit_for_review", (*domain.Curriculum).SubmitForReview)
}

func (s *curriculumService) Approve(ctx context.Context, id int64) (*domain.Curriculum, error) {
	return s.transition(ctx, id, "approve", (*domain.Curriculum).Approve)
}

func (s *curriculumService) Activate(
	ctx context.Context,
	id int64,
	decreeNumber string,
	decreeDate time.Time,
	setPrimary bool,
) (*domain.Curriculum, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var activated *domain.Curriculum
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.curriculumStore.WithTx(tx)

		curriculum, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := curriculum.Activate(decreeNumber, decreeDate, setPrimary); err != nil {
			return err
		}
		if err := txStore.Update(ctx, curriculum); err != nil {
			return err
		}

		if setPrimary {
			// Single statement swap keeps at most one primary per program.
			if err := txStore.ActivateExclusive(ctx, id, curriculum.ProgramID); err != nil {
				return err
			}
		}

		activated = curriculum
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("curriculum activated",
		slog.Int64("curriculum_id", id),
		slog.String("decree_number", decreeNumber),
		slog.Bool("primary", setPrimary))
	return activated, nil
}

func (s *curriculumService) Deactivate(ctx context.Context, id int64) (*domain.Curriculum, error) {
	return s.transition(ctx, id, "deactivate", (*domain.Curriculum).Deactivate)
}

func (s *curriculumService) Archive(ctx context.Context, id int64) (*domain.Curriculum, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var archived *domain.Curriculum
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.curriculumStore.WithTx(tx)

		curriculum, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		activeStudents, err := txStore.CountActiveStudents(ctx, id)
		if err != nil {
			return err
		}
		if activeStudents > 0 {
			return domain.InvalidOperationf(
				"cannot archive curriculum: %d active students are still assigned to it",
				activeStudents)
		}

		if err := curriculum.Archive(); err != nil {
			return err
		}
		if err := txStore.Update(ctx, curriculum); err != nil {
			return err
		}

		archived = curriculum
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("curriculum archived", slog.Int64("curriculum_id", id))
	return archived, nil
}

func (s *curriculumService) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	curriculum, err := s.curriculumStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if curriculum.Status != domain.CurriculumStatusDraft {
		return domain.InvalidOperationf(
			"cannot delete curriculum: status is %q, only drafts can be deleted",
			curriculum.Status)
	}

	if err := s.curriculumStore.Delete(ctx, id); err != nil {
		return err
	}

	log.Info("draft curriculum deleted",
		slog.Int64("curriculum_id", id),
		slog.String("code", curriculum.Code))
	return nil
}

func (s *curriculumService) Stats(ctx context.Context, id int64) (*domain.CurriculumStats, error) {
	return s.curriculumStore.Stats(ctx, id)
}

// transition loads a curriculum, applies a domain state transition, and
// persists the result. Transition guards fire before anything is written.
func (s *curriculumService) transition(
	ctx context.Context,
	id int64,
	name string,
	fn func(*domain.Curriculum) error,
) (*domain.Curriculum, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	curriculum, err := s.curriculumStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(curriculum); err != nil {
		if errors.Is(err, domain.ErrInvalidOperation) {
			log.Warn("curriculum transition rejected",
				slog.String("transition", name),
				slog.Int64("curriculum_id", id),
				slog.String("status", string(curriculum.Status)))
		}
		return nil, err
	}

	if err := s.curriculumStore.Update(ctx, curriculum); err != nil {
		return nil, err
	}

	log.Info("curriculum transition applied",
		slog.String("transition", name),
		slog.Int64("curriculum_id", id),
		slog.String("status", string(curriculum.Status)))
	return curriculum, nil
}

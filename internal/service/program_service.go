package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/platform/logger"
	"github.com/akademika/obe-api/internal/store"
)

// ProgramService manages study programs.
type ProgramService interface {
	// Create registers a new study program. Fails with a
	// DuplicateEntityError if the ID is taken.
	Create(ctx context.Context, program *domain.Program) error

	// Get retrieves a program by ID.
	Get(ctx context.Context, id string) (*domain.Program, error)

	// List returns all programs.
	List(ctx context.Context) ([]*domain.Program, error)

	// Update modifies a program's attributes.
	Update(ctx context.Context, program *domain.Program) (*domain.Program, error)
}

type programService struct {
	programStore store.ProgramStore
	logger       *slog.Logger
}

// NewProgramService creates a ProgramService.
func NewProgramService(programStore store.ProgramStore, logger *slog.Logger) (ProgramService, error) {
	if programStore == nil {
		return nil, fmt.Errorf("programStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &programService{
		programStore: programStore,
		logger:       logger.With(slog.String("component", "program_service")),
	}, nil
}

func (s *programService) Create(ctx context.Context, program *domain.Program) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := program.Validate(); err != nil {
		return err
	}

	_, err := s.programStore.GetByID(ctx, program.ID)
	if err == nil {
		return domain.NewDuplicateEntityError("program", "id", program.ID)
	}
	if !store.IsNotFoundError(err) {
		return fmt.Errorf("failed to check program ID: %w", err)
	}

	if err := s.programStore.Create(ctx, program); err != nil {
		if store.IsDuplicateError(err) {
			return domain.NewDuplicateEntityError("program", "id", program.ID)
		}
		return err
	}

	log.Info("program created", slog.String("program_id", program.ID))
	return nil
}

func (s *programService) Get(ctx context.Context, id string) (*domain.Program, error) {
	return s.programStore.GetByID(ctx, id)
}

func (s *programService) List(ctx context.Context) ([]*domain.Program, error) {
	return s.programStore.List(ctx)
}

func (s *programService) Update(ctx context.Context, program *domain.Program) (*domain.Program, error) {
	current, err := s.programStore.GetByID(ctx, program.ID)
	if err != nil {
		return nil, err
	}

	current.Faculty = program.Faculty
	current.Name = program.Name
	current.Level = program.Level
	current.Accreditation = program.Accreditation

	if err := s.programStore.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/platform/logger"
	"github.com/akademika/obe-api/internal/store"
)

// StudentService manages student records and their one-time curriculum
// assignment.
type StudentService interface {
	// Create registers a new student. Fails with a DuplicateEntityError if
	// the student ID is taken.
	Create(ctx context.Context, student *domain.Student) error

	// Get retrieves a student by their NIM.
	Get(ctx context.Context, id string) (*domain.Student, error)

	// ListByProgram returns a program's students, optionally filtered by
	// cohort year and status.
	ListByProgram(ctx context.Context, programID string, cohortYear int, status domain.StudentStatus) ([]*domain.Student, error)

	// ListByCurriculum returns the students assigned to a curriculum.
	ListByCurriculum(ctx context.Context, curriculumID int64) ([]*domain.Student, error)

	// Update modifies a student's record. An assigned curriculum cannot
	// change; the store rejects such updates with
	// domain.ErrCurriculumImmutable.
	Update(ctx context.Context, student *domain.Student) (*domain.Student, error)

	// UpdateStatus changes a student's standing.
	UpdateStatus(ctx context.Context, id string, status domain.StudentStatus) (*domain.Student, error)

	// AssignCurriculum performs the one-time curriculum assignment. The
	// curriculum must be active and belong to the student's program.
	AssignCurriculum(ctx context.Context, studentID string, curriculumID int64) (*domain.Student, error)
}

type studentService struct {
	studentStore    store.StudentStore
	curriculumStore store.CurriculumStore
	programStore    store.ProgramStore
	logger          *slog.Logger
}

// NewStudentService creates a StudentService.
func NewStudentService(
	studentStore store.StudentStore,
	curriculumStore store.CurriculumStore,
	programStore store.ProgramStore,
	logger *slog.Logger,
) (StudentService, error) {
	if studentStore == nil {
		return nil, fmt.Errorf("studentStore cannot be nil")
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
	return &studentService{
		studentStore:    studentStore,
		curriculumStore: curriculumStore,
		programStore:    programStore,
		logger:          logger.With(slog.String("component", "student_service")),
	}, nil
}

func (s *studentService) Create(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := student.Validate(); err != nil {
		return err
	}

	if _, err := s.programStore.GetByID(ctx, student.ProgramID); err != nil {
		return err
	}

	_, err := s.studentStore.GetByID(ctx, student.ID)
	if err == nil {
		return domain.NewDuplicateEntityError("student", "id", student.ID)
	}
	if !store.IsNotFoundError(err) {
		return fmt.Errorf("failed to check student ID: %w", err)
	}

	if err := s.studentStore.Create(ctx, student); err != nil {
		if store.IsDuplicateError(err) {
			return domain.NewDuplicateEntityError("student", "id", student.ID)
		}
		return err
	}

	log.Info("student registered",
		slog.String("student_id", student.ID),
		slog.String("program_id", student.ProgramID),
		slog.Int("cohort_year", student.CohortYear))
	return nil
}

func (s *studentService) Get(ctx context.Context, id string) (*domain.Student, error) {
	return s.studentStore.GetByID(ctx, id)
}

func (s *studentService) ListByProgram(
	ctx context.Context,
	programID string,
	cohortYear int,
	status domain.StudentStatus,
) ([]*domain.Student, error) {
	return s.studentStore.ListByProgram(ctx, programID, cohortYear, status)
}

func (s *studentService) ListByCurriculum(ctx context.Context, curriculumID int64) ([]*domain.Student, error) {
	return s.studentStore.ListByCurriculum(ctx, curriculumID)
}

func (s *studentService) Update(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	current, err := s.studentStore.GetByID(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	current.Name = student.Name
	current.Email = student.Email
	current.CurriculumID = student.CurriculumID
	current.CohortYear = student.CohortYear
	current.Status = student.Status

	// The store re-checks the persisted curriculum before writing, so a
	// concurrent assignment cannot slip through this read-modify-write.
	if err := s.studentStore.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *studentService) UpdateStatus(ctx context.Context, id string, status domain.StudentStatus) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	student, err := s.studentStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := student.UpdateStatus(status); err != nil {
		return nil, err
	}
	if err := s.studentStore.Update(ctx, student); err != nil {
		return nil, err
	}

	log.Info("student status updated",
		slog.String("student_id", id),
		slog.String("status", string(status)))
	return student, nil
}

func (s *studentService) AssignCurriculum(ctx context.Context, studentID string, curriculumID int64) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	student, err := s.studentStore.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if student.CurriculumID != nil {
		if *student.CurriculumID == curriculumID {
			return student, nil
		}
		return nil, fmt.Errorf("%w: student %q is assigned to curriculum %d",
			domain.ErrCurriculumImmutable, studentID, *student.CurriculumID)
	}

	curriculum, err := s.curriculumStore.GetByID(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	if curriculum.ProgramID != student.ProgramID {
		return nil, domain.InvalidOperationf(
			"cannot assign curriculum: curriculum belongs to program %q, student to %q",
			curriculum.ProgramID, student.ProgramID)
	}
	if curriculum.Status != domain.CurriculumStatusActive {
		return nil, domain.InvalidOperationf(
			"cannot assign curriculum: status is %q, must be %q",
			curriculum.Status, domain.CurriculumStatusActive)
	}

	student.CurriculumID = &curriculumID
	if err := s.studentStore.Update(ctx, student); err != nil {
		return nil, err
	}

	log.Info("curriculum assigned to student",
		slog.String("student_id", studentID),
		slog.Int64("curriculum_id", curriculumID))
	return student, nil
}

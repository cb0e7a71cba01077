package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/platform/logger"
	"github.com/akademika/obe-api/internal/store"
)

// CourseService manages the courses of a curriculum, their prerequisites, and
// the derived structure views (credit totals, semester breakdown,
// completeness).
type CourseService interface {
	// Create saves a new course. Fails with a DuplicateEntityError if the
	// code is already used within the curriculum.
	Create(ctx context.Context, course *domain.Course) error

	// Get retrieves a course by code within a curriculum.
	Get(ctx context.Context, code string, curriculumID int64) (*domain.Course, error)

	// ListByCurriculum returns a curriculum's courses, optionally filtered by
	// semester.
	ListByCurriculum(ctx context.Context, curriculumID int64, semester int) ([]*domain.Course, error)

	// Update modifies a course's attributes.
	Update(ctx context.Context, course *domain.Course) (*domain.Course, error)

	// Deactivate retires a course by clearing its active flag.
	Deactivate(ctx context.Context, code string, curriculumID int64) error

	// Reactivate restores a deactivated course.
	Reactivate(ctx context.Context, code string, curriculumID int64) error

	// Delete rejects every hard-delete attempt with
	// domain.ErrCourseHardDelete.
	Delete(ctx context.Context, code string, curriculumID int64) error

	// TotalCredits returns the credit sum of the curriculum's active courses.
	TotalCredits(ctx context.Context, curriculumID int64) (int, error)

	// SemesterStats returns per-semester course and credit aggregates.
	SemesterStats(ctx context.Context, curriculumID int64) ([]*domain.SemesterStats, error)

	// ValidateCompleteness checks the curriculum's course structure against
	// the national minimums and reports errors and warnings.
	ValidateCompleteness(ctx context.Context, curriculumID int64) (*domain.CompletenessReport, error)

	// AddPrerequisite links a prerequisite course to a course. Both courses
	// must exist within the curriculum.
	AddPrerequisite(ctx context.Context, prerequisite *domain.Prerequisite) error

	// ListPrerequisites returns the prerequisites of a course.
	ListPrerequisites(ctx context.Context, courseCode string, curriculumID int64) ([]*domain.Prerequisite, error)

	// RemovePrerequisite deletes a prerequisite link.
	RemovePrerequisite(ctx context.Context, id int64) error
}

type courseService struct {
	courseStore     store.CourseStore
	curriculumStore store.CurriculumStore
	logger          *slog.Logger
}

// NewCourseService creates a CourseService.
func NewCourseService(
	courseStore store.CourseStore,
	curriculumStore store.CurriculumStore,
	logger *slog.Logger,
) (CourseService, error) {
	if courseStore == nil {
		return nil, fmt.Errorf("courseStore cannot be nil")
	}
	if curriculumStore == nil {
		return nil, fmt.Errorf("curriculumStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &courseService{
		courseStore:     courseStore,
		curriculumStore: curriculumStore,
		logger:          logger.With(slog.String("component", "course_service")),
	}, nil
}

func (s *courseService) Create(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		return err
	}

	if _, err := s.curriculumStore.GetByID(ctx, course.CurriculumID); err != nil {
		return err
	}

	// The same code in a different curriculum is a different course; only the
	// (code, curriculum) pair must be unique.
	_, err := s.courseStore.Get(ctx, course.Code, course.CurriculumID)
	if err == nil {
		return domain.NewDuplicateEntityError("course", "code", course.Code)
	}
	if !store.IsNotFoundError(err) {
		return fmt.Errorf("failed to check course code: %w", err)
	}

	if err := s.courseStore.Create(ctx, course); err != nil {
		if store.IsDuplicateError(err) {
			return domain.NewDuplicateEntityError("course", "code", course.Code)
		}
		return err
	}

	log.Info("course created",
		slog.String("code", course.Code),
		slog.Int64("curriculum_id", course.CurriculumID))
	return nil
}

func (s *courseService) Get(ctx context.Context, code string, curriculumID int64) (*domain.Course, error) {
	return s.courseStore.Get(ctx, code, curriculumID)
}

func (s *courseService) ListByCurriculum(ctx context.Context, curriculumID int64, semester int) ([]*domain.Course, error) {
	return s.courseStore.ListByCurriculum(ctx, curriculumID, semester)
}

func (s *courseService) Update(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	current, err := s.courseStore.Get(ctx, course.Code, course.CurriculumID)
	if err != nil {
		return nil, err
	}

	current.Name = course.Name
	current.NameEnglish = course.NameEnglish
	current.Credits = course.Credits
	current.Semester = course.Semester
	current.Cluster = course.Cluster
	current.Type = course.Type

	if err := s.courseStore.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *courseService) Deactivate(ctx context.Context, code string, curriculumID int64) error {
	return s.courseStore.Deactivate(ctx, code, curriculumID)
}

func (s *courseService) Reactivate(ctx context.Context, code string, curriculumID int64) error {
	course, err := s.courseStore.Get(ctx, code, curriculumID)
	if err != nil {
		return err
	}
	if course.IsActive {
		return nil
	}
	course.IsActive = true
	return s.courseStore.Update(ctx, course)
}

func (s *courseService) Delete(ctx context.Context, code string, curriculumID int64) error {
	return s.courseStore.Delete(ctx, code, curriculumID)
}

func (s *courseService) TotalCredits(ctx context.Context, curriculumID int64) (int, error) {
	return s.courseStore.TotalCredits(ctx, curriculumID)
}

func (s *courseService) SemesterStats(ctx context.Context, curriculumID int64) ([]*domain.SemesterStats, error) {
	return s.courseStore.SemesterStats(ctx, curriculumID)
}

func (s *courseService) ValidateCompleteness(ctx context.Context, curriculumID int64) (*domain.CompletenessReport, error) {
	if _, err := s.curriculumStore.GetByID(ctx, curriculumID); err != nil {
		return nil, err
	}

	courses, err := s.courseStore.ListByCurriculum(ctx, curriculumID, 0)
	if err != nil {
		return nil, err
	}

	report := &domain.CompletenessReport{
		Errors:   []string{},
		Warnings: []string{},
	}
	coveredSemesters := map[int]bool{}

	for _, course := range courses {
		if !course.IsActive {
			continue
		}
		report.TotalCourses++
		report.TotalCredits += course.Credits
		coveredSemesters[course.Semester] = true

		switch course.Type {
		case domain.CourseTypeMandatory:
			report.MandatoryCount++
		case domain.CourseTypeElective:
			report.ElectiveCount++
		}
	}

	if report.TotalCourses == 0 {
		report.Errors = append(report.Errors, "curriculum has no active courses")
	}
	if report.TotalCredits < domain.MinTotalCredits {
		report.Errors = append(report.Errors, fmt.Sprintf(
			"total credits %d is below the required minimum of %d",
			report.TotalCredits, domain.MinTotalCredits))
	}
	for semester := 1; semester <= domain.CoreSemesterCount; semester++ {
		if !coveredSemesters[semester] {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"semester %d has no courses", semester))
		}
	}
	if report.ElectiveCount == 0 && report.TotalCourses > 0 {
		report.Warnings = append(report.Warnings, "curriculum has no elective courses")
	}

	report.IsValid = len(report.Errors) == 0
	return report, nil
}

func (s *courseService) AddPrerequisite(ctx context.Context, prerequisite *domain.Prerequisite) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := prerequisite.Validate(); err != nil {
		return err
	}

	// Both ends of the link must exist within the same curriculum.
	if _, err := s.courseStore.Get(ctx, prerequisite.CourseCode, prerequisite.CurriculumID); err != nil {
		return err
	}
	if _, err := s.courseStore.Get(ctx, prerequisite.PrerequisiteCode, prerequisite.CurriculumID); err != nil {
		return err
	}

	if err := s.courseStore.AddPrerequisite(ctx, prerequisite); err != nil {
		if store.IsDuplicateError(err) {
			return domain.NewDuplicateEntityError("prerequisite", "course", prerequisite.PrerequisiteCode)
		}
		return err
	}

	log.Info("prerequisite added",
		slog.String("course_code", prerequisite.CourseCode),
		slog.String("prerequisite_code", prerequisite.PrerequisiteCode))
	return nil
}

func (s *courseService) ListPrerequisites(
	ctx context.Context,
	courseCode string,
	curriculumID int64,
) ([]*domain.Prerequisite, error) {
	return s.courseStore.ListPrerequisites(ctx, courseCode, curriculumID)
}

func (s *courseService) RemovePrerequisite(ctx context.Context, id int64) error {
	return s.courseStore.RemovePrerequisite(ctx, id)
}

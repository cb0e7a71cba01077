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

// EnrollmentService manages course enrollments. Courses are keyed by
// (code, curriculum); enrolling in one must agree with the curriculum the
// student follows.
type EnrollmentService interface {
	// Enroll registers a student in a course for a term. The course is
	// resolved by code within the given curriculum. A student who already
	// follows a curriculum can only enroll in that curriculum's courses; a
	// student with none is assigned the given curriculum here, in the same
	// transaction. Fails with a DuplicateEntityError when a non-dropped
	// enrollment for the same course and term exists.
	Enroll(ctx context.Context, studentID, courseCode string, curriculumID int64, term string) (*domain.Enrollment, error)

	// Get retrieves an enrollment by ID.
	Get(ctx context.Context, id int64) (*domain.Enrollment, error)

	// ListByStudent returns a student's enrollments, optionally filtered by
	// term.
	ListByStudent(ctx context.Context, studentID, term string) ([]*domain.Enrollment, error)

	// Drop marks an enrollment dropped. Passed enrollments cannot be dropped.
	Drop(ctx context.Context, id int64) (*domain.Enrollment, error)

	// RecordGrade stores the final grade and settles the enrollment as passed
	// or repeat.
	RecordGrade(ctx context.Context, id int64, finalGrade float64, letterGrade string) (*domain.Enrollment, error)
}

type enrollmentService struct {
	db              *sql.DB
	enrollmentStore store.EnrollmentStore
	studentStore    store.StudentStore
	courseStore     store.CourseStore
	curriculumStore store.CurriculumStore
	logger          *slog.Logger
}

// NewEnrollmentService creates an EnrollmentService.
func NewEnrollmentService(
	db *sql.DB,
	enrollmentStore store.EnrollmentStore,
	studentStore store.StudentStore,
	courseStore store.CourseStore,
	curriculumStore store.CurriculumStore,
	logger *slog.Logger,
) (EnrollmentService, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if enrollmentStore == nil {
		return nil, fmt.Errorf("enrollmentStore cannot be nil")
	}
	if studentStore == nil {
		return nil, fmt.Errorf("studentStore cannot be nil")
	}
	if courseStore == nil {
		return nil, fmt.Errorf("courseStore cannot be nil")
	}
	if curriculumStore == nil {
		return nil, fmt.Errorf("curriculumStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &enrollmentService{
		db:              db,
		enrollmentStore: enrollmentStore,
		studentStore:    studentStore,
		courseStore:     courseStore,
		curriculumStore: curriculumStore,
		logger:          logger.With(slog.String("component", "enrollment_service")),
	}, nil
}

func (s *enrollmentService) Enroll(
	ctx context.Context,
	studentID, courseCode string,
	curriculumID int64,
	term string,
) (*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var enrollment *domain.Enrollment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStudents := s.studentStore.WithTx(tx)
		txCourses := s.courseStore.WithTx(tx)
		txEnrollments := s.enrollmentStore.WithTx(tx)

		student, err := txStudents.GetByID(ctx, studentID)
		if err != nil {
			return err
		}
		if !student.IsActive() {
			return domain.InvalidOperationf(
				"cannot enroll student: status is %q, must be %q",
				student.Status, domain.StudentStatusActive)
		}
		if student.CurriculumID != nil && *student.CurriculumID != curriculumID {
			return domain.InvalidOperationf(
				"cannot enroll student: course belongs to curriculum %d, student follows curriculum %d",
				curriculumID, *student.CurriculumID)
		}

		course, err := txCourses.Get(ctx, courseCode, curriculumID)
		if err != nil {
			return err
		}
		if !course.IsActive {
			return domain.InvalidOperationf(
				"cannot enroll in course %q: course is inactive", courseCode)
		}

		// First enrollment is the one place a curriculum may be assigned;
		// after that the student is locked to it.
		if student.CurriculumID == nil {
			curriculum, err := s.curriculumStore.WithTx(tx).GetByID(ctx, curriculumID)
			if err != nil {
				return err
			}
			if curriculum.ProgramID != student.ProgramID {
				return domain.InvalidOperationf(
					"cannot enroll student: curriculum belongs to program %q, student to %q",
					curriculum.ProgramID, student.ProgramID)
			}
			if curriculum.Status != domain.CurriculumStatusActive {
				return domain.InvalidOperationf(
					"cannot enroll student: curriculum status is %q, must be %q",
					curriculum.Status, domain.CurriculumStatusActive)
			}
			student.CurriculumID = &curriculumID
			if err := txStudents.Update(ctx, student); err != nil {
				return err
			}
			log.Info("student assigned curriculum on first enrollment",
				slog.String("student_id", studentID),
				slog.Int64("curriculum_id", curriculumID))
		}

		taken, err := txEnrollments.HasActiveOrPassed(ctx, studentID, courseCode, term)
		if err != nil {
			return err
		}
		if taken {
			return domain.NewDuplicateEntityError("enrollment", "course", courseCode)
		}

		enrollment, err = domain.NewEnrollment(studentID, courseCode, curriculumID, term)
		if err != nil {
			return err
		}
		return txEnrollments.Create(ctx, enrollment)
	})
	if err != nil {
		return nil, err
	}

	log.Info("student enrolled",
		slog.Int64("enrollment_id", enrollment.ID),
		slog.String("student_id", studentID),
		slog.String("course_code", courseCode),
		slog.String("term", term))
	return enrollment, nil
}

func (s *enrollmentService) Get(ctx context.Context, id int64) (*domain.Enrollment, error) {
	return s.enrollmentStore.GetByID(ctx, id)
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID, term string) ([]*domain.Enrollment, error) {
	return s.enrollmentStore.ListByStudent(ctx, studentID, term)
}

func (s *enrollmentService) Drop(ctx context.Context, id int64) (*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	enrollment, err := s.enrollmentStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := enrollment.Drop(); err != nil {
		return nil, err
	}
	if err := s.enrollmentStore.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	log.Info("enrollment dropped",
		slog.Int64("enrollment_id", id),
		slog.String("student_id", enrollment.StudentID))
	return enrollment, nil
}

func (s *enrollmentService) RecordGrade(
	ctx context.Context,
	id int64,
	finalGrade float64,
	letterGrade string,
) (*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	enrollment, err := s.enrollmentStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := enrollment.RecordGrade(finalGrade, letterGrade); err != nil {
		return nil, err
	}
	if err := s.enrollmentStore.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	log.Info("grade recorded",
		slog.Int64("enrollment_id", id),
		slog.String("letter_grade", letterGrade),
		slog.String("status", string(enrollment.Status)))
	return enrollment, nil
}

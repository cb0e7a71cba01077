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

// PostgresEnrollmentStore implements store.EnrollmentStore backed by
// PostgreSQL.
type PostgresEnrollmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEnrollmentStore creates a PostgreSQL implementation of the
// EnrollmentStore interface.
func NewPostgresEnrollmentStore(db store.DBTX, logger *slog.Logger) *PostgresEnrollmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEnrollmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "enrollment_store")),
	}
}

var _ store.EnrollmentStore = (*PostgresEnrollmentStore)(nil)

const enrollmentColumns = `id, student_id, course_code, curriculum_id, term,
	status, final_grade, letter_grade, created_at, updated_at`

// Create saves a new enrollment and fills in its generated ID.
func (s *PostgresEnrollmentStore) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := enrollment.Validate(); err != nil {
		log.Warn("enrollment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("student_id", enrollment.StudentID))
		return err
	}

	query := `
		INSERT INTO enrollments (student_id, course_code, curriculum_id, term,
			status, final_grade, letter_grade, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		enrollment.StudentID,
		enrollment.CourseCode,
		enrollment.CurriculumID,
		enrollment.Term,
		enrollment.Status,
		enrollment.FinalGrade,
		nullableString(enrollment.LetterGrade),
		enrollment.CreatedAt,
		enrollment.UpdatedAt,
	).Scan(&enrollment.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: enrollment for student %q in course %q, term %q",
				store.ErrDuplicate, enrollment.StudentID, enrollment.CourseCode, enrollment.Term)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: student %q or course %q not found",
				store.ErrInvalidEntity, enrollment.StudentID, enrollment.CourseCode)
		}
		log.Error("failed to create enrollment",
			slog.String("error", err.Error()),
			slog.String("student_id", enrollment.StudentID),
			slog.String("course_code", enrollment.CourseCode))
		return MapError(err)
	}

	log.Info("enrollment created",
		slog.Int64("enrollment_id", enrollment.ID),
		slog.String("student_id", enrollment.StudentID),
		slog.String("course_code", enrollment.CourseCode),
		slog.String("term", enrollment.Term))
	return nil
}

// GetByID retrieves an enrollment by ID.
func (s *PostgresEnrollmentStore) GetByID(ctx context.Context, id int64) (*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`

	e, err := scanEnrollment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEnrollmentNotFound
		}
		log.Error("failed to get enrollment",
			slog.String("error", err.Error()),
			slog.Int64("enrollment_id", id))
		return nil, MapError(err)
	}
	return e, nil
}

// ListByStudent returns a student's enrollments, newest term first.
func (s *PostgresEnrollmentStore) ListByStudent(ctx context.Context, studentID, term string) ([]*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE student_id = $1 AND ($2 = '' OR term = $2)
		ORDER BY term DESC, course_code`

	rows, err := s.db.QueryContext(ctx, query, studentID, term)
	if err != nil {
		log.Error("failed to list enrollments",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	enrollments := []*domain.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			log.Error("failed to scan enrollment row", slog.String("error", err.Error()))
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return enrollments, nil
}

// HasActiveOrPassed reports whether a non-dropped enrollment already exists
// for the student, course, and term.
func (s *PostgresEnrollmentStore) HasActiveOrPassed(ctx context.Context, studentID, courseCode, term string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND course_code = $2 AND term = $3
				AND status <> 'dropped'
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, studentID, courseCode, term).Scan(&exists); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// Update saves modifications to an existing enrollment.
func (s *PostgresEnrollmentStore) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := enrollment.Validate(); err != nil {
		log.Warn("enrollment validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("enrollment_id", enrollment.ID))
		return err
	}

	enrollment.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE enrollments
		SET status = $1, final_grade = $2, letter_grade = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		enrollment.Status,
		enrollment.FinalGrade,
		nullableString(enrollment.LetterGrade),
		enrollment.UpdatedAt,
		enrollment.ID,
	)
	if err != nil {
		log.Error("failed to update enrollment",
			slog.String("error", err.Error()),
			slog.Int64("enrollment_id", enrollment.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrEnrollmentNotFound); err != nil {
		return err
	}

	log.Info("enrollment updated",
		slog.Int64("enrollment_id", enrollment.ID),
		slog.String("status", string(enrollment.Status)))
	return nil
}

// WithTx returns a store instance bound to the given transaction.
func (s *PostgresEnrollmentStore) WithTx(tx *sql.Tx) store.EnrollmentStore {
	return &PostgresEnrollmentStore{db: tx, logger: s.logger}
}

func scanEnrollment(row rowScanner) (*domain.Enrollment, error) {
	var (
		e           domain.Enrollment
		letterGrade sql.NullString
	)
	err := row.Scan(
		&e.ID,
		&e.StudentID,
		&e.CourseCode,
		&e.CurriculumID,
		&e.Term,
		&e.Status,
		&e.FinalGrade,
		&letterGrade,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.LetterGrade = letterGrade.String
	return &e, nil
}

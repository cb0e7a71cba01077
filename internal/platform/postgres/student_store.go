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

// PostgresStudentStore implements store.StudentStore backed by PostgreSQL.
// Update is the single write path for students, so the curriculum
// immutability guard lives here rather than in each caller.
type PostgresStudentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudentStore creates a PostgreSQL implementation of the
// StudentStore interface.
func NewPostgresStudentStore(db store.DBTX, logger *slog.Logger) *PostgresStudentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStudentStore{
		db:     db,
		logger: logger.With(slog.String("component", "student_store")),
	}
}

var _ store.StudentStore = (*PostgresStudentStore)(nil)

const studentColumns = `id, name, email, program_id, curriculum_id,
	cohort_year, status, created_at, updated_at`

// Create saves a new student.
func (s *PostgresStudentStore) Create(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := student.Validate(); err != nil {
		log.Warn("student validation failed during create",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID))
		return err
	}

	query := `
		INSERT INTO students (id, name, email, program_id, curriculum_id,
			cohort_year, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		student.ID,
		student.Name,
		student.Email,
		student.ProgramID,
		student.CurriculumID,
		student.CohortYear,
		student.Status,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: student %q", store.ErrDuplicate, student.ID)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: program %q or curriculum not found",
				store.ErrInvalidEntity, student.ProgramID)
		}
		log.Error("failed to create student",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID))
		return MapError(err)
	}

	log.Info("student created",
		slog.String("student_id", student.ID),
		slog.String("program_id", student.ProgramID))
	return nil
}

// GetByID retrieves a student by their NIM.
func (s *PostgresStudentStore) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	st, err := scanStudent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStudentNotFound
		}
		log.Error("failed to get student",
			slog.String("error", err.Error()),
			slog.String("student_id", id))
		return nil, MapError(err)
	}
	return st, nil
}

// ListByProgram returns a program's students filtered by cohort year and
// status.
func (s *PostgresStudentStore) ListByProgram(
	ctx context.Context,
	programID string,
	cohortYear int,
	status domain.StudentStatus,
) ([]*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + studentColumns + `
		FROM students
		WHERE program_id = $1
			AND ($2 = 0 OR cohort_year = $2)
			AND ($3 = '' OR status = $3)
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, programID, cohortYear, string(status))
	if err != nil {
		log.Error("failed to list students",
			slog.String("error", err.Error()),
			slog.String("program_id", programID))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	return collectStudents(rows, log)
}

// ListByCurriculum returns the students assigned to a curriculum.
func (s *PostgresStudentStore) ListByCurriculum(ctx context.Context, curriculumID int64) ([]*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + studentColumns + ` FROM students WHERE curriculum_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, curriculumID)
	if err != nil {
		log.Error("failed to list students by curriculum",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", curriculumID))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	return collectStudents(rows, log)
}

// Update saves modifications to an existing student. An assigned curriculum
// is immutable: if the stored row already carries a curriculum ID and the
// update would change it, the update fails with
// domain.ErrCurriculumImmutable before any row is touched.
func (s *PostgresStudentStore) Update(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := student.Validate(); err != nil {
		log.Warn("student validation failed during update",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID))
		return err
	}

	var current sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT curriculum_id FROM students WHERE id = $1`, student.ID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrStudentNotFound
		}
		log.Error("failed to read student before update",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID))
		return MapError(err)
	}

	if current.Valid {
		if student.CurriculumID == nil || *student.CurriculumID != current.Int64 {
			log.Warn("rejected curriculum change for student",
				slog.String("student_id", student.ID),
				slog.Int64("current_curriculum_id", current.Int64))
			return fmt.Errorf("%w: student %q is assigned to curriculum %d",
				domain.ErrCurriculumImmutable, student.ID, current.Int64)
		}
	}

	student.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE students
		SET name = $1, email = $2, curriculum_id = $3, cohort_year = $4,
			status = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		student.Name,
		student.Email,
		student.CurriculumID,
		student.CohortYear,
		student.Status,
		student.UpdatedAt,
		student.ID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: curriculum not found", store.ErrInvalidEntity)
		}
		log.Error("failed to update student",
			slog.String("error", err.Error()),
			slog.String("student_id", student.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrStudentNotFound); err != nil {
		return err
	}

	log.Info("student updated",
		slog.String("student_id", student.ID),
		slog.String("status", string(student.Status)))
	return nil
}

// WithTx returns a store instance bound to the given transaction.
func (s *PostgresStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return &PostgresStudentStore{db: tx, logger: s.logger}
}

func collectStudents(rows *sql.Rows, log *slog.Logger) ([]*domain.Student, error) {
	students := []*domain.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			log.Error("failed to scan student row", slog.String("error", err.Error()))
			return nil, err
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return students, nil
}

func scanStudent(row rowScanner) (*domain.Student, error) {
	var st domain.Student
	err := row.Scan(
		&st.ID,
		&st.Name,
		&st.Email,
		&st.ProgramID,
		&st.CurriculumID,
		&st.CohortYear,
		&st.Status,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

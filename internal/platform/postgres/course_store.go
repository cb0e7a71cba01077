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

// PostgresCourseStore implements store.CourseStore backed by PostgreSQL.
// Course rows are keyed by (code, curriculum_id) and are never hard-deleted;
// Delete exists only to make that guarantee explicit.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCourseStore creates a PostgreSQL implementation of the
// CourseStore interface.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

var _ store.CourseStore = (*PostgresCourseStore)(nil)

const courseColumns = `code, curriculum_id, name, name_english, credits,
	semester, cluster, type, is_active, created_at, updated_at`

// Create saves a new course.
func (s *PostgresCourseStore) Create(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		log.Warn("course validation failed during create",
			slog.String("error", err.Error()),
			slog.String("code", course.Code))
		return err
	}

	query := `
		INSERT INTO courses (code, curriculum_id, name, name_english, credits,
			semester, cluster, type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		course.Code,
		course.CurriculumID,
		course.Name,
		nullableString(course.NameEnglish),
		course.Credits,
		course.Semester,
		nullableString(course.Cluster),
		course.Type,
		course.IsActive,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: course code %q in curriculum %d",
				store.ErrDuplicate, course.Code, course.CurriculumID)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: curriculum %d not found",
				store.ErrInvalidEntity, course.CurriculumID)
		}
		log.Error("failed to create course",
			slog.String("error", err.Error()),
			slog.String("code", course.Code))
		return MapError(err)
	}

	log.Info("course created",
		slog.String("code", course.Code),
		slog.Int64("curriculum_id", course.CurriculumID),
		slog.Int("credits", course.Credits))
	return nil
}

// Get retrieves a course by its composite identity.
func (s *PostgresCourseStore) Get(ctx context.Context, code string, curriculumID int64) (*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + courseColumns + ` FROM courses WHERE code = $1 AND curriculum_id = $2`

	c, err := scanCourse(s.db.QueryRowContext(ctx, query, code, curriculumID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCourseNotFound
		}
		log.Error("failed to get course",
			slog.String("error", err.Error()),
			slog.String("code", code))
		return nil, MapError(err)
	}
	return c, nil
}

// ListByCurriculum returns a curriculum's courses ordered by semester, then
// code.
func (s *PostgresCourseStore) ListByCurriculum(
	ctx context.Context,
	curriculumID int64,
	semester int,
) ([]*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + courseColumns + `
		FROM courses
		WHERE curriculum_id = $1 AND ($2 = 0 OR semester = $2)
		ORDER BY semester, code`

	rows, err := s.db.QueryContext(ctx, query, curriculumID, semester)
	if err != nil {
		log.Error("failed to list courses",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", curriculumID))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	courses := []*domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			log.Error("failed to scan course row", slog.String("error", err.Error()))
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return courses, nil
}

// Update saves modifications to an existing course. The composite key fields
// themselves never change.
func (s *PostgresCourseStore) Update(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		log.Warn("course validation failed during update",
			slog.String("error", err.Error()),
			slog.String("code", course.Code))
		return err
	}

	course.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE courses
		SET name = $1, name_english = $2, credits = $3, semester = $4,
			cluster = $5, type = $6, is_active = $7, updated_at = $8
		WHERE code = $9 AND curriculum_id = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		course.Name,
		nullableString(course.NameEnglish),
		course.Credits,
		course.Semester,
		nullableString(course.Cluster),
		course.Type,
		course.IsActive,
		course.UpdatedAt,
		course.Code,
		course.CurriculumID,
	)
	if err != nil {
		log.Error("failed to update course",
			slog.String("error", err.Error()),
			slog.String("code", course.Code))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCourseNotFound); err != nil {
		return err
	}

	log.Info("course updated",
		slog.String("code", course.Code),
		slog.Int64("curriculum_id", course.CurriculumID))
	return nil
}

// Deactivate marks a course inactive. The row stays so enrollment history
// keeps resolving.
func (s *PostgresCourseStore) Deactivate(ctx context.Context, code string, curriculumID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE courses
		SET is_active = FALSE, updated_at = $1
		WHERE code = $2 AND curriculum_id = $3
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), code, curriculumID)
	if err != nil {
		log.Error("failed to deactivate course",
			slog.String("error", err.Error()),
			slog.String("code", code))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCourseNotFound); err != nil {
		return err
	}

	log.Info("course deactivated",
		slog.String("code", code),
		slog.Int64("curriculum_id", curriculumID))
	return nil
}

// Delete always fails. Course rows back enrollment history and are retired
// with Deactivate instead.
func (s *PostgresCourseStore) Delete(ctx context.Context, code string, curriculumID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Warn("course hard delete rejected",
		slog.String("code", code),
		slog.Int64("curriculum_id", curriculumID))
	return domain.ErrCourseHardDelete
}

// TotalCredits sums the credits of the active courses in a curriculum.
func (s *PostgresCourseStore) TotalCredits(ctx context.Context, curriculumID int64) (int, error) {
	query := `SELECT COALESCE(SUM(credits), 0) FROM courses WHERE curriculum_id = $1 AND is_active`

	var total int
	if err := s.db.QueryRowContext(ctx, query, curriculumID).Scan(&total); err != nil {
		return 0, MapError(err)
	}
	return total, nil
}

// SemesterStats returns per-semester course and credit aggregates for the
// active courses of a curriculum.
func (s *PostgresCourseStore) SemesterStats(ctx context.Context, curriculumID int64) ([]*domain.SemesterStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT semester, COUNT(*), COALESCE(SUM(credits), 0)
		FROM courses
		WHERE curriculum_id = $1 AND is_active
		GROUP BY semester
		ORDER BY semester
	`
	rows, err := s.db.QueryContext(ctx, query, curriculumID)
	if err != nil {
		log.Error("failed to load semester stats",
			slog.String("error", err.Error()),
			slog.Int64("curriculum_id", curriculumID))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	stats := []*domain.SemesterStats{}
	for rows.Next() {
		var st domain.SemesterStats
		if err := rows.Scan(&st.Semester, &st.CourseCount, &st.TotalCredits); err != nil {
			return nil, err
		}
		stats = append(stats, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return stats, nil
}

// AddPrerequisite links a prerequisite to a course within the same curriculum
// and fills in the generated ID.
func (s *PostgresCourseStore) AddPrerequisite(ctx context.Context, p *domain.Prerequisite) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("prerequisite validation failed",
			slog.String("error", err.Error()),
			slog.String("course_code", p.CourseCode))
		return err
	}

	query := `
		INSERT INTO prerequisites (course_code, curriculum_id, prerequisite_code, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		p.CourseCode,
		p.CurriculumID,
		p.PrerequisiteCode,
		p.Type,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: prerequisite %q for course %q",
				store.ErrDuplicate, p.PrerequisiteCode, p.CourseCode)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: course %q or %q not found in curriculum %d",
				store.ErrInvalidEntity, p.CourseCode, p.PrerequisiteCode, p.CurriculumID)
		}
		log.Error("failed to add prerequisite",
			slog.String("error", err.Error()),
			slog.String("course_code", p.CourseCode))
		return MapError(err)
	}

	log.Info("prerequisite added",
		slog.String("course_code", p.CourseCode),
		slog.String("prerequisite_code", p.PrerequisiteCode),
		slog.Int64("curriculum_id", p.CurriculumID))
	return nil
}

// ListPrerequisites returns the prerequisites of a course.
func (s *PostgresCourseStore) ListPrerequisites(
	ctx context.Context,
	courseCode string,
	curriculumID int64,
) ([]*domain.Prerequisite, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_code, curriculum_id, prerequisite_code, type, created_at
		FROM prerequisites
		WHERE course_code = $1 AND curriculum_id = $2
		ORDER BY prerequisite_code
	`
	rows, err := s.db.QueryContext(ctx, query, courseCode, curriculumID)
	if err != nil {
		log.Error("failed to list prerequisites",
			slog.String("error", err.Error()),
			slog.String("course_code", courseCode))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	prerequisites := []*domain.Prerequisite{}
	for rows.Next() {
		var (
			p          domain.Prerequisite
			prereqType string
		)
		err := rows.Scan(&p.ID, &p.CourseCode, &p.CurriculumID, &p.PrerequisiteCode, &prereqType, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		p.Type = domain.PrerequisiteType(prereqType)
		prerequisites = append(prerequisites, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return prerequisites, nil
}

// RemovePrerequisite deletes a prerequisite link.
func (s *PostgresCourseStore) RemovePrerequisite(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM prerequisites WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to remove prerequisite",
			slog.String("error", err.Error()),
			slog.Int64("prerequisite_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrPrerequisiteNotFound); err != nil {
		return err
	}

	log.Info("prerequisite removed", slog.Int64("prerequisite_id", id))
	return nil
}

// WithTx returns a store instance bound to the given transaction.
func (s *PostgresCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	return &PostgresCourseStore{db: tx, logger: s.logger}
}

func scanCourse(row rowScanner) (*domain.Course, error) {
	var (
		c           domain.Course
		nameEnglish sql.NullString
		cluster     sql.NullString
		courseType  string
	)
	err := row.Scan(
		&c.Code,
		&c.CurriculumID,
		&c.Name,
		&nameEnglish,
		&c.Credits,
		&c.Semester,
		&cluster,
		&courseType,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.NameEnglish = nameEnglish.String
	c.Cluster = cluster.String
	c.Type = domain.CourseType(courseType)
	return &c, nil
}

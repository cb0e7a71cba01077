package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/store"
)

func TestCourseStoreDeleteAlwaysFails(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresCourseStore(db, nil)

	err := s.Delete(context.Background(), "IF101", 1)

	assert.ErrorIs(t, err, domain.ErrCourseHardDelete)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	// The store must not touch the database at all.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreDeactivate(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresCourseStore(db, nil)

	mock.ExpectExec(`UPDATE courses SET is_active = FALSE`).
		WithArgs(sqlmock.AnyArg(), "IF101", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Deactivate(context.Background(), "IF101", 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreDeactivateNotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresCourseStore(db, nil)

	mock.ExpectExec(`UPDATE courses SET is_active = FALSE`).
		WithArgs(sqlmock.AnyArg(), "XX999", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Deactivate(context.Background(), "XX999", 1)
	assert.ErrorIs(t, err, store.ErrCourseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreTotalCredits(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresCourseStore(db, nil)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(credits\), 0\) FROM courses`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(146))

	total, err := s.TotalCredits(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 146, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreSemesterStats(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresCourseStore(db, nil)

	mock.ExpectQuery(`SELECT semester, COUNT\(\*\), COALESCE\(SUM\(credits\), 0\) FROM courses`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"semester", "count", "credits"}).
			AddRow(1, 6, 19).
			AddRow(2, 6, 20))

	stats, err := s.SemesterStats(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Semester)
	assert.Equal(t, 19, stats[0].TotalCredits)
	assert.Equal(t, 6, stats[1].CourseCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStoreCreateDuplicate(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresCourseStore(db, nil)

	course, err := domain.NewCourse("IF101", 1, "Dasar Pemrograman", 3, 1, domain.CourseTypeMandatory)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO courses`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "courses_pkey"})

	err = s.Create(context.Background(), course)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

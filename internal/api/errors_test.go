package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/service/auth"
	"github.com/akademika/obe-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "expired token",
			err:        auth.ErrExpiredToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid refresh token",
			err:        auth.ErrInvalidRefreshToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "curriculum not found",
			err:        store.ErrCurriculumNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("loading course: %w", store.ErrCourseNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "duplicate entity",
			err:        domain.NewDuplicateEntityError("curriculum", "code", "K2024"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "store duplicate",
			err:        store.ErrDuplicate,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "lifecycle violation",
			err:        domain.InvalidOperationf("cannot transition from %s to %s", "draft", "active"),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "course hard delete",
			err:        domain.ErrCourseHardDelete,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "curriculum immutable",
			err:        domain.ErrCurriculumImmutable,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid entity",
			err:        store.ErrInvalidEntity,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown error",
			err:        errors.New("database connection refused"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "not found",
			err:      store.ErrStudentNotFound,
			wantCode: domain.CodeNotFound,
		},
		{
			name:     "duplicate entity",
			err:      domain.NewDuplicateEntityError("course", "code", "IF101"),
			wantCode: domain.CodeDuplicateEntity,
		},
		{
			name:     "invalid operation",
			err:      domain.ErrCourseHardDelete,
			wantCode: domain.CodeInvalidOperation,
		},
		{
			name:     "unknown error has no code",
			err:      errors.New("boom"),
			wantCode: "",
		},
		{
			name:     "auth error has no code",
			err:      auth.ErrExpiredToken,
			wantCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, ErrorCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "nil error",
			err:     nil,
			wantMsg: "An unexpected error occurred",
		},
		{
			name:    "curriculum not found",
			err:     store.ErrCurriculumNotFound,
			wantMsg: "Curriculum not found",
		},
		{
			name:    "wrapped student not found",
			err:     fmt.Errorf("assigning curriculum: %w", store.ErrStudentNotFound),
			wantMsg: "Student not found",
		},
		{
			name:    "duplicate entity message passes through",
			err:     domain.NewDuplicateEntityError("curriculum", "code", "K2024"),
			wantMsg: `curriculum with code "K2024" already exists`,
		},
		{
			name:    "invalid operation message passes through without prefix",
			err:     domain.InvalidOperationf("cannot archive curriculum with %d active students", 17),
			wantMsg: "cannot archive curriculum with 17 active students",
		},
		{
			name:    "course hard delete",
			err:     domain.ErrCourseHardDelete,
			wantMsg: "courses cannot be hard-deleted, clear the active flag instead",
		},
		{
			name:    "unknown error is sanitized",
			err:     errors.New("pq: connection refused on host db.internal"),
			wantMsg: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	req := CreateCurriculumRequest{
		ProgramID:     "TIF",
		Name:          "Kurikulum 2024",
		EffectiveYear: 2024,
	}
	err := shared.Validate.Struct(req)
	require.Error(t, err)

	msg := SanitizeValidationError(err)
	assert.Equal(t, "Invalid Code: required field", msg)

	// Unrecognized error formats collapse to a generic message.
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}

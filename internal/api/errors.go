package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/service/auth"
	"github.com/akademika/obe-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types to
// clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, domain.ErrDuplicateEntity),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Business rule violations: lifecycle guards, curriculum immutability,
	// the course non-deletion rule, archive gates.
	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the machine-readable code for the error, or an empty
// string when the error has no client-facing code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.CodeNotFound
	case errors.Is(err, domain.ErrDuplicateEntity), errors.Is(err, store.ErrDuplicate):
		return domain.CodeDuplicateEntity
	case errors.Is(err, domain.ErrInvalidOperation):
		return domain.CodeInvalidOperation
	default:
		return ""
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. Domain rule violations carry messages written for the
// client (they name the violated rule, never internals) and pass through
// verbatim; everything else collapses to a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	// Not found errors
	case errors.Is(err, store.ErrProgramNotFound):
		return "Program not found"
	case errors.Is(err, store.ErrCurriculumNotFound):
		return "Curriculum not found"
	case errors.Is(err, store.ErrOutcomeNotFound):
		return "Learning outcome not found"
	case errors.Is(err, store.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, store.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, store.ErrEnrollmentNotFound):
		return "Enrollment not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Entity not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, domain.ErrDuplicateEntity):
		return err.Error()
	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	// Business rule violations carry their own client-facing message.
	case errors.Is(err, domain.ErrInvalidOperation):
		return strings.TrimPrefix(err.Error(), domain.ErrInvalidOperation.Error()+": ")

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError writes the standard error response for a service-layer
// error: mapped status code, machine-readable code, sanitized message, and
// full detail in the logs.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	opts := []shared.ResponseOption{}
	if code := ErrorCode(err); code != "" {
		opts = append(opts, shared.WithErrorCode(code))
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'CreateCurriculumRequest.Code' Error:Field
	// validation for 'Code' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gt", "gte":
		return "too small"
	case "lt", "lte":
		return "too large"
	default:
		return "validation failed"
	}
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/service"
)

// EnrollRequest defines the payload for enrolling a student in a course.
// Courses are keyed by code within a curriculum, so both identify the course.
type EnrollRequest struct {
	CourseCode   string `json:"course_code"   validate:"required"`
	CurriculumID int64  `json:"curriculum_id" validate:"required,gt=0"`
	Term         string `json:"term"          validate:"required"`
}

// RecordGradeRequest defines the payload for recording an enrollment's final
// grade.
type RecordGradeRequest struct {
	FinalGrade  float64 `json:"final_grade"  validate:"gte=0,lte=100"`
	LetterGrade string  `json:"letter_grade" validate:"required,oneof=A AB B BC C D E"`
}

// EnrollmentHandler handles enrollment-related HTTP requests.
type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
	logger            *slog.Logger
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(
	enrollmentService service.EnrollmentService,
	logger *slog.Logger,
) *EnrollmentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for EnrollmentHandler")
	}

	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		logger:            logger.With(slog.String("component", "enrollment_handler")),
	}
}

// Enroll handles POST /students/{id}/enrollments requests.
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	studentID, ok := getPathString(w, r, "id")
	if !ok {
		return
	}

	var req EnrollRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(r.Context(), studentID, req.CourseCode, req.CurriculumID, req.Term)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, enrollment)
}

// ListByStudent handles GET /students/{id}/enrollments requests. The term
// query parameter filters optionally.
func (h *EnrollmentHandler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := getPathString(w, r, "id")
	if !ok {
		return
	}

	term := r.URL.Query().Get("term")

	enrollments, err := h.enrollmentService.ListByStudent(r.Context(), studentID, term)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, enrollments)
}

// Get handles GET /enrollments/{id} requests.
func (h *EnrollmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, enrollment)
}

// Drop handles POST /enrollments/{id}/drop requests.
func (h *EnrollmentHandler) Drop(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Drop(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, enrollment)
}

// RecordGrade handles PUT /enrollments/{id}/grade requests.
func (h *EnrollmentHandler) RecordGrade(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req RecordGradeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	enrollment, err := h.enrollmentService.RecordGrade(r.Context(), id, req.FinalGrade, req.LetterGrade)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, enrollment)
}

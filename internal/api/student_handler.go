package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/service"
)

// CreateStudentRequest defines the payload for registering a student.
type CreateStudentRequest struct {
	ID         string `json:"id"          validate:"required"`
	Name       string `json:"name"        validate:"required"`
	Email      string `json:"email"       validate:"required,email"`
	ProgramID  string `json:"program_id"  validate:"required"`
	CohortYear int    `json:"cohort_year" validate:"required,gt=1900"`
}

// UpdateStudentRequest defines the payload for updating a student's mutable
// fields. The curriculum assignment has its own endpoint and is immutable
// once set.
type UpdateStudentRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateStudentStatusRequest defines the payload for a student status change.
type UpdateStudentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active leave graduated dismissed"`
}

// AssignCurriculumRequest defines the payload for the one legal curriculum
// assignment of a student.
type AssignCurriculumRequest struct {
	CurriculumID int64 `json:"curriculum_id" validate:"required,gt=0"`
}

// StudentHandler handles student-related HTTP requests.
type StudentHandler struct {
	studentService service.StudentService
	logger         *slog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService service.StudentService, logger *slog.Logger) *StudentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudentHandler")
	}

	return &StudentHandler{
		studentService: studentService,
		logger:         logger.With(slog.String("component", "student_handler")),
	}
}

// Create handles POST /students requests.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	student, err := domain.NewStudent(req.ID, req.Name, req.Email, req.ProgramID, req.CohortYear)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.studentService.Create(r.Context(), student); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, student)
}

// Get handles GET /students/{id} requests.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathString(w, r, "id")
	if !ok {
		return
	}

	student, err := h.studentService.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, student)
}

// List handles GET /students requests. The program_id query parameter is
// required; cohort_year and status filter optionally.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program_id")
	if programID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "program_id query parameter is required")
		return
	}

	cohortYear := 0
	if raw := r.URL.Query().Get("cohort_year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid cohort_year format")
			return
		}
		cohortYear = parsed
	}

	status := domain.StudentStatus(r.URL.Query().Get("status"))

	students, err := h.studentService.ListByProgram(r.Context(), programID, cohortYear, status)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, students)
}

// Update handles PUT /students/{id} requests.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathString(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStudentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// Load the current record so unnamed fields (program, cohort, curriculum)
	// pass through unchanged.
	student, err := h.studentService.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	student.Name = req.Name
	student.Email = req.Email

	updated, err := h.studentService.Update(r.Context(), student)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// UpdateStatus handles PUT /students/{id}/status requests.
func (h *StudentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathString(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStudentStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.studentService.UpdateStatus(r.Context(), id, domain.StudentStatus(req.Status))
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// AssignCurriculum handles PUT /students/{id}/curriculum requests. A student
// with no curriculum gets one; re-assigning the same curriculum is a no-op;
// any other change is rejected.
func (h *StudentHandler) AssignCurriculum(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathString(w, r, "id")
	if !ok {
		return
	}

	var req AssignCurriculumRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	student, err := h.studentService.AssignCurriculum(r.Context(), id, req.CurriculumID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, student)
}

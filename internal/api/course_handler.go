package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/service"
)

// CreateCourseRequest defines the payload for creating a course within a
// curriculum.
type CreateCourseRequest struct {
	Code        string `json:"code"     validate:"required"`
	Name        string `json:"name"     validate:"required"`
	NameEnglish string `json:"name_english,omitempty"`
	Credits     int    `json:"credits"  validate:"required,gt=0"`
	Semester    int    `json:"semester" validate:"required,gte=1,lte=14"`
	Cluster     string `json:"cluster,omitempty"`
	Type        string `json:"type"     validate:"required,oneof=mandatory elective general_education"`
}

// UpdateCourseRequest defines the payload for updating a course's mutable
// fields. Code and curriculum never change.
type UpdateCourseRequest struct {
	Name        string `json:"name"     validate:"required"`
	NameEnglish string `json:"name_english,omitempty"`
	Credits     int    `json:"credits"  validate:"required,gt=0"`
	Semester    int    `json:"semester" validate:"required,gte=1,lte=14"`
	Cluster     string `json:"cluster,omitempty"`
	Type        string `json:"type"     validate:"required,oneof=mandatory elective general_education"`
}

// AddPrerequisiteRequest defines the payload for linking a prerequisite
// course.
type AddPrerequisiteRequest struct {
	PrerequisiteCode string `json:"prerequisite_code" validate:"required"`
	Type             string `json:"type"              validate:"required,oneof=mandatory alternative"`
}

// CourseHandler handles course-related HTTP requests.
type CourseHandler struct {
	courseService service.CourseService
	logger        *slog.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService service.CourseService, logger *slog.Logger) *CourseHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CourseHandler")
	}

	return &CourseHandler{
		courseService: courseService,
		logger:        logger.With(slog.String("component", "course_handler")),
	}
}

// Create handles POST /curricula/{id}/courses requests.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req CreateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course, err := domain.NewCourse(
		req.Code, curriculumID, req.Name, req.Credits, req.Semester,
		domain.CourseType(req.Type))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	course.NameEnglish = req.NameEnglish
	course.Cluster = req.Cluster

	if err := h.courseService.Create(r.Context(), course); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, course)
}

// List handles GET /curricula/{id}/courses requests. The semester query
// parameter filters optionally.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	semester := 0
	if raw := r.URL.Query().Get("semester"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid semester format")
			return
		}
		semester = parsed
	}

	courses, err := h.courseService.ListByCurriculum(r.Context(), curriculumID, semester)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, courses)
}

// Completeness handles GET /curricula/{id}/courses/completeness requests.
func (h *CourseHandler) Completeness(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	report, err := h.courseService.ValidateCompleteness(r.Context(), curriculumID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// SemesterStats handles GET /curricula/{id}/courses/semester-stats requests.
func (h *CourseHandler) SemesterStats(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.courseService.SemesterStats(r.Context(), curriculumID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// TotalCredits handles GET /curricula/{id}/courses/credits requests.
func (h *CourseHandler) TotalCredits(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	total, err := h.courseService.TotalCredits(r.Context(), curriculumID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]int{"total_credits": total})
}

// Get handles GET /courses/{curriculumID}/{code} requests.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	curriculumID, code, ok := h.courseKey(w, r)
	if !ok {
		return
	}

	course, err := h.courseService.Get(r.Context(), code, curriculumID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, course)
}

// Update handles PUT /courses/{curriculumID}/{code} requests.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	curriculumID, code, ok := h.courseKey(w, r)
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course := &domain.Course{
		Code:         code,
		CurriculumID: curriculumID,
		Name:         req.Name,
		NameEnglish:  req.NameEnglish,
		Credits:      req.Credits,
		Semester:     req.Semester,
		Cluster:      req.Cluster,
		Type:         domain.CourseType(req.Type),
	}

	updated, err := h.courseService.Update(r.Context(), course)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// Deactivate handles POST /courses/{curriculumID}/{code}/deactivate requests.
func (h *CourseHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	curriculumID, code, ok := h.courseKey(w, r)
	if !ok {
		return
	}

	if err := h.courseService.Deactivate(r.Context(), code, curriculumID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reactivate handles POST /courses/{curriculumID}/{code}/reactivate requests.
func (h *CourseHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	curriculumID, code, ok := h.courseKey(w, r)
	if !ok {
		return
	}

	if err := h.courseService.Reactivate(r.Context(), code, curriculumID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /courses/{curriculumID}/{code} requests. Courses are
// never hard-deleted; the request always fails with 422 and points the
// caller at deactivation.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	curriculumID, code, ok := h.courseKey(w, r)
	if !ok {
		return
	}

	err := h.courseService.Delete(r.Context(), code, curriculumID)
	// The service unconditionally refuses; map the sentinel like any other
	// business rule violation.
	HandleServiceError(w, r, err)
}

// AddPrerequisite handles POST /courses/{curriculumID}/{code}/prerequisites
// requests.
func (h *CourseHandler) AddPrerequisite(w http.ResponseWriter, r *http.Request) {
	curriculumID, code, ok := h.courseKey(w, r)
	if !ok {
		return
	}

	var req AddPrerequisiteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	prerequisite, err := domain.NewPrerequisite(
		code, curriculumID, req.PrerequisiteCode, domain.PrerequisiteType(req.Type))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.courseService.AddPrerequisite(r.Context(), prerequisite); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, prerequisite)
}

// ListPrerequisites handles GET /courses/{curriculumID}/{code}/prerequisites
// requests.
func (h *CourseHandler) ListPrerequisites(w http.ResponseWriter, r *http.Request) {
	curriculumID, code, ok := h.courseKey(w, r)
	if !ok {
		return
	}

	prerequisites, err := h.courseService.ListPrerequisites(r.Context(), code, curriculumID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, prerequisites)
}

// RemovePrerequisite handles DELETE /prerequisites/{id} requests.
func (h *CourseHandler) RemovePrerequisite(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.courseService.RemovePrerequisite(r.Context(), id); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// courseKey extracts the composite course key from the URL path.
func (h *CourseHandler) courseKey(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	curriculumID, ok := getPathID(w, r, "curriculumID")
	if !ok {
		return 0, "", false
	}

	code, ok := getPathString(w, r, "code")
	if !ok {
		return 0, "", false
	}

	return curriculumID, code, true
}

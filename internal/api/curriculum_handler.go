package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/platform/logger"
	"github.com/akademika/obe-api/internal/service"
)

// CreateCurriculumRequest defines the payload for creating a curriculum.
type CreateCurriculumRequest struct {
	ProgramID     string `json:"program_id"     validate:"required"`
	Code          string `json:"code"           validate:"required"`
	Name          string `json:"name"           validate:"required"`
	EffectiveYear int    `json:"effective_year" validate:"required,gt=1900"`
	EndYear       *int   `json:"end_year,omitempty"`
	Description   string `json:"description,omitempty"`
}

// UpdateCurriculumRequest defines the payload for updating a curriculum's
// editable fields. Program, code, effective year, and status never change
// through this endpoint.
type UpdateCurriculumRequest struct {
	Name         string     `json:"name" validate:"required"`
	EndYear      *int       `json:"end_year,omitempty"`
	Description  string     `json:"description,omitempty"`
	DecreeNumber string     `json:"decree_number,omitempty"`
	DecreeDate   *time.Time `json:"decree_date,omitempty"`
}

// ActivateCurriculumRequest defines the payload for activating an approved
// curriculum.
type ActivateCurriculumRequest struct {
	DecreeNumber string    `json:"decree_number" validate:"required"`
	DecreeDate   time.Time `json:"decree_date"   validate:"required"`
	SetPrimary   bool      `json:"set_primary"`
}

// CurriculumHandler handles curriculum-related HTTP requests.
type CurriculumHandler struct {
	curriculumService service.CurriculumService
	logger            *slog.Logger
}

// NewCurriculumHandler creates a new CurriculumHandler.
func NewCurriculumHandler(
	curriculumService service.CurriculumService,
	logger *slog.Logger,
) *CurriculumHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CurriculumHandler")
	}

	return &CurriculumHandler{
		curriculumService: curriculumService,
		logger:            logger.With(slog.String("component", "curriculum_handler")),
	}
}

// Create handles POST /curricula requests.
func (h *CurriculumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCurriculumRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	curriculum, err := domain.NewCurriculum(req.ProgramID, req.Code, req.Name, req.EffectiveYear)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	curriculum.EndYear = req.EndYear
	curriculum.Description = req.Description

	if err := h.curriculumService.Create(r.Context(), curriculum); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, curriculum)
}

// Get handles GET /curricula/{id} requests.
func (h *CurriculumHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	curriculum, err := h.curriculumService.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, curriculum)
}

// List handles GET /curricula requests. The program_id query parameter is
// required; status filters optionally.
func (h *CurriculumHandler) List(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program_id")
	if programID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "program_id query parameter is required")
		return
	}

	status := domain.CurriculumStatus(r.URL.Query().Get("status"))

	curricula, err := h.curriculumService.ListByProgram(r.Context(), programID, status)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, curricula)
}

// GetPrimary handles GET /programs/{programID}/primary-curriculum requests.
func (h *CurriculumHandler) GetPrimary(w http.ResponseWriter, r *http.Request) {
	programID, ok := getPathString(w, r, "programID")
	if !ok {
		return
	}

	curriculum, err := h.curriculumService.GetPrimary(r.Context(), programID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, curriculum)
}

// Update handles PUT /curricula/{id} requests.
func (h *CurriculumHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCurriculumRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	curriculum := &domain.Curriculum{
		ID:           id,
		Name:         req.Name,
		EndYear:      req.EndYear,
		Description:  req.Description,
		DecreeNumber: req.DecreeNumber,
		DecreeDate:   req.DecreeDate,
	}

	updated, err := h.curriculumService.Update(r.Context(), curriculum)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// SubmitForReview handles POST /curricula/{id}/submit requests.
func (h *CurriculumHandler) SubmitForReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.curriculumService.SubmitForReview)
}

// Approve handles POST /curricula/{id}/approve requests.
func (h *CurriculumHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.curriculumService.Approve)
}

// Activate handles POST /curricula/{id}/activate requests.
func (h *CurriculumHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req ActivateCurriculumRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("activating curriculum",
		slog.Int64("curriculum_id", id),
		slog.String("decree_number", req.DecreeNumber),
		slog.Bool("set_primary", req.SetPrimary))

	curriculum, err := h.curriculumService.Activate(
		r.Context(), id, req.DecreeNumber, req.DecreeDate, req.SetPrimary)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, curriculum)
}

// Deactivate handles POST /curricula/{id}/deactivate requests.
func (h *CurriculumHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.curriculumService.Deactivate)
}

// Archive handles POST /curricula/{id}/archive requests.
func (h *CurriculumHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.curriculumService.Archive)
}

// Delete handles DELETE /curricula/{id} requests. Only drafts can be deleted.
func (h *CurriculumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.curriculumService.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /curricula/{id}/stats requests.
func (h *CurriculumHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.curriculumService.Stats(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// transition runs one of the parameterless lifecycle transitions and writes
// the resulting curriculum.
func (h *CurriculumHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id int64) (*domain.Curriculum, error),
) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	curriculum, err := fn(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, curriculum)
}

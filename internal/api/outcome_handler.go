package api

import (
	"log/slog"
	"net/http"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/service"
)

// CreateOutcomeRequest defines the payload for creating a learning outcome.
type CreateOutcomeRequest struct {
	Code         string `json:"code"        validate:"required"`
	Description  string `json:"description" validate:"required"`
	Category     string `json:"category"    validate:"required,oneof=sikap pengetahuan keterampilan_umum keterampilan_khusus"`
	DisplayOrder *int   `json:"display_order,omitempty" validate:"omitempty,gte=1"`
}

// UpdateOutcomeRequest defines the payload for updating a learning outcome.
type UpdateOutcomeRequest struct {
	Description  string `json:"description" validate:"required"`
	Category     string `json:"category"    validate:"required,oneof=sikap pengetahuan keterampilan_umum keterampilan_khusus"`
	DisplayOrder *int   `json:"display_order,omitempty" validate:"omitempty,gte=1"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// ReorderOutcomesRequest defines the payload for reordering a curriculum's
// outcomes. IDs are listed in the desired display order.
type ReorderOutcomesRequest struct {
	OutcomeIDs []int64 `json:"outcome_ids" validate:"required,min=1,dive,gt=0"`
}

// OutcomeHandler handles learning-outcome HTTP requests.
type OutcomeHandler struct {
	outcomeService service.OutcomeService
	logger         *slog.Logger
}

// NewOutcomeHandler creates a new OutcomeHandler.
func NewOutcomeHandler(outcomeService service.OutcomeService, logger *slog.Logger) *OutcomeHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for OutcomeHandler")
	}

	return &OutcomeHandler{
		outcomeService: outcomeService,
		logger:         logger.With(slog.String("component", "outcome_handler")),
	}
}

// Create handles POST /curricula/{id}/outcomes requests.
func (h *OutcomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req CreateOutcomeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	outcome, err := domain.NewLearningOutcome(
		curriculumID, req.Code, req.Description,
		domain.OutcomeCategory(req.Category), req.DisplayOrder)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.outcomeService.Create(r.Context(), outcome); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, outcome)
}

// List handles GET /curricula/{id}/outcomes requests. The category query
// parameter filters optionally.
func (h *OutcomeHandler) List(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	category := domain.OutcomeCategory(r.URL.Query().Get("category"))

	outcomes, err := h.outcomeService.ListByCurriculum(r.Context(), curriculumID, category)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomes)
}

// Summary handles GET /curricula/{id}/outcomes/summary requests, returning
// per-category counts of active outcomes.
func (h *OutcomeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	counts, err := h.outcomeService.CountByCategory(r.Context(), curriculumID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, counts)
}

// Reorder handles PUT /curricula/{id}/outcomes/reorder requests.
func (h *OutcomeHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	curriculumID, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req ReorderOutcomesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.outcomeService.Reorder(r.Context(), curriculumID, req.OutcomeIDs); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	outcomes, err := h.outcomeService.ListByCurriculum(r.Context(), curriculumID, "")
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomes)
}

// Get handles GET /outcomes/{id} requests.
func (h *OutcomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	outcome, err := h.outcomeService.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcome)
}

// Update handles PUT /outcomes/{id} requests.
func (h *OutcomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateOutcomeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	outcome := &domain.LearningOutcome{
		ID:           id,
		Description:  req.Description,
		Category:     domain.OutcomeCategory(req.Category),
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		outcome.IsActive = *req.IsActive
	}

	updated, err := h.outcomeService.Update(r.Context(), outcome)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// Remove handles DELETE /outcomes/{id} requests. Outcomes are soft-deleted;
// the row stays with its active flag cleared.
func (h *OutcomeHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.outcomeService.Remove(r.Context(), id); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

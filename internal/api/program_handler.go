package api

import (
	"log/slog"
	"net/http"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/service"
)

// CreateProgramRequest defines the payload for creating a study program.
type CreateProgramRequest struct {
	ID            string `json:"id"      validate:"required"`
	Faculty       string `json:"faculty" validate:"required"`
	Name          string `json:"name"    validate:"required"`
	Level         string `json:"level"   validate:"required,oneof=D3 D4 S1 S2 S3"`
	Accreditation string `json:"accreditation,omitempty"`
}

// UpdateProgramRequest defines the payload for updating a study program.
type UpdateProgramRequest struct {
	Faculty       string `json:"faculty" validate:"required"`
	Name          string `json:"name"    validate:"required"`
	Level         string `json:"level"   validate:"required,oneof=D3 D4 S1 S2 S3"`
	Accreditation string `json:"accreditation,omitempty"`
}

// ProgramHandler handles study-program HTTP requests.
type ProgramHandler struct {
	programService service.ProgramService
	logger         *slog.Logger
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService service.ProgramService, logger *slog.Logger) *ProgramHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgramHandler")
	}

	return &ProgramHandler{
		programService: programService,
		logger:         logger.With(slog.String("component", "program_handler")),
	}
}

// Create handles POST /programs requests.
func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProgramRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	program, err := domain.NewProgram(req.ID, req.Faculty, req.Name, domain.DegreeLevel(req.Level))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	program.Accreditation = req.Accreditation

	if err := h.programService.Create(r.Context(), program); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, program)
}

// Get handles GET /programs/{programID} requests.
func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathString(w, r, "programID")
	if !ok {
		return
	}

	program, err := h.programService.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, program)
}

// List handles GET /programs requests.
func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.programService.List(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, programs)
}

// Update handles PUT /programs/{programID} requests.
func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathString(w, r, "programID")
	if !ok {
		return
	}

	var req UpdateProgramRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	program := &domain.Program{
		ID:            id,
		Faculty:       req.Faculty,
		Name:          req.Name,
		Level:         domain.DegreeLevel(req.Level),
		Accreditation: req.Accreditation,
	}

	updated, err := h.programService.Update(r.Context(), program)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

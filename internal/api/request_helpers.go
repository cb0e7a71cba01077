package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/akademika/obe-api/internal/api/shared"
)

// getPathID extracts a numeric ID from the URL path parameters. It writes a
// 400 response and returns false when the parameter is missing or not a
// positive integer.
func getPathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, paramName+" is required")
		return 0, false
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+paramName+" format")
		return 0, false
	}

	return id, true
}

// getPathString extracts a non-empty string from the URL path parameters. It
// writes a 400 response and returns false when the parameter is missing.
func getPathString(w http.ResponseWriter, r *http.Request, paramName string) (string, bool) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, paramName+" is required")
		return "", false
	}
	return pathParam, true
}

// decodeAndValidate parses the JSON request body into v and validates it. It
// writes the error response itself and reports whether the request may
// proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}

	if err := shared.Validate.Struct(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}

	return true
}

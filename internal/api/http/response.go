package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"devicepool-backend/internal/domain"
	"devicepool-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound    *domain.NotFoundError
		conflict    *domain.ConflictError
		consistency *domain.ConsistencyError
		validation  *domain.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &consistency):
		logger.Error("Consistency fault surfaced to client", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		logger.Error("Unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

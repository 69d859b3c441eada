package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/housedash/internal/contracts"
	"github.com/wonny/housedash/internal/dashboard"
	"github.com/wonny/housedash/internal/dataset"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrRegionNotFound), errors.Is(err, dashboard.ErrUnknownChart):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInsufficientData), errors.Is(err, dashboard.ErrForecastUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dataset.ErrNoTable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status.
// Internal errors are logged and hidden from the client.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		respondError(w, status, "Internal server error")
		return
	}
	respondError(w, status, err.Error())
}

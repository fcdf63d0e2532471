package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/plot"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/internal/store"
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

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, series.ErrEmptySeries),
		errors.Is(err, series.ErrNoOverlap),
		errors.Is(err, estimate.ErrInsufficientData),
		errors.Is(err, estimate.ErrZeroVolatility),
		errors.Is(err, plot.ErrUnknownBackend),
		errors.Is(err, plot.ErrTooFewPoints),
		errors.Is(err, benchmark.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, benchmark.ErrNoData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

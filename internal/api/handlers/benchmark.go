package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/logger"
)

// BenchmarkHandler exposes benchmark returns
type BenchmarkHandler struct {
	defaults Defaults
	provider benchmark.Provider
	logger   *logger.Logger
}

// NewBenchmarkHandler creates a new benchmark handler
func NewBenchmarkHandler(defaults Defaults, provider benchmark.Provider, log *logger.Logger) *BenchmarkHandler {
	return &BenchmarkHandler{
		defaults: defaults,
		provider: provider,
		logger:   log.Component("api.benchmark"),
	}
}

// BenchmarkResponse is the body returned by GetReturns
type BenchmarkResponse struct {
	Provider string        `json:"provider"`
	Index    string        `json:"index"`
	Start    string        `json:"start"`
	Returns  series.Series `json:"returns"`
}

// GetReturns returns close-to-close benchmark returns
// GET /api/benchmark/{index}?start=YYYY-MM-DD
func (h *BenchmarkHandler) GetReturns(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondError(w, http.StatusServiceUnavailable, "No benchmark provider configured")
		return
	}

	index := strings.ToUpper(mux.Vars(r)["index"])

	start := h.defaults.Start
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'start' date format (expected YYYY-MM-DD)")
			return
		}
		start = t
	}

	returns, err := benchmark.Returns(r.Context(), h.provider, index, start, h.defaults.Label)
	if err != nil {
		h.logger.WithError(err).WithField("index", index).Error("Failed to get benchmark returns")
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		respondError(w, status, "Failed to retrieve benchmark returns")
		return
	}

	respondJSON(w, http.StatusOK, BenchmarkResponse{
		Provider: h.provider.Name(),
		Index:    index,
		Start:    start.Format("2006-01-02"),
		Returns:  returns,
	})
}

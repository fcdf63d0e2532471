package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/plot"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/internal/store"
	"github.com/wonny/perfstat/pkg/logger"
)

// EstimateHandler serves statistics and charts for posted return series
// ⭐ SSOT: estimate API handlers live in this struct
type EstimateHandler struct {
	defaults Defaults
	provider benchmark.Provider
	runs     store.RunStore
	logger   *logger.Logger
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(defaults Defaults, provider benchmark.Provider, runs store.RunStore, log *logger.Logger) *EstimateHandler {
	if runs == nil {
		runs = store.Nop{}
	}
	return &EstimateHandler{
		defaults: defaults,
		provider: provider,
		runs:     runs,
		logger:   log.Component("api.estimate"),
	}
}

// EstimateResponse is the body returned by Estimate
type EstimateResponse struct {
	Report   *estimate.Report `json:"report"`
	Warnings []string         `json:"warnings,omitempty"`
	RunID    int64            `json:"run_id,omitempty"`
}

// Estimate computes the performance report
// POST /api/estimate?save=true
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	returns, err := req.series()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	analyzer := estimate.NewAnalyzer(req.options(h.defaults), h.logger)
	report, err := analyzer.Estimate(returns, nil)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	resp := EstimateResponse{Report: report}

	if req.Benchmark != nil {
		index, start, err := req.benchmark(h.defaults)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		frame, err := h.join(r, returns, index, start)
		if err != nil {
			h.logger.WithError(err).WithField("index", index).Warn("Benchmark join failed")
			resp.Warnings = append(resp.Warnings, "benchmark: "+err.Error())
		} else {
			report.Benchmark = analyzer.Compare(frame)
			report.Benchmark.Index = index
		}
	}

	if r.URL.Query().Get("save") == "true" {
		index := ""
		if report.Benchmark != nil {
			index = report.Benchmark.Index
		}
		run := store.RunFromReport(report, index)
		if err := h.runs.Save(ctx, run); err != nil {
			h.logger.WithError(err).Error("Failed to save run")
			respondError(w, http.StatusInternalServerError, "Failed to save run")
			return
		}
		resp.RunID = run.ID
	}

	respondJSON(w, http.StatusOK, resp)
}

// Chart renders the returns or drawdown chart
// POST /api/charts/{kind}?backend=static|svg|interactive&lang=en|ru
func (h *EstimateHandler) Chart(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	if kind != "returns" && kind != "drawdown" {
		respondError(w, http.StatusNotFound, "Unknown chart kind (expected returns or drawdown)")
		return
	}

	backend := r.URL.Query().Get("backend")
	if backend == "" {
		backend = h.defaults.Backend
	}
	renderer, err := plot.New(backend)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = h.defaults.Lang
	}
	labels, _ := plot.LabelsFor(lang)

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	returns, err := req.series()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// render into memory so a failure can still become a JSON error
	var buf bytes.Buffer
	switch kind {
	case "drawdown":
		dd, err := estimate.Drawdown(returns)
		if err != nil {
			respondError(w, statusFor(err), err.Error())
			return
		}
		err = renderer.RenderDrawdown(&buf, dd, labels)
		if err != nil {
			respondError(w, statusFor(err), err.Error())
			return
		}

	case "returns":
		index, start, err := req.benchmark(h.defaults)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		frame, err := h.join(r, returns, index, start)
		if err != nil {
			h.logger.WithError(err).WithField("index", index).Warn("Benchmark join failed")
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
			respondError(w, status, err.Error())
			return
		}
		if err := renderer.RenderReturns(&buf, frame, labels.ForIndex(index)); err != nil {
			respondError(w, statusFor(err), err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *EstimateHandler) join(r *http.Request, returns series.Series, index string, start time.Time) (series.Frame, error) {
	if h.provider == nil {
		return series.Frame{}, errors.New("no benchmark provider configured")
	}
	return benchmark.JoinWithStrategy(r.Context(), h.provider, returns, index, start, h.defaults.Label)
}

package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/plot"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/internal/store"
	"github.com/wonny/perfstat/pkg/logger"
)

// Config controls one estimator
type Config struct {
	Options estimate.Options

	// Benchmark
	Index         string
	Start         time.Time
	Label         string
	SkipBenchmark bool

	// Output
	OutputDir string
	Labels    plot.Labels
	Open      bool // open interactive charts in the browser
	Table     bool // print the full metrics table after the banner
	Save      bool // persist the run
}

// Result is everything produced by Run
type Result struct {
	Report *estimate.Report
	Frame  *series.Frame
	Charts []string
	RunID  int64
}

// Estimator ties statistics, benchmark, charts and persistence together
// ⭐ SSOT: the estimate pipeline is orchestrated only here
type Estimator struct {
	cfg      Config
	analyzer *estimate.Analyzer
	renderer plot.Renderer
	provider benchmark.Provider
	runs     store.RunStore
	out      io.Writer
	logger   *logger.Logger
}

// NewEstimator creates an estimator. provider may be nil when the
// benchmark is skipped; runs may be nil when nothing is persisted.
func NewEstimator(cfg Config, renderer plot.Renderer, provider benchmark.Provider, runs store.RunStore, out io.Writer, log *logger.Logger) *Estimator {
	if runs == nil {
		runs = store.Nop{}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Labels == (plot.Labels{}) {
		cfg.Labels = plot.English()
	}

	return &Estimator{
		cfg:      cfg,
		analyzer: estimate.NewAnalyzer(cfg.Options, log),
		renderer: renderer,
		provider: provider,
		runs:     runs,
		out:      out,
		logger:   log.Component("report"),
	}
}

// Run prints the summary, renders the drawdown chart, then fetches the
// benchmark and renders the returns chart. A benchmark failure is logged
// and only skips the returns chart.
func (e *Estimator) Run(ctx context.Context, returns series.Series) (*Result, error) {
	report, err := e.analyzer.Estimate(returns, nil)
	if err != nil {
		return nil, err
	}
	result := &Result{Report: report}

	if err := PrintSummary(e.out, report.MaxDrawdown, report.Sharpe, e.cfg.Labels); err != nil {
		return nil, fmt.Errorf("failed to print summary: %w", err)
	}

	ddPath, err := e.PlotDrawdown(returns, &report.Drawdown)
	if err != nil {
		return nil, err
	}
	result.Charts = append(result.Charts, ddPath)

	frame, err := e.join(ctx, returns)
	switch {
	case errors.Is(err, ErrBenchmarkDisabled):
		e.logger.Debug("Benchmark disabled, skipping returns chart")
	case err != nil:
		e.logger.WithError(err).Warn("Benchmark unavailable, skipping returns chart")
	default:
		result.Frame = &frame
		report.Benchmark = e.analyzer.Compare(frame)
		report.Benchmark.Index = e.cfg.Index

		returnsPath, err := e.PlotReturns(ctx, returns, &frame)
		if err != nil {
			return nil, err
		}
		result.Charts = append(result.Charts, returnsPath)
	}

	if e.cfg.Table {
		PrintTable(e.out, report)
	}

	if e.cfg.Save {
		index := ""
		if report.Benchmark != nil {
			index = e.cfg.Index
		}
		run := store.RunFromReport(report, index)
		if err := e.runs.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
		result.RunID = run.ID
	}

	e.logger.WithFields(map[string]interface{}{
		"observations": report.Observations,
		"charts":       result.Charts,
		"run_id":       result.RunID,
	}).Info("Estimate completed")

	return result, nil
}

// PlotReturns renders the cumulative returns chart. A nil frame is
// fetched from the benchmark provider.
func (e *Estimator) PlotReturns(ctx context.Context, returns series.Series, frame *series.Frame) (string, error) {
	if frame == nil {
		joined, err := e.join(ctx, returns)
		if err != nil {
			return "", err
		}
		frame = &joined
	}

	labels := e.cfg.Labels.ForIndex(e.cfg.Index)
	return e.writeChart("returns", func(w io.Writer) error {
		return e.renderer.RenderReturns(w, *frame, labels)
	})
}

// PlotDrawdown renders the drawdown chart. A nil dd is computed from returns.
func (e *Estimator) PlotDrawdown(returns series.Series, dd *series.Series) (string, error) {
	if dd == nil {
		computed, err := estimate.Drawdown(returns)
		if err != nil {
			return "", err
		}
		dd = &computed
	}

	return e.writeChart("drawdown", func(w io.Writer) error {
		return e.renderer.RenderDrawdown(w, *dd, e.cfg.Labels)
	})
}

func (e *Estimator) join(ctx context.Context, returns series.Series) (series.Frame, error) {
	if e.cfg.SkipBenchmark || e.provider == nil {
		return series.Frame{}, ErrBenchmarkDisabled
	}
	return benchmark.JoinWithStrategy(ctx, e.provider, returns, e.cfg.Index, e.cfg.Start, e.cfg.Label)
}

// writeChart renders into <OutputDir>/<name>.<ext>
func (e *Estimator) writeChart(name string, render func(w io.Writer) error) (string, error) {
	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.cfg.OutputDir, name+"."+e.renderer.Ext())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := render(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	e.logger.WithField("path", path).Debug("Chart written")

	if e.cfg.Open && e.renderer.Ext() == "html" {
		if err := openBrowser(path); err != nil {
			e.logger.WithError(err).Warn("Failed to open browser")
		}
	}

	return path, nil
}

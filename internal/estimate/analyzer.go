package estimate

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/logger"
)

// Analyzer computes a full performance report
// ⭐ SSOT: performance statistics are computed only in this package
type Analyzer struct {
	opts   Options
	logger *logger.Logger
}

// NewAnalyzer creates a new performance analyzer
func NewAnalyzer(opts Options, log *logger.Logger) *Analyzer {
	return &Analyzer{
		opts:   opts.normalized(),
		logger: log.Component("estimate"),
	}
}

// Options returns the options in effect
func (a *Analyzer) Options() Options {
	return a.opts
}

// Report is the result of Estimate
type Report struct {
	Name         string    `json:"name"`
	Observations int       `json:"observations"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Spread       float64   `json:"spread"`
	Periods      int       `json:"periods"`

	// Returns
	TotalReturn  float64 `json:"total_return"`
	AnnualReturn float64 `json:"annual_return"`

	// Risk
	Volatility       float64   `json:"volatility"`
	Sharpe           float64   `json:"sharpe"`
	Sortino          float64   `json:"sortino"`
	MaxDrawdown      float64   `json:"max_drawdown"`
	MaxDrawdownDate  time.Time `json:"max_drawdown_date"`
	PeakDate         time.Time `json:"peak_date"`
	RecoveryDate     time.Time `json:"recovery_date,omitempty"` // zero when not recovered
	DrawdownDuration int       `json:"drawdown_duration"`       // periods from peak to recovery or end

	Drawdown series.Series `json:"drawdown"`

	// Benchmark comparison, nil without a joined benchmark
	Benchmark *BenchmarkStats `json:"benchmark,omitempty"`
}

// BenchmarkStats compares the strategy with a benchmark over common dates
type BenchmarkStats struct {
	Name        string  `json:"name"`
	Index       string  `json:"index,omitempty"`
	Overlap     int     `json:"overlap"`
	TotalReturn float64 `json:"total_return"`
	Correlation float64 `json:"correlation"`
	Beta        float64 `json:"beta"`
	Alpha       float64 `json:"alpha"` // strategy minus benchmark total return
}

// Recovered reports whether the deepest drawdown has been recovered
func (r *Report) Recovered() bool {
	return !r.RecoveryDate.IsZero()
}

// Estimate computes the report for returns. frame may be nil.
func (a *Analyzer) Estimate(returns series.Series, frame *series.Frame) (*Report, error) {
	clean := returns.DropNaN()
	if clean.Empty() {
		return nil, series.ErrEmptySeries
	}

	sharpe, err := SharpeRatio(clean, a.opts.Spread, a.opts.PeriodsPerYear)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate sharpe ratio: %w", err)
	}

	sortino, err := SortinoRatio(clean, a.opts.Spread, a.opts.PeriodsPerYear)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate sortino ratio: %w", err)
	}

	dd, err := Drawdown(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate drawdown: %w", err)
	}

	first, _ := clean.First()
	last, _ := clean.Last()

	report := &Report{
		Name:         clean.Name,
		Observations: clean.Len(),
		StartDate:    first.Time,
		EndDate:      last.Time,
		Spread:       a.opts.Spread,
		Periods:      a.opts.PeriodsPerYear,
		TotalReturn:  TotalReturn(clean),
		Volatility:   Volatility(clean, a.opts.PeriodsPerYear),
		Sharpe:       sharpe,
		Sortino:      sortino,
		Drawdown:     dd,
	}
	report.AnnualReturn = annualize(report.TotalReturn, report.Observations, a.opts.PeriodsPerYear)
	a.fillDrawdownEpisode(report, dd)

	if frame != nil && frame.Len() > 0 {
		report.Benchmark = a.Compare(*frame)
	}

	a.logger.WithFields(map[string]interface{}{
		"name":         report.Name,
		"observations": report.Observations,
		"total_return": report.TotalReturn,
		"sharpe":       report.Sharpe,
		"max_drawdown": report.MaxDrawdown,
	}).Info("Performance analysis completed")

	return report, nil
}

// fillDrawdownEpisode locates the deepest trough, its preceding peak and
// the first later date back at the peak
func (a *Analyzer) fillDrawdownEpisode(report *Report, dd series.Series) {
	trough, err := dd.ArgMin()
	if err != nil {
		return
	}

	report.MaxDrawdown = dd.Points[trough].Value
	report.MaxDrawdownDate = dd.Points[trough].Time
	if report.MaxDrawdown == 0 {
		report.PeakDate = report.MaxDrawdownDate
		return
	}

	peak := trough
	for peak > 0 && dd.Points[peak].Value < 0 {
		peak--
	}
	report.PeakDate = dd.Points[peak].Time

	end := len(dd.Points) - 1
	for i := trough + 1; i < len(dd.Points); i++ {
		if dd.Points[i].Value == 0 {
			report.RecoveryDate = dd.Points[i].Time
			end = i
			break
		}
	}
	report.DrawdownDuration = end - peak
}

// Compare computes benchmark statistics over the joined frame
func (a *Analyzer) Compare(frame series.Frame) *BenchmarkStats {
	strategy := frame.Strategy.Values()
	bench := frame.Benchmark.Values()

	stats := &BenchmarkStats{
		Name:        frame.Benchmark.Name,
		Overlap:     frame.Len(),
		TotalReturn: TotalReturn(frame.Benchmark),
	}
	stats.Alpha = TotalReturn(frame.Strategy) - stats.TotalReturn

	if len(bench) < 2 {
		return stats
	}

	if variance := stat.Variance(bench, nil); variance > 0 {
		stats.Beta = stat.Covariance(strategy, bench, nil) / variance
	}
	if stat.StdDev(strategy, nil) > 0 && stat.StdDev(bench, nil) > 0 {
		stats.Correlation = stat.Correlation(strategy, bench, nil)
	}

	return stats
}

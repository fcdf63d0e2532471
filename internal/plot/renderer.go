package plot

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/wonny/perfstat/internal/series"
)

// Renderer draws the two standard charts
type Renderer interface {
	// RenderReturns draws the cumulative sum of both frame columns in percent
	RenderReturns(w io.Writer, f series.Frame, labels Labels) error
	// RenderDrawdown draws the drawdown in percent filled down from zero
	RenderDrawdown(w io.Writer, dd series.Series, labels Labels) error
	// Ext is the file extension of the output, without the dot
	Ext() string
	// ContentType is the MIME type of the output
	ContentType() string
}

// Backend names
const (
	BackendStatic      = "static"
	BackendSVG         = "svg"
	BackendInteractive = "interactive"
)

// Palette, as hex RGB without the leading '#'
const (
	colorStrategy     = "483D8B" // DarkSlateBlue
	colorBenchmark    = "800000" // Maroon
	colorDrawdownFill = "8FBC8F" // DarkSeaGreen
	colorDrawdownLine = "2E8B57" // SeaGreen

	lineWidth = 2.5
)

// Backends lists the supported backend names
func Backends() []string {
	return []string{BackendStatic, BackendSVG, BackendInteractive}
}

// New returns the renderer for backend
// ⭐ SSOT: chart backends are selected only here
func New(backend string) (Renderer, error) {
	switch strings.ToLower(backend) {
	case BackendStatic, "png":
		return NewStatic(), nil
	case BackendSVG:
		return NewSVG(), nil
	case BackendInteractive, "html":
		return NewInteractive(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
}

// chartData is the backend-independent content of one chart
type chartData struct {
	times  []time.Time
	lines  [][]float64
	names  []string
	colors []string
}

// returnsData turns a joined frame into cumulative-sum percent lines
func returnsData(f series.Frame, labels Labels) (chartData, error) {
	if f.Len() == 0 {
		return chartData{}, fmt.Errorf("returns chart: %w", ErrTooFewPoints)
	}

	strategyName, benchName := f.Names()
	if labels.Strategy != "" {
		strategyName = labels.Strategy
	}
	if labels.Benchmark != "" {
		benchName = labels.Benchmark
	}

	return chartData{
		times: f.Dates,
		lines: [][]float64{
			f.Strategy.CumSum().Scale(100).Values(),
			f.Benchmark.CumSum().Scale(100).Values(),
		},
		names:  []string{strategyName, benchName},
		colors: []string{colorStrategy, colorBenchmark},
	}, nil
}

// drawdownData turns a drawdown ratio series into percent
func drawdownData(dd series.Series, labels Labels) (chartData, error) {
	if dd.Empty() {
		return chartData{}, fmt.Errorf("drawdown chart: %w", ErrTooFewPoints)
	}

	return chartData{
		times:  dd.Times(),
		lines:  [][]float64{dd.Scale(100).Values()},
		names:  []string{labels.DrawdownTitle},
		colors: []string{colorDrawdownLine},
	}, nil
}

// valueRange returns padded bounds covering every line. A flat chart gets
// a unit band so the axis never collapses.
func (d chartData) valueRange(includeZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, line := range d.lines {
		for _, v := range line {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if includeZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return -1, 1
	}
	if hi-lo < 1e-9 {
		return lo - 1, hi + 1
	}

	pad := (hi - lo) * 0.05
	if includeZero && hi == 0 {
		return lo - pad, 0
	}
	return lo - pad, hi + pad
}

// dateLabels formats the x axis for category-based backends
func (d chartData) dateLabels() []string {
	labels := make([]string, len(d.times))
	for i, t := range d.times {
		labels[i] = t.Format("2006-01-02")
	}
	return labels
}

// widened stretches a single observation over the previous day so
// continuous axes get a non-zero time range
func (d chartData) widened() chartData {
	if len(d.times) != 1 {
		return d
	}

	out := chartData{
		times:  []time.Time{d.times[0].AddDate(0, 0, -1), d.times[0]},
		lines:  make([][]float64, len(d.lines)),
		names:  d.names,
		colors: d.colors,
	}
	for i, line := range d.lines {
		out.lines[i] = []float64{line[0], line[0]}
	}
	return out
}

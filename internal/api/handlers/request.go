package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/series"
)

// Defaults are applied to fields a request leaves out
type Defaults struct {
	Options estimate.Options
	Index   string
	Start   time.Time
	Label   string
	Backend string
	Lang    string
}

// Observation is one {date, value} pair on the wire
type Observation struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// BenchmarkRequest selects the benchmark to join
type BenchmarkRequest struct {
	Index string `json:"index"`
	Start string `json:"start"` // YYYY-MM-DD
}

// EstimateRequest is the body of POST /api/estimate and POST /api/charts/{kind}
type EstimateRequest struct {
	Name      string            `json:"name"`
	Returns   []Observation     `json:"returns"`
	Spread    *float64          `json:"spread,omitempty"`
	Periods   *int              `json:"periods,omitempty"`
	Benchmark *BenchmarkRequest `json:"benchmark,omitempty"`
}

// parseDate accepts a date or an RFC 3339 timestamp
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// series converts the observations into a Series
func (r *EstimateRequest) series() (series.Series, error) {
	if len(r.Returns) == 0 {
		return series.Series{}, series.ErrEmptySeries
	}

	name := r.Name
	if name == "" {
		name = "strategy"
	}

	points := make([]series.Point, len(r.Returns))
	for i, o := range r.Returns {
		t, err := parseDate(o.Date)
		if err != nil {
			return series.Series{}, fmt.Errorf("returns[%d]: invalid date %q", i, o.Date)
		}
		points[i] = series.Point{Time: t, Value: o.Value}
	}

	return series.New(name, points), nil
}

// options merges request overrides into the defaults
func (r *EstimateRequest) options(d Defaults) estimate.Options {
	opts := d.Options
	if r.Spread != nil {
		opts.Spread = *r.Spread
	}
	if r.Periods != nil && *r.Periods > 0 {
		opts.PeriodsPerYear = *r.Periods
	}
	return opts
}

// benchmark resolves index and start date
func (r *EstimateRequest) benchmark(d Defaults) (string, time.Time, error) {
	index, start := d.Index, d.Start
	if r.Benchmark == nil {
		return index, start, nil
	}
	if r.Benchmark.Index != "" {
		index = r.Benchmark.Index
	}
	if r.Benchmark.Start != "" {
		t, err := parseDate(r.Benchmark.Start)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("invalid benchmark start %q", r.Benchmark.Start)
		}
		start = t
	}
	return index, start, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

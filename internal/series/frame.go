package series

import (
	"fmt"
	"math"
	"time"
)

// Frame holds two columns aligned on a common date index
type Frame struct {
	Dates     []time.Time `json:"dates"`
	Strategy  Series      `json:"strategy"`
	Benchmark Series      `json:"benchmark"`
}

// Len returns the number of aligned rows
func (f Frame) Len() int {
	return len(f.Dates)
}

// Names returns the column names
func (f Frame) Names() (string, string) {
	return f.Strategy.Name, f.Benchmark.Name
}

// dateKey truncates a timestamp to its calendar date in its own location
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Join aligns a and b on calendar date, keeping only dates present in
// both with finite values. Rows are indexed by the timestamp from a.
func Join(a, b Series) (Frame, error) {
	if a.Empty() || b.Empty() {
		return Frame{}, ErrEmptySeries
	}

	right := make(map[string]float64, len(b.Points))
	for _, p := range b.Points {
		// last observation of the day wins
		right[dateKey(p.Time)] = p.Value
	}

	seen := make(map[string]int, len(a.Points))
	left := make([]Point, 0, len(a.Points))
	bench := make([]Point, 0, len(a.Points))

	for _, p := range a.Points {
		key := dateKey(p.Time)
		bv, ok := right[key]
		if !ok || !finite(p.Value) || !finite(bv) {
			continue
		}
		if i, dup := seen[key]; dup {
			left[i].Value = p.Value
			continue
		}
		seen[key] = len(left)
		left = append(left, Point{Time: p.Time, Value: p.Value})
		bench = append(bench, Point{Time: p.Time, Value: bv})
	}

	if len(left) == 0 {
		return Frame{}, fmt.Errorf("join %q with %q: %w", a.Name, b.Name, ErrNoOverlap)
	}

	dates := make([]time.Time, len(left))
	for i, p := range left {
		dates[i] = p.Time
	}

	return Frame{
		Dates:     dates,
		Strategy:  Series{Name: a.Name, Points: left},
		Benchmark: Series{Name: b.Name, Points: bench},
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

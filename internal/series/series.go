package series

import (
	"math"
	"sort"
	"time"
)

// Point is a single observation
type Point struct {
	Time  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a named, time-ordered sequence of observations.
// Operations never mutate the receiver; they return a new Series.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// New builds a Series sorted by time. For duplicate timestamps the last
// value wins.
func New(name string, points []Point) Series {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	out := make([]Point, 0, len(sorted))
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}

	return Series{Name: name, Points: out}
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s.Points)
}

// Empty reports whether the series has no observations
func (s Series) Empty() bool {
	return len(s.Points) == 0
}

// Values returns the observation values in time order
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Times returns the observation timestamps in time order
func (s Series) Times() []time.Time {
	times := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		times[i] = p.Time
	}
	return times
}

// First returns the first observation
func (s Series) First() (Point, bool) {
	if s.Empty() {
		return Point{}, false
	}
	return s.Points[0], true
}

// Last returns the last observation
func (s Series) Last() (Point, bool) {
	if s.Empty() {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Rename returns a copy with a new name
func (s Series) Rename(name string) Series {
	return Series{Name: name, Points: s.Points}
}

// Map applies fn to every value
func (s Series) Map(fn func(float64) float64) Series {
	out := make([]Point, len(s.Points))
	for i, p := range s.Points {
		out[i] = Point{Time: p.Time, Value: fn(p.Value)}
	}
	return Series{Name: s.Name, Points: out}
}

// Scale multiplies every value by k
func (s Series) Scale(k float64) Series {
	return s.Map(func(v float64) float64 { return v * k })
}

// DropNaN removes NaN and infinite observations
func (s Series) DropNaN() Series {
	out := make([]Point, 0, len(s.Points))
	for _, p := range s.Points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return Series{Name: s.Name, Points: out}
}

// CumProd1p returns the running product of (1 + value)
func (s Series) CumProd1p() Series {
	out := make([]Point, len(s.Points))
	acc := 1.0
	for i, p := range s.Points {
		acc *= 1 + p.Value
		out[i] = Point{Time: p.Time, Value: acc}
	}
	return Series{Name: s.Name, Points: out}
}

// CumSum returns the running sum of values
func (s Series) CumSum() Series {
	out := make([]Point, len(s.Points))
	acc := 0.0
	for i, p := range s.Points {
		acc += p.Value
		out[i] = Point{Time: p.Time, Value: acc}
	}
	return Series{Name: s.Name, Points: out}
}

// RunningMax returns the running maximum of values
func (s Series) RunningMax() Series {
	out := make([]Point, len(s.Points))
	peak := math.Inf(-1)
	for i, p := range s.Points {
		if p.Value > peak {
			peak = p.Value
		}
		out[i] = Point{Time: p.Time, Value: peak}
	}
	return Series{Name: s.Name, Points: out}
}

// PctChange returns v[i]/v[i-periods] - 1. The leading periods
// observations, which have no predecessor, are dropped.
func (s Series) PctChange(periods int) Series {
	if periods <= 0 {
		periods = 1
	}
	if len(s.Points) <= periods {
		return Series{Name: s.Name, Points: []Point{}}
	}

	out := make([]Point, 0, len(s.Points)-periods)
	for i := periods; i < len(s.Points); i++ {
		prev := s.Points[i-periods].Value
		change := math.NaN()
		if prev != 0 {
			change = s.Points[i].Value/prev - 1
		}
		out = append(out, Point{Time: s.Points[i].Time, Value: change})
	}
	return Series{Name: s.Name, Points: out}.DropNaN()
}

// Min returns the smallest value
func (s Series) Min() (float64, error) {
	i, err := s.ArgMin()
	if err != nil {
		return 0, err
	}
	return s.Points[i].Value, nil
}

// ArgMin returns the index of the smallest value (first one on ties)
func (s Series) ArgMin() (int, error) {
	if s.Empty() {
		return 0, ErrEmptySeries
	}
	idx := 0
	for i, p := range s.Points {
		if p.Value < s.Points[idx].Value {
			idx = i
		}
	}
	return idx, nil
}

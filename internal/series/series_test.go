package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func mustSeries(name string, values ...float64) Series {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Time: day(i + 1), Value: v}
	}
	return New(name, points)
}

func TestNew_SortsAndDeduplicates(t *testing.T) {
	s := New("x", []Point{
		{Time: day(3), Value: 3},
		{Time: day(1), Value: 1},
		{Time: day(2), Value: 2},
		{Time: day(1), Value: 10},
	})

	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{10, 2, 3}, s.Values())
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, s.Times())
}

func TestCumProd1p(t *testing.T) {
	s := mustSeries("r", 0.1, -0.5, 1.0)
	got := s.CumProd1p().Values()

	assert.InDeltaSlice(t, []float64{1.1, 0.55, 1.1}, got, 1e-12)
}

func TestCumSumAndScale(t *testing.T) {
	s := mustSeries("r", 0.01, 0.02, -0.01)

	assert.InDeltaSlice(t, []float64{1, 3, 2}, s.CumSum().Scale(100).Values(), 1e-9)
}

func TestRunningMax(t *testing.T) {
	s := mustSeries("c", 1, 3, 2, 5, 4)

	assert.Equal(t, []float64{1, 3, 3, 5, 5}, s.RunningMax().Values())
}

func TestPctChange(t *testing.T) {
	s := mustSeries("close", 100, 110, 99, 0, 50)
	got := s.PctChange(1)

	// 0 -> 50 has no defined change and is dropped with the leading row
	require.Equal(t, 3, got.Len())
	assert.InDelta(t, 0.1, got.Points[0].Value, 1e-12)
	assert.InDelta(t, -0.1, got.Points[1].Value, 1e-12)
	assert.InDelta(t, -1.0, got.Points[2].Value, 1e-12)
	assert.Equal(t, day(2), got.Points[0].Time)
}

func TestPctChange_TooShort(t *testing.T) {
	assert.Equal(t, 0, mustSeries("close", 100).PctChange(1).Len())
}

func TestDropNaN(t *testing.T) {
	s := mustSeries("r", 1, math.NaN(), 2, math.Inf(1))

	assert.Equal(t, []float64{1, 2}, s.DropNaN().Values())
	assert.Equal(t, 4, s.Len(), "receiver must not be mutated")
}

func TestMinArgMin(t *testing.T) {
	s := mustSeries("dd", 0, -0.2, -0.5, -0.5, 0)

	idx, err := s.ArgMin()
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	min, err := s.Min()
	require.NoError(t, err)
	assert.Equal(t, -0.5, min)

	_, err = Series{}.Min()
	assert.ErrorIs(t, err, ErrEmptySeries)
}

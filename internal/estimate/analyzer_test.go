package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/logger"
)

func TestAnalyzer_Estimate(t *testing.T) {
	analyzer := NewAnalyzer(Options{Spread: 0}, logger.Nop())
	assert.Equal(t, DefaultPeriodsPerYear, analyzer.Options().PeriodsPerYear)

	returns := returnsOf(0.1, -0.5, 0.2, 1.0, 0.01)
	report, err := analyzer.Estimate(returns, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Observations)
	assert.Equal(t, returns.Points[0].Time, report.StartDate)
	assert.Equal(t, returns.Points[4].Time, report.EndDate)
	assert.InDelta(t, -0.5, report.MaxDrawdown, 1e-12)
	assert.Equal(t, returns.Points[1].Time, report.MaxDrawdownDate)
	assert.Equal(t, returns.Points[0].Time, report.PeakDate)
	// cum: 1.1, 0.55, 0.66, 1.32 -> recovered on day 4
	assert.True(t, report.Recovered())
	assert.Equal(t, returns.Points[3].Time, report.RecoveryDate)
	assert.Equal(t, 3, report.DrawdownDuration)
	assert.Equal(t, 5, report.Drawdown.Len())
	assert.Nil(t, report.Benchmark)
}

func TestAnalyzer_NotRecovered(t *testing.T) {
	report, err := NewAnalyzer(DefaultOptions(), logger.Nop()).Estimate(returnsOf(0.05, -0.1, 0.01, -0.02), nil)
	require.NoError(t, err)

	assert.False(t, report.Recovered())
	assert.Equal(t, 3, report.DrawdownDuration)
}

func TestAnalyzer_NoDrawdown(t *testing.T) {
	report, err := NewAnalyzer(DefaultOptions(), logger.Nop()).Estimate(returnsOf(0.01, 0.02, 0.03), nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.MaxDrawdown)
	assert.False(t, report.Recovered())
	assert.Equal(t, 0, report.DrawdownDuration)
}

func TestAnalyzer_WithBenchmark(t *testing.T) {
	returns := returnsOf(0.01, -0.02, 0.03, 0.01)
	bench := returns.Scale(0.5).Rename("rts")

	frame, err := series.Join(returns, bench)
	require.NoError(t, err)

	report, err := NewAnalyzer(DefaultOptions(), logger.Nop()).Estimate(returns, &frame)
	require.NoError(t, err)
	require.NotNil(t, report.Benchmark)

	assert.Equal(t, "rts", report.Benchmark.Name)
	assert.Equal(t, 4, report.Benchmark.Overlap)
	assert.InDelta(t, 2.0, report.Benchmark.Beta, 1e-9)
	assert.InDelta(t, 1.0, report.Benchmark.Correlation, 1e-9)
	assert.InDelta(t, report.TotalReturn-report.Benchmark.TotalReturn, report.Benchmark.Alpha, 1e-12)
}

func TestAnalyzer_Errors(t *testing.T) {
	analyzer := NewAnalyzer(DefaultOptions(), logger.Nop())

	_, err := analyzer.Estimate(series.Series{}, nil)
	assert.ErrorIs(t, err, series.ErrEmptySeries)

	_, err = analyzer.Estimate(returnsOf(0.01), nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

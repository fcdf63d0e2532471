package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/plot"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/internal/store"
	"github.com/wonny/perfstat/pkg/config"
	"github.com/wonny/perfstat/pkg/logger"
)

type stubProvider struct {
	closes series.Series
	err    error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Closes(ctx context.Context, index string, start time.Time) (series.Series, error) {
	return s.closes, s.err
}

func fixture() (series.Series, series.Series) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	returns := make([]series.Point, 20)
	closes := make([]series.Point, 21)
	level := 1000.0
	closes[0] = series.Point{Time: start.AddDate(0, 0, -1), Value: level}
	for i := range returns {
		day := start.AddDate(0, 0, i)
		returns[i] = series.Point{Time: day, Value: 0.01 * float64((i%4)-1)}
		level *= 1 + 0.004*float64((i%3)-1)
		closes[i+1] = series.Point{Time: day, Value: level}
	}
	return series.New("strategy", returns), series.New("RTSI", closes)
}

func newEstimator(t *testing.T, provider *stubProvider, runs store.RunStore, out *bytes.Buffer, mutate func(*Config)) (*Estimator, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := Config{
		Options:   estimate.DefaultOptions(),
		Index:     "RTSI",
		Start:     time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		Label:     "rts",
		OutputDir: dir,
		Labels:    plot.English(),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	renderer, err := plot.New(plot.BackendInteractive)
	require.NoError(t, err)

	return NewEstimator(cfg, renderer, provider, runs, out, logger.Nop()), dir
}

func TestEstimator_Run(t *testing.T) {
	returns, closes := fixture()
	var out bytes.Buffer

	sqlite, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer sqlite.Close()
	require.NoError(t, sqlite.Migrate(context.Background()))

	e, dir := newEstimator(t, &stubProvider{closes: closes}, sqlite, &out, func(c *Config) {
		c.Save = true
		c.Table = true
	})

	result, err := e.Run(context.Background(), returns)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Max drawdown: ")
	assert.Contains(t, out.String(), "Sharpe ratio: ")
	assert.Contains(t, out.String(), "Correlation")

	require.Len(t, result.Charts, 2)
	assert.Equal(t, filepath.Join(dir, "drawdown.html"), result.Charts[0])
	assert.Equal(t, filepath.Join(dir, "returns.html"), result.Charts[1])
	for _, path := range result.Charts {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	require.NotNil(t, result.Frame)
	assert.Equal(t, 20, result.Frame.Len())
	require.NotNil(t, result.Report.Benchmark)
	assert.Equal(t, "RTSI", result.Report.Benchmark.Index)

	run, err := sqlite.Get(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, "RTSI", run.BenchmarkIndex)
	assert.Equal(t, result.Report.Sharpe, run.Sharpe)
}

func TestEstimator_BenchmarkFailureSkipsReturnsChart(t *testing.T) {
	returns, _ := fixture()
	var out bytes.Buffer

	e, _ := newEstimator(t, &stubProvider{err: errors.New("moex down")}, nil, &out, nil)

	result, err := e.Run(context.Background(), returns)
	require.NoError(t, err)

	assert.Len(t, result.Charts, 1)
	assert.Nil(t, result.Frame)
	assert.Nil(t, result.Report.Benchmark)
	assert.Contains(t, out.String(), "Max drawdown")
}

func TestEstimator_SkipBenchmark(t *testing.T) {
	returns, closes := fixture()
	var out bytes.Buffer

	e, _ := newEstimator(t, &stubProvider{closes: closes}, nil, &out, func(c *Config) {
		c.SkipBenchmark = true
	})

	_, err := e.PlotReturns(context.Background(), returns, nil)
	assert.ErrorIs(t, err, ErrBenchmarkDisabled)

	path, err := e.PlotDrawdown(returns, nil)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestEstimator_BenchmarkLogLevel(t *testing.T) {
	returns, closes := fixture()

	tests := []struct {
		name     string
		provider *stubProvider
		skip     bool
		wantWarn bool
	}{
		{"disabled benchmark is quiet", &stubProvider{closes: closes}, true, false},
		{"no provider is quiet", nil, false, false},
		{"provider failure warns", &stubProvider{err: errors.New("moex down")}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs, out bytes.Buffer
			log := logger.NewWithWriter(&config.Config{Env: "test", LogLevel: "warn"}, &logs)

			renderer, err := plot.New(plot.BackendInteractive)
			require.NoError(t, err)

			cfg := Config{
				Options:       estimate.DefaultOptions(),
				Index:         "RTSI",
				OutputDir:     t.TempDir(),
				SkipBenchmark: tt.skip,
			}
			var provider benchmark.Provider
			if tt.provider != nil {
				provider = tt.provider
			}

			result, err := NewEstimator(cfg, renderer, provider, nil, &out, log).Run(context.Background(), returns)
			require.NoError(t, err)
			assert.Len(t, result.Charts, 1)

			if tt.wantWarn {
				assert.Contains(t, logs.String(), "Benchmark unavailable")
			} else {
				assert.NotContains(t, logs.String(), "Benchmark")
			}
		})
	}
}

func TestEstimator_ReturnsCaptionFollowsIndex(t *testing.T) {
	returns, closes := fixture()
	var out bytes.Buffer

	e, _ := newEstimator(t, &stubProvider{closes: closes}, nil, &out, func(c *Config) {
		c.Index = "KOSPI"
	})

	path, err := e.PlotReturns(context.Background(), returns, nil)
	require.NoError(t, err)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "KOSPI")
}

func TestEstimator_InsufficientData(t *testing.T) {
	var out bytes.Buffer
	e, _ := newEstimator(t, &stubProvider{}, nil, &out, nil)

	single := series.New("s", []series.Point{{Time: time.Now(), Value: 0.01}})
	_, err := e.Run(context.Background(), single)
	assert.ErrorIs(t, err, estimate.ErrInsufficientData)
	assert.Empty(t, out.String(), "nothing printed on failure")
}

func TestPrintTable(t *testing.T) {
	returns, _ := fixture()
	report, err := estimate.NewAnalyzer(estimate.DefaultOptions(), logger.Nop()).Estimate(returns, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintTable(&buf, report)

	assert.Contains(t, buf.String(), "Max drawdown")
	assert.Contains(t, buf.String(), "Sortino ratio")
	assert.NotContains(t, buf.String(), "Correlation")
}

func TestPrintRuns(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	runs := []store.Run{
		{ID: 2, CreatedAt: day, Name: "momentum", FirstDate: day, LastDate: day.AddDate(0, 1, 0), Observations: 22, Sharpe: 1.25, MaxDrawdown: -0.125, TotalReturn: 0.05, BenchmarkIndex: "RTSI"},
		{ID: 1, CreatedAt: day, Name: "carry", FirstDate: day, LastDate: day.AddDate(0, 1, 0), Observations: 22, Sharpe: -0.5, MaxDrawdown: -0.3},
	}

	var buf bytes.Buffer
	PrintRuns(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "momentum")
	assert.Contains(t, out, "RTSI")
	assert.Contains(t, out, "1.25")
	assert.Contains(t, out, "12%")
	assert.Contains(t, out, "2024-01-01 ~ 2024-02-01")
}

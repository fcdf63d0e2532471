package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/report"
	"github.com/wonny/perfstat/internal/series"
)

var sampleReturns = []float64{0.01, -0.02, 0.015, -0.03, 0.02, 0.005, -0.01, 0.012}

func writeReturns(t *testing.T) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("date,momentum\n")
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range sampleReturns {
		fmt.Fprintf(&b, "%s,%s\n", day.AddDate(0, 0, i).Format("2006-01-02"), strconv.FormatFloat(v, 'f', -1, 64))
	}

	path := filepath.Join(t.TempDir(), "returns.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("STORE_DRIVER", "none")
	t.Setenv("REDIS_ENABLED", "false")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEstimateCommand(t *testing.T) {
	quietEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "runs.db"))
	outDir := t.TempDir()
	returns := writeReturns(t)

	out, err := execute(t, "estimate",
		"--returns", returns,
		"--no-benchmark",
		"--backend", "svg",
		"--out", outDir,
		"--save",
		"--table",
	)
	require.NoError(t, err, out)

	assert.Contains(t, out, strings.Repeat("-", 77))
	assert.Contains(t, out, "Max drawdown: ")
	assert.Contains(t, out, "Sharpe ratio: ")
	assert.Contains(t, out, "Sortino ratio")
	assert.Contains(t, out, "Run saved: #1")
	assert.FileExists(t, filepath.Join(outDir, "drawdown.svg"))
	assert.NoFileExists(t, filepath.Join(outDir, "returns.svg"))

	out, err = execute(t, "runs", "list", "--limit", "5")
	require.NoError(t, err, out)
	assert.Contains(t, out, "momentum")
}

func TestSharpeCommand(t *testing.T) {
	quietEnv(t)
	returns := writeReturns(t)

	out, err := execute(t, "sharpe", "--returns", returns, "--spread", "0", "--periods", "252")
	require.NoError(t, err, out)

	f, err := os.Open(returns)
	require.NoError(t, err)
	defer f.Close()
	s, err := series.ReadCSV(f, series.DefaultCSVOptions())
	require.NoError(t, err)

	want, err := estimate.SharpeRatio(s, 0, 252)
	require.NoError(t, err)
	assert.Equal(t, "Sharpe ratio: "+report.FormatSharpe(want)+"\n", out)
}

func TestDrawdownCommand(t *testing.T) {
	quietEnv(t)
	returns := writeReturns(t)

	out, err := execute(t, "drawdown", "--returns", returns, "--csv", "-")
	require.NoError(t, err, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(sampleReturns)+1)
	assert.Equal(t, "date,drawdown", lines[0])
	assert.Equal(t, "2024-01-01,0", lines[1])

	csvPath := filepath.Join(t.TempDir(), "dd.csv")
	out, err = execute(t, "drawdown", "--returns", returns, "--csv", csvPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Max drawdown: ")
	assert.Contains(t, out, "(2024-01-04)")
	assert.FileExists(t, csvPath)
}

func TestPlotDrawdownCommand(t *testing.T) {
	quietEnv(t)
	outDir := t.TempDir()

	out, err := execute(t, "plot", "drawdown", "--returns", writeReturns(t), "--backend", "interactive", "--out", outDir, "--lang", "ru")
	require.NoError(t, err, out)

	html, err := os.ReadFile(filepath.Join(outDir, "drawdown.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Просадка")
}

func TestInputFlags_Stdin(t *testing.T) {
	f := inputFlags{returns: "-", dateLayout: "02.01.2006", column: 1}

	s, err := f.load(strings.NewReader("03.01.2024,0.5\n04.01.2024,-0.25\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{0.5, -0.25}, s.Values())
}

func TestBenchmarkFlags_InvalidStart(t *testing.T) {
	quietEnv(t)
	cfg, _, err := setup()
	require.NoError(t, err)

	f := benchmarkFlags{start: "2020/01/01"}
	assert.Error(t, f.apply(cfg))

	f = benchmarkFlags{index: "IMOEX", start: "2020-01-01", provider: "naver"}
	require.NoError(t, f.apply(cfg))
	assert.Equal(t, "IMOEX", cfg.Benchmark.Index)
	assert.Equal(t, "naver", cfg.Benchmark.Provider)
}

package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/internal/series"
)

// benchmarkCmd represents the benchmark command
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Benchmark index data",
	Long: `Download benchmark index closes from MOEX ISS or Naver Finance.

Subcommands:
  fetch  - download closes and print close-to-close returns

Example:
  go run ./cmd/perfstat benchmark fetch --index RTSI --start 2020-01-01
  go run ./cmd/perfstat benchmark fetch --provider naver --index KOSPI --closes --csv kospi.csv`,
}

var benchmarkFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a benchmark and write it as CSV",
	RunE:  runBenchmarkFetch,
}

var (
	fetchBenchmark benchmarkFlags
	fetchCSV       string
	fetchCloses    bool
	fetchRefresh   bool
)

func init() {
	rootCmd.AddCommand(benchmarkCmd)
	benchmarkCmd.AddCommand(benchmarkFetchCmd)

	fetchBenchmark.register(benchmarkFetchCmd, false)
	benchmarkFetchCmd.Flags().StringVar(&fetchCSV, "csv", "-", "output CSV file (- for stdout)")
	benchmarkFetchCmd.Flags().BoolVar(&fetchCloses, "closes", false, "write closing levels instead of returns")
	benchmarkFetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "bypass the benchmark cache")
}

func runBenchmarkFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, log, err := setup()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := fetchBenchmark.apply(cfg); err != nil {
		return err
	}

	p, rc, err := newProvider(cfg, log)
	if err != nil {
		return err
	}
	defer rc.Close()

	index := strings.ToUpper(cfg.Benchmark.Index)
	start := cfg.BenchmarkStart()

	var out series.Series
	switch {
	case fetchCloses && fetchRefresh:
		out, err = p.Refresh(ctx, index, start)
	case fetchCloses:
		out, err = p.Closes(ctx, index, start)
	default:
		if fetchRefresh {
			if _, err := p.Refresh(ctx, index, start); err != nil {
				return err
			}
		}
		out, err = benchmark.Returns(ctx, p, index, start, cfg.Benchmark.Label)
	}
	if err != nil {
		return fmt.Errorf("fetch %s from %s: %w", index, p.Name(), err)
	}

	log.WithFields(map[string]interface{}{
		"provider": p.Name(),
		"index":    index,
		"rows":     out.Len(),
	}).Info("Benchmark downloaded")

	if fetchCSV == "-" {
		return series.WriteCSV(cmd.OutOrStdout(), out)
	}

	f, err := os.Create(fetchCSV)
	if err != nil {
		return fmt.Errorf("create %s: %w", fetchCSV, err)
	}
	if err := series.WriteCSV(f, out); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	PrintSuccess(cmd.OutOrStdout(), "%d rows of %s written to %s", out.Len(), index, fetchCSV)
	return nil
}

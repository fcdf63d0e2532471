package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/internal/report"
	"github.com/wonny/perfstat/internal/store"
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print max drawdown and Sharpe ratio, render both charts",
	Long: `Estimate the performance of a return series.

This command:
- prints the max drawdown / Sharpe ratio banner
- renders the drawdown chart
- downloads the benchmark and renders the cumulative returns chart
  (a benchmark failure is logged and only skips this chart)

Example:
  go run ./cmd/perfstat estimate --returns returns.csv
  go run ./cmd/perfstat estimate -r returns.csv --spread 0 --periods 252 --backend svg
  go run ./cmd/perfstat estimate -r returns.csv --provider naver --index KOSPI --lang en --save`,
	RunE: runEstimate,
}

var (
	estimateInput     inputFlags
	estimateBenchmark benchmarkFlags
	estimateChart     chartFlags
	estimateSave      bool
	estimateTable     bool
)

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateInput.register(estimateCmd)
	estimateBenchmark.register(estimateCmd, true)
	estimateChart.register(estimateCmd)
	estimateCmd.Flags().BoolVar(&estimateSave, "save", false, "persist the run (STORE_DRIVER)")
	estimateCmd.Flags().BoolVar(&estimateTable, "table", false, "print the full metrics table")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, log, err := setup()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	estimateInput.apply(cmd, cfg)
	if err := estimateBenchmark.apply(cfg); err != nil {
		return err
	}
	estimateChart.apply(cfg)

	returns, err := estimateInput.load(cmd.InOrStdin())
	if err != nil {
		return err
	}

	renderer, labels, err := chartSetup(cfg, log)
	if err != nil {
		return err
	}

	var provider benchmark.Provider
	if !estimateBenchmark.noBenchmark {
		p, rc, err := newProvider(cfg, log)
		if err != nil {
			return err
		}
		defer rc.Close()
		provider = p
	}

	var runs store.RunStore
	if estimateSave {
		runs, err = store.Open(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer runs.Close()
		if _, ok := runs.(store.Nop); ok {
			PrintWarning(cmd.ErrOrStderr(), "--save has no effect with STORE_DRIVER=none")
		}
	}

	rc := estimatorConfig(cfg, estimateInput.options(cfg), labels, estimateBenchmark.noBenchmark)
	rc.Table = estimateTable
	rc.Save = estimateSave

	result, err := report.NewEstimator(rc, renderer, provider, runs, out, log).Run(ctx, returns)
	if err != nil {
		return err
	}

	for _, path := range result.Charts {
		PrintSuccess(out, "Chart written: %s", path)
	}
	if result.Frame == nil && !estimateBenchmark.noBenchmark {
		PrintWarning(out, "Benchmark %s unavailable, returns chart skipped", cfg.Benchmark.Index)
	}
	if result.RunID != 0 {
		PrintSuccess(out, "Run saved: #%d", result.RunID)
	}

	return nil
}

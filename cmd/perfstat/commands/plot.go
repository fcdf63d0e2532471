package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/perfstat/internal/report"
)

// plotCmd represents the plot command
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render a single chart",
	Long: `Render the cumulative returns or the drawdown chart without
printing the summary.

Subcommands:
  returns   - strategy vs benchmark cumulative returns, percent
  drawdown  - drawdown filled down from zero, percent

Example:
  go run ./cmd/perfstat plot drawdown -r returns.csv --backend svg
  go run ./cmd/perfstat plot returns -r returns.csv --index IMOEX --backend interactive --open`,
}

var (
	plotReturnsCmd = &cobra.Command{
		Use:   "returns",
		Short: "Render the cumulative returns chart",
		RunE:  runPlotReturns,
	}

	plotDrawdownCmd = &cobra.Command{
		Use:   "drawdown",
		Short: "Render the drawdown chart",
		RunE:  runPlotDrawdown,
	}
)

var (
	plotReturnsInput     inputFlags
	plotReturnsBenchmark benchmarkFlags
	plotReturnsChart     chartFlags
	plotDrawdownInput    inputFlags
	plotDrawdownChart    chartFlags
)

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.AddCommand(plotReturnsCmd)
	plotCmd.AddCommand(plotDrawdownCmd)

	plotReturnsInput.register(plotReturnsCmd)
	plotReturnsBenchmark.register(plotReturnsCmd, false)
	plotReturnsChart.register(plotReturnsCmd)

	plotDrawdownInput.register(plotDrawdownCmd)
	plotDrawdownChart.register(plotDrawdownCmd)
}

func runPlotReturns(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	plotReturnsInput.apply(cmd, cfg)
	if err := plotReturnsBenchmark.apply(cfg); err != nil {
		return err
	}
	plotReturnsChart.apply(cfg)

	returns, err := plotReturnsInput.load(cmd.InOrStdin())
	if err != nil {
		return err
	}

	renderer, labels, err := chartSetup(cfg, log)
	if err != nil {
		return err
	}

	p, rc, err := newProvider(cfg, log)
	if err != nil {
		return err
	}
	defer rc.Close()

	ec := estimatorConfig(cfg, plotReturnsInput.options(cfg), labels, false)
	path, err := report.NewEstimator(ec, renderer, p, nil, cmd.OutOrStdout(), log).
		PlotReturns(cmd.Context(), returns, nil)
	if err != nil {
		return err
	}

	PrintSuccess(cmd.OutOrStdout(), "Chart written: %s", path)
	return nil
}

func runPlotDrawdown(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	plotDrawdownInput.apply(cmd, cfg)
	plotDrawdownChart.apply(cfg)

	returns, err := plotDrawdownInput.load(cmd.InOrStdin())
	if err != nil {
		return err
	}

	renderer, labels, err := chartSetup(cfg, log)
	if err != nil {
		return err
	}

	rc := estimatorConfig(cfg, plotDrawdownInput.options(cfg), labels, true)
	path, err := report.NewEstimator(rc, renderer, nil, nil, cmd.OutOrStdout(), log).
		PlotDrawdown(returns, nil)
	if err != nil {
		return err
	}

	PrintSuccess(cmd.OutOrStdout(), "Chart written: %s", path)
	return nil
}

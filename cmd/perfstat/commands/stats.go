package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/report"
	"github.com/wonny/perfstat/internal/series"
)

// drawdownCmd represents the drawdown command
var drawdownCmd = &cobra.Command{
	Use:   "drawdown",
	Short: "Print the max drawdown and export the drawdown series",
	Long: `Compute the drawdown series cumprod(1+r) / running max - 1.

The max drawdown is printed as a whole percent. With --csv the full
series is written as date,drawdown rows (- for stdout).

Example:
  go run ./cmd/perfstat drawdown -r returns.csv
  go run ./cmd/perfstat drawdown -r returns.csv --csv drawdown.csv`,
	RunE: runDrawdown,
}

// sharpeCmd represents the sharpe command
var sharpeCmd = &cobra.Command{
	Use:   "sharpe",
	Short: "Print the annualized Sharpe ratio",
	Long: `Compute sqrt(periods) * (mean - spread) / std of a return series.

Example:
  go run ./cmd/perfstat sharpe -r returns.csv
  go run ./cmd/perfstat sharpe -r returns.csv --spread 0 --periods 252`,
	RunE: runSharpe,
}

var (
	drawdownInput inputFlags
	drawdownCSV   string
	sharpeInput   inputFlags
)

func init() {
	rootCmd.AddCommand(drawdownCmd)
	rootCmd.AddCommand(sharpeCmd)

	drawdownInput.register(drawdownCmd)
	drawdownCmd.Flags().StringVar(&drawdownCSV, "csv", "", "write the drawdown series as CSV (- for stdout)")

	sharpeInput.register(sharpeCmd)
}

func runDrawdown(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if _, _, err := setup(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	returns, err := drawdownInput.load(cmd.InOrStdin())
	if err != nil {
		return err
	}

	dd, err := estimate.Drawdown(returns)
	if err != nil {
		return err
	}
	dd = dd.Rename("drawdown")

	switch drawdownCSV {
	case "":
	case "-":
		return series.WriteCSV(out, dd)
	default:
		f, err := os.Create(drawdownCSV)
		if err != nil {
			return fmt.Errorf("create %s: %w", drawdownCSV, err)
		}
		if err := series.WriteCSV(f, dd); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	i, _ := dd.ArgMin()
	trough := dd.Points[i]
	fmt.Fprintf(out, "Max drawdown: %s%% (%s)\n",
		report.FormatMaxDrawdown(trough.Value), trough.Time.Format("2006-01-02"))
	if drawdownCSV != "" {
		PrintSuccess(out, "Drawdown written: %s", drawdownCSV)
	}
	return nil
}

func runSharpe(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sharpeInput.apply(cmd, cfg)

	returns, err := sharpeInput.load(cmd.InOrStdin())
	if err != nil {
		return err
	}

	opts := sharpeInput.options(cfg)
	sharpe, err := estimate.SharpeRatio(returns.DropNaN(), opts.Spread, opts.PeriodsPerYear)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sharpe ratio: %s\n", report.FormatSharpe(sharpe))
	return nil
}

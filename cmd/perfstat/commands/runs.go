package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/perfstat/internal/report"
	"github.com/wonny/perfstat/internal/store"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Persisted estimate runs",
	Long: `Inspect runs saved with "estimate --save".

Subcommands:
  list  - most recent runs
  show  - one run as JSON

Example:
  STORE_DRIVER=sqlite go run ./cmd/perfstat runs list --limit 20
  STORE_DRIVER=sqlite go run ./cmd/perfstat runs show 3`,
}

var (
	runsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		RunE:  runRunsList,
	}

	runsShowCmd = &cobra.Command{
		Use:   "show [id]",
		Short: "Show a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	}
)

var runsLimit int

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().IntVar(&runsLimit, "limit", 50, "maximum number of runs")
}

func openRuns(cmd *cobra.Command) (store.RunStore, error) {
	cfg, log, err := setup()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	runs, err := store.Open(cmd.Context(), cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if _, ok := runs.(store.Nop); ok {
		PrintWarning(cmd.ErrOrStderr(), "STORE_DRIVER=none, nothing is persisted")
	}
	return runs, nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	runs, err := openRuns(cmd)
	if err != nil {
		return err
	}
	defer runs.Close()

	list, err := runs.List(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	report.PrintRuns(cmd.OutOrStdout(), list)
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	runs, err := openRuns(cmd)
	if err != nil {
		return err
	}
	defer runs.Close()

	run, err := runs.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

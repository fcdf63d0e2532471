package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/perfstat/pkg/config"
	"github.com/wonny/perfstat/pkg/logger"
)

var (
	// Global flags
	env       string
	logFormat string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "perfstat",
	Short: "perfstat - trading strategy performance statistics",
	Long: `perfstat Unified CLI

Drawdown, Sharpe ratio and benchmark comparison for a series of
periodic strategy returns, with static, SVG or interactive charts.

Usage:
  go run ./cmd/perfstat [command]

Examples:
  go run ./cmd/perfstat estimate --returns returns.csv
  go run ./cmd/perfstat estimate --returns returns.csv --provider naver --index KOSPI
  go run ./cmd/perfstat plot drawdown --returns returns.csv --backend interactive
  go run ./cmd/perfstat serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json|console), overrides LOG_FORMAT")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads configuration and builds the logger. Logs go to stderr so
// stdout carries only command output.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if env != "" {
		cfg.Env = env
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}

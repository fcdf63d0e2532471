package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/perfstat/internal/api"
	"github.com/wonny/perfstat/internal/api/handlers"
	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/scheduler"
	"github.com/wonny/perfstat/internal/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and the benchmark scheduler",
	Long: `Start the HTTP API server.

Endpoints:
  GET  /health                  - Health check (store and Redis)
  POST /api/estimate            - Performance report for posted returns
  POST /api/charts/{kind}       - returns or drawdown chart bytes
  GET  /api/benchmark/{index}   - Benchmark returns
  GET  /api/runs                - Persisted runs
  GET  /api/runs/{id}           - One persisted run
  GET  /ws/estimate             - Running summary over a websocket

With SCHEDULER_ENABLED the benchmark cache is refreshed on
BENCHMARK_REFRESH_CRON for every --refresh index.

Example:
  go run ./cmd/perfstat serve
  go run ./cmd/perfstat serve --port 9000 --refresh RTSI,IMOEX`,
	RunE: runServe,
}

var (
	servePort    string
	serveRefresh []string
	serveNoCron  bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port, overrides PORT")
	serveCmd.Flags().StringSliceVar(&serveRefresh, "refresh", nil, "indexes kept warm by the scheduler (default: BENCHMARK_INDEX)")
	serveCmd.Flags().BoolVar(&serveNoCron, "no-scheduler", false, "do not start the scheduler")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// 1. Load config
	cfg, log, err := setup()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"env":      cfg.Env,
		"provider": cfg.Benchmark.Provider,
		"store":    cfg.Store.Driver,
	}).Info("Initializing API server")

	// 2. Benchmark provider with cache
	provider, rc, err := newProvider(cfg, log)
	if err != nil {
		return err
	}
	defer rc.Close()

	// 3. Run store
	runs, err := store.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer runs.Close()

	// 4. Handlers and router
	defaults := handlers.Defaults{
		Options: estimate.Options{
			Spread:         cfg.Estimate.Spread,
			PeriodsPerYear: cfg.Estimate.PeriodsPerYear,
		},
		Index:   cfg.Benchmark.Index,
		Start:   cfg.BenchmarkStart(),
		Label:   cfg.Benchmark.Label,
		Backend: cfg.Chart.Backend,
		Lang:    cfg.Chart.Lang,
	}

	checks := map[string]api.CheckFunc{}
	if pinger, ok := runs.(store.Pinger); ok {
		checks["store"] = pinger.Ping
	}
	if rc.Enabled() {
		checks["redis"] = rc.Ping
	}

	router := api.NewRouter(api.Handlers{
		Estimate:  handlers.NewEstimateHandler(defaults, provider, runs, log),
		Benchmark: handlers.NewBenchmarkHandler(defaults, provider, log),
		Runs:      handlers.NewRunHandler(runs, log),
		Stream:    handlers.NewStreamHandler(defaults, log),
		Checks:    checks,
	}, log)

	server := api.New(cfg, log, router)

	// 5. Scheduler
	if cfg.Scheduler.Enabled && !serveNoCron {
		indexes := serveRefresh
		if len(indexes) == 0 {
			indexes = []string{cfg.Benchmark.Index}
		}
		for i := range indexes {
			indexes[i] = strings.ToUpper(strings.TrimSpace(indexes[i]))
		}

		sched := scheduler.New(log)
		jobs := []scheduler.Job{
			scheduler.NewBenchmarkRefreshJob(provider, indexes, cfg.BenchmarkStart(), cfg.Scheduler.BenchmarkRefresh, log),
			scheduler.NewCachePurgeJob(provider, log),
		}
		for _, job := range jobs {
			if err := sched.AddJob(job); err != nil {
				return fmt.Errorf("register job: %w", err)
			}
		}
		sched.Start()
		defer sched.Stop()
	}

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	PrintSuccess(out, "Server running on http://localhost:%s", cfg.Port)
	PrintInfo(out, "Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/perfstat/internal/benchmark"
	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/plot"
	"github.com/wonny/perfstat/internal/report"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/config"
	"github.com/wonny/perfstat/pkg/logger"
	"github.com/wonny/perfstat/pkg/redis"
)

// inputFlags select and parse the strategy returns
type inputFlags struct {
	returns    string
	name       string
	dateLayout string
	column     int
	spread     float64
	periods    int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.returns, "returns", "r", "", "CSV file of date,return rows (- for stdin)")
	cmd.Flags().StringVar(&f.name, "name", "", "strategy name (default: value column header)")
	cmd.Flags().StringVar(&f.dateLayout, "date-layout", "2006-01-02", "Go time layout of the date column")
	cmd.Flags().IntVar(&f.column, "column", 1, "zero-based index of the return column")
	cmd.Flags().Float64Var(&f.spread, "spread", estimate.DefaultSpread, "per-period spread subtracted from the mean return")
	cmd.Flags().IntVar(&f.periods, "periods", estimate.DefaultPeriodsPerYear, "periods per year for annualization")
	_ = cmd.MarkFlagRequired("returns")
}

// apply copies explicitly set statistic flags over the config
func (f *inputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("spread") {
		cfg.Estimate.Spread = f.spread
	}
	if cmd.Flags().Changed("periods") {
		cfg.Estimate.PeriodsPerYear = f.periods
	}
}

func (f *inputFlags) options(cfg *config.Config) estimate.Options {
	return estimate.Options{
		Spread:         cfg.Estimate.Spread,
		PeriodsPerYear: cfg.Estimate.PeriodsPerYear,
	}
}

// load reads the returns CSV
func (f *inputFlags) load(stdin io.Reader) (series.Series, error) {
	opts := series.DefaultCSVOptions()
	opts.Name = f.name
	opts.DateLayout = f.dateLayout
	opts.ValueColumn = f.column

	if f.returns == "-" {
		return series.ReadCSV(stdin, opts)
	}

	file, err := os.Open(f.returns)
	if err != nil {
		return series.Series{}, fmt.Errorf("open returns: %w", err)
	}
	defer file.Close()

	s, err := series.ReadCSV(file, opts)
	if err != nil {
		return series.Series{}, fmt.Errorf("read %s: %w", f.returns, err)
	}
	return s, nil
}

// benchmarkFlags select the benchmark download
type benchmarkFlags struct {
	provider    string
	index       string
	start       string
	label       string
	noBenchmark bool
}

func (f *benchmarkFlags) register(cmd *cobra.Command, allowSkip bool) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "benchmark provider (moex|naver), overrides BENCHMARK_PROVIDER")
	cmd.Flags().StringVar(&f.index, "index", "", "benchmark index, overrides BENCHMARK_INDEX")
	cmd.Flags().StringVar(&f.start, "start", "", "first benchmark date YYYY-MM-DD, overrides BENCHMARK_START")
	cmd.Flags().StringVar(&f.label, "label", "", "benchmark column name, overrides BENCHMARK_LABEL")
	if allowSkip {
		cmd.Flags().BoolVar(&f.noBenchmark, "no-benchmark", false, "skip the benchmark download and the returns chart")
	}
}

func (f *benchmarkFlags) apply(cfg *config.Config) error {
	if f.provider != "" {
		cfg.Benchmark.Provider = f.provider
	}
	if f.index != "" {
		cfg.Benchmark.Index = f.index
	}
	if f.start != "" {
		cfg.Benchmark.Start = f.start
	}
	if f.label != "" {
		cfg.Benchmark.Label = f.label
	}
	if cfg.BenchmarkStart().IsZero() {
		return fmt.Errorf("invalid --start %q (expected YYYY-MM-DD)", cfg.Benchmark.Start)
	}
	return nil
}

// chartFlags select the chart backend and captions
type chartFlags struct {
	backend string
	out     string
	lang    string
	labels  string
	open    bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "backend", "", "chart backend (static|svg|interactive), overrides CHART_BACKEND")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "chart output directory, overrides CHART_OUTPUT_DIR")
	cmd.Flags().StringVar(&f.lang, "lang", "", "caption language (en|ru), overrides CHART_LANG")
	cmd.Flags().StringVar(&f.labels, "labels", "", "YAML caption overrides, overrides CHART_LABELS_FILE")
	cmd.Flags().BoolVar(&f.open, "open", false, "open interactive charts in the browser")
}

func (f *chartFlags) apply(cfg *config.Config) {
	if f.backend != "" {
		cfg.Chart.Backend = f.backend
	}
	if f.out != "" {
		cfg.Chart.OutputDir = f.out
	}
	if f.lang != "" {
		cfg.Chart.Lang = f.lang
	}
	if f.labels != "" {
		cfg.Chart.LabelsFile = f.labels
	}
	if f.open {
		cfg.Chart.Open = true
	}
}

// chartSetup resolves the renderer and captions
func chartSetup(cfg *config.Config, log *logger.Logger) (plot.Renderer, plot.Labels, error) {
	renderer, err := plot.New(cfg.Chart.Backend)
	if err != nil {
		return nil, plot.Labels{}, err
	}

	if cfg.Chart.LabelsFile != "" {
		labels, err := plot.LoadLabels(cfg.Chart.LabelsFile)
		if err != nil {
			return nil, plot.Labels{}, fmt.Errorf("load %s: %w", cfg.Chart.LabelsFile, err)
		}
		return renderer, labels, nil
	}

	labels, ok := plot.LabelsFor(cfg.Chart.Lang)
	if !ok {
		log.WithField("lang", cfg.Chart.Lang).Warn("Unknown caption language, using English")
	}
	return renderer, labels, nil
}

// newProvider builds the cached benchmark provider. The caller closes the
// returned Redis client, which is disabled when Redis is unreachable.
func newProvider(cfg *config.Config, log *logger.Logger) (*benchmark.CachedProvider, *redis.Client, error) {
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching benchmarks in process")
		rc = redis.Disabled()
	}

	p, err := benchmark.New(cfg, cfg.Benchmark.Provider, rc, log)
	if err != nil {
		rc.Close()
		return nil, nil, err
	}
	return p, rc, nil
}

// estimatorConfig maps the resolved config onto the pipeline config
func estimatorConfig(cfg *config.Config, opts estimate.Options, labels plot.Labels, skipBenchmark bool) report.Config {
	return report.Config{
		Options:       opts,
		Index:         cfg.Benchmark.Index,
		Start:         cfg.BenchmarkStart(),
		Label:         cfg.Benchmark.Label,
		SkipBenchmark: skipBenchmark,
		OutputDir:     cfg.Chart.OutputDir,
		Labels:        labels,
		Open:          cfg.Chart.Open,
	}
}

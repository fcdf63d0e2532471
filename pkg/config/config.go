package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Estimation defaults
	Estimate EstimateConfig

	// Benchmark download
	Benchmark BenchmarkConfig

	// Chart rendering
	Chart ChartConfig

	// Run history storage
	Store StoreConfig

	// Database (used when Store.Driver == "postgres")
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// EstimateConfig holds the statistical defaults
type EstimateConfig struct {
	Spread         float64 // subtracted from the mean periodic return
	PeriodsPerYear int     // annualization constant
}

// BenchmarkConfig holds benchmark provider settings
type BenchmarkConfig struct {
	Provider     string // moex, naver
	Index        string
	Start        string // YYYY-MM-DD
	Label        string // column name of the benchmark returns
	MOEXBaseURL  string
	NaverBaseURL string
	CacheTTL     time.Duration
	Timeout      time.Duration
	RatePerSec   float64
}

// ChartConfig holds chart rendering settings
type ChartConfig struct {
	Backend    string // static, svg, interactive
	OutputDir  string
	Lang       string // en, ru
	LabelsFile string // optional YAML caption overrides
	Open       bool   // open interactive charts in the browser
}

// StoreConfig selects where estimate runs are persisted
type StoreConfig struct {
	Driver     string // none, postgres, sqlite
	SQLitePath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SchedulerConfig holds cron settings for background jobs
type SchedulerConfig struct {
	Enabled          bool
	BenchmarkRefresh string // cron expression with seconds
}

// Store drivers
const (
	StoreNone     = "none"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Estimate: EstimateConfig{
			Spread:         getEnvAsFloat("ESTIMATE_SPREAD", 0.00011),
			PeriodsPerYear: getEnvAsInt("ESTIMATE_PERIODS", 260),
		},

		Benchmark: BenchmarkConfig{
			Provider:     getEnv("BENCHMARK_PROVIDER", "moex"),
			Index:        getEnv("BENCHMARK_INDEX", "RTSI"),
			Start:        getEnv("BENCHMARK_START", "2010-01-01"),
			Label:        getEnv("BENCHMARK_LABEL", "rts"),
			MOEXBaseURL:  getEnv("MOEX_BASE_URL", "https://iss.moex.com"),
			NaverBaseURL: getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
			CacheTTL:     getEnvAsDuration("BENCHMARK_CACHE_TTL", "6h"),
			Timeout:      getEnvAsDuration("BENCHMARK_TIMEOUT", "30s"),
			RatePerSec:   getEnvAsFloat("BENCHMARK_RATE_PER_SEC", 5),
		},

		Chart: ChartConfig{
			Backend:    getEnv("CHART_BACKEND", "static"),
			OutputDir:  getEnv("CHART_OUTPUT_DIR", "charts"),
			Lang:       getEnv("CHART_LANG", "en"),
			LabelsFile: getEnv("CHART_LABELS_FILE", ""),
			Open:       getEnvAsBool("CHART_OPEN", false),
		},

		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", StoreNone),
			SQLitePath: getEnv("SQLITE_PATH", "data/perfstat.db"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Scheduler: SchedulerConfig{
			Enabled:          getEnvAsBool("SCHEDULER_ENABLED", true),
			BenchmarkRefresh: getEnv("BENCHMARK_REFRESH_CRON", "0 30 19 * * 1-5"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Estimate.PeriodsPerYear <= 0 {
		return fmt.Errorf("ESTIMATE_PERIODS must be positive, got %d", c.Estimate.PeriodsPerYear)
	}

	switch c.Benchmark.Provider {
	case "moex", "naver":
	default:
		return fmt.Errorf("BENCHMARK_PROVIDER must be one of: moex, naver")
	}

	if _, err := time.Parse("2006-01-02", c.Benchmark.Start); err != nil {
		return fmt.Errorf("BENCHMARK_START must be YYYY-MM-DD: %w", err)
	}

	switch c.Chart.Backend {
	case "static", "svg", "interactive":
	default:
		return fmt.Errorf("CHART_BACKEND must be one of: static, svg, interactive")
	}

	switch c.Store.Driver {
	case StoreNone, StoreSQLite:
	case StorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: none, postgres, sqlite")
	}

	return nil
}

// BenchmarkStart returns the parsed benchmark start date
func (c *Config) BenchmarkStart() time.Time {
	t, _ := time.Parse("2006-01-02", c.Benchmark.Start)
	return t
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

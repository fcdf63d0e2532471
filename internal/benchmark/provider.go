package benchmark

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/perfstat/internal/benchmark/moex"
	"github.com/wonny/perfstat/internal/benchmark/naver"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/config"
	"github.com/wonny/perfstat/pkg/httputil"
	"github.com/wonny/perfstat/pkg/logger"
	"github.com/wonny/perfstat/pkg/redis"
)

// Provider downloads daily closing levels of a market index
type Provider interface {
	Name() string
	Closes(ctx context.Context, index string, start time.Time) (series.Series, error)
}

// Provider names
const (
	ProviderMOEX  = "moex"
	ProviderNaver = "naver"
)

// New creates the configured provider wrapped in a cache.
// rc may be a disabled client; the cache then stays in process.
// ⭐ SSOT: benchmark providers are constructed only here
func New(cfg *config.Config, name string, rc *redis.Client, log *logger.Logger) (*CachedProvider, error) {
	if name == "" {
		name = cfg.Benchmark.Provider
	}

	limiter := redis.NewRateLimiter(rc, "perfstat")
	httpClient := httputil.New(log, cfg.Benchmark.Timeout).WithRate(cfg.Benchmark.RatePerSec)

	var p Provider
	switch strings.ToLower(name) {
	case ProviderMOEX:
		httpClient.WithRateLimiter(limiter, redis.MOEXRateLimit)
		p = moex.NewClient(httpClient, log, cfg.Benchmark.MOEXBaseURL)
	case ProviderNaver:
		httpClient.WithRateLimiter(limiter, redis.NaverRateLimit).
			WithHeader("Referer", cfg.Benchmark.NaverBaseURL+"/")
		p = naver.NewClient(httpClient, log, cfg.Benchmark.NaverBaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	return NewCachedProvider(p, redis.NewCache(rc, "perfstat"), cfg.Benchmark.CacheTTL, log), nil
}

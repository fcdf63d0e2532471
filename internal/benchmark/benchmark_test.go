package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/config"
	"github.com/wonny/perfstat/pkg/logger"
	"github.com/wonny/perfstat/pkg/redis"
)

type fakeProvider struct {
	closes series.Series
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Closes(ctx context.Context, index string, start time.Time) (series.Series, error) {
	f.calls++
	if f.err != nil {
		return series.Series{}, f.err
	}
	return since(f.closes, start), nil
}

// since keeps the closes on or after start, like a real provider
func since(s series.Series, start time.Time) series.Series {
	var points []series.Point
	for _, p := range s.Points {
		if !p.Time.Before(start) {
			points = append(points, p)
		}
	}
	return series.New(s.Name, points)
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func closesOf(values ...float64) series.Series {
	points := make([]series.Point, len(values))
	for i, v := range values {
		points[i] = series.Point{Time: day(i + 1), Value: v}
	}
	return series.New("RTSI", points)
}

func TestReturns(t *testing.T) {
	p := &fakeProvider{closes: closesOf(100, 110, 99, 99)}

	returns, err := Returns(context.Background(), p, "RTSI", day(1), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultLabel, returns.Name)
	assert.Equal(t, []time.Time{day(2), day(3), day(4)}, returns.Times())
	assert.InDeltaSlice(t, []float64{0.1, -0.1, 0}, returns.Values(), 1e-12)
}

func TestReturns_Errors(t *testing.T) {
	_, err := Returns(context.Background(), &fakeProvider{closes: closesOf(100)}, "RTSI", day(1), "rts")
	assert.ErrorIs(t, err, ErrNoData)

	boom := errors.New("boom")
	_, err = Returns(context.Background(), &fakeProvider{err: boom}, "RTSI", day(1), "rts")
	assert.ErrorIs(t, err, boom)
}

func TestJoinWithStrategy(t *testing.T) {
	p := &fakeProvider{closes: closesOf(100, 110, 99, 99)}
	strategy := series.New("strategy", []series.Point{
		{Time: day(1), Value: 0.5},
		{Time: day(3), Value: 0.02},
		{Time: day(4), Value: -0.01},
	})

	frame, err := JoinWithStrategy(context.Background(), p, strategy, "RTSI", day(1), "rts")
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(3), day(4)}, frame.Dates)
	assert.Equal(t, []float64{0.02, -0.01}, frame.Strategy.Values())
	assert.Equal(t, "rts", frame.Benchmark.Name)
}

func TestJoinWithStrategy_NoOverlap(t *testing.T) {
	p := &fakeProvider{closes: closesOf(100, 110)}
	strategy := series.New("strategy", []series.Point{{Time: day(10), Value: 0.1}})

	_, err := JoinWithStrategy(context.Background(), p, strategy, "RTSI", day(1), "rts")
	assert.ErrorIs(t, err, series.ErrNoOverlap)
}

func TestCachedProvider_LocalFallback(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{closes: closesOf(100, 110, 99)}
	cached := NewCachedProvider(p, redis.NewCache(redis.Disabled(), "test"), time.Hour, logger.Nop())

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }

	first, err := cached.Closes(ctx, "RTSI", day(1))
	require.NoError(t, err)
	second, err := cached.Closes(ctx, "RTSI", day(1))
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "fake", cached.Name())

	// different start is a different key
	_, err = cached.Closes(ctx, "RTSI", day(2))
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)

	// expiry
	now = now.Add(2 * time.Hour)
	_, err = cached.Closes(ctx, "RTSI", day(1))
	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)

	_, err = cached.Refresh(ctx, "RTSI", day(1))
	require.NoError(t, err)
	assert.Equal(t, 4, p.calls)
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	p := &fakeProvider{err: errors.New("unavailable")}
	cached := NewCachedProvider(p, nil, 0, logger.Nop())

	_, err := cached.Closes(context.Background(), "RTSI", day(1))
	assert.Error(t, err)
	_, err = cached.Closes(context.Background(), "RTSI", day(1))
	assert.Error(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestCachedProvider_Purge(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{closes: closesOf(100, 110, 99)}
	cached := NewCachedProvider(p, nil, time.Hour, logger.Nop())

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }

	_, err := cached.Closes(ctx, "RTSI", day(1))
	require.NoError(t, err)
	now = now.Add(30 * time.Minute)
	_, err = cached.Closes(ctx, "RTSI", day(2))
	require.NoError(t, err)

	assert.Equal(t, 0, cached.Purge())

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, cached.Purge(), "only the first entry is past its TTL")
	assert.Equal(t, 0, cached.Purge())
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Benchmark: config.BenchmarkConfig{
		Provider:   "moex",
		Timeout:    time.Second,
		RatePerSec: 5,
		CacheTTL:   time.Hour,
	}}

	tests := []struct {
		name     string
		provider string
		want     string
		wantErr  bool
	}{
		{"config default", "", "moex", false},
		{"moex", "MOEX", "moex", false},
		{"naver", "naver", "naver", false},
		{"unknown", "yahoo", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(cfg, tt.provider, redis.Disabled(), logger.Nop())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownProvider)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

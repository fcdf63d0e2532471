package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/pkg/config"
	"github.com/wonny/perfstat/pkg/database"
	"github.com/wonny/perfstat/pkg/logger"
)

func sampleRun(name string, created time.Time) *Run {
	return &Run{
		CreatedAt:      created,
		Name:           name,
		Observations:   250,
		FirstDate:      time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		LastDate:       time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC),
		Spread:         0.00011,
		Periods:        260,
		Sharpe:         1.234,
		MaxDrawdown:    -0.18,
		TotalReturn:    0.42,
		BenchmarkIndex: "RTSI",
	}
}

func exerciseStore(t *testing.T, s RunStore) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := sampleRun("first", base)
	second := sampleRun("second", base.Add(time.Hour))
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].Name, "most recent first")

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
	assert.Equal(t, 250, got.Observations)
	assert.Equal(t, 1.234, got.Sharpe)
	assert.Equal(t, "RTSI", got.BenchmarkIndex)
	assert.True(t, got.FirstDate.Equal(first.FirstDate))
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))

	_, err = s.Get(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Migrate(context.Background()))
	exerciseStore(t, s)
}

func TestSQLiteStore_Ping(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	var rs RunStore = s
	pinger, ok := rs.(Pinger)
	require.True(t, ok)
	assert.NoError(t, pinger.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, pinger.Ping(context.Background()))

	var nop RunStore = Nop{}
	_, ok = nop.(Pinger)
	assert.False(t, ok)
}

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreSQLite, SQLitePath: path}}

	s, err := Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_None(t *testing.T) {
	s, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: config.StoreNone}}, logger.Nop())
	require.NoError(t, err)

	assert.NoError(t, s.Save(context.Background(), &Run{}))
	runs, err := s.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mongo"}}, logger.Nop())
	assert.Error(t, err)
}

func TestRunFromReport(t *testing.T) {
	report := &estimate.Report{
		Name:         "strategy",
		Observations: 10,
		Spread:       0.001,
		Periods:      252,
		Sharpe:       0.5,
		MaxDrawdown:  -0.1,
		TotalReturn:  0.05,
	}

	run := RunFromReport(report, "KOSPI")
	assert.Equal(t, "strategy", run.Name)
	assert.Equal(t, 252, run.Periods)
	assert.Equal(t, "KOSPI", run.BenchmarkIndex)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 50, normalizeLimit(0))
	assert.Equal(t, 50, normalizeLimit(5000))
	assert.Equal(t, 7, normalizeLimit(7))
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, &config.Config{Database: config.DatabaseConfig{
		URL:             url,
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	}})
	require.NoError(t, err)

	s := NewPostgresStore(db)
	defer s.Close()

	require.NoError(t, s.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE estimate_runs`)
	require.NoError(t, err)

	require.NoError(t, s.Ping(ctx))
	exerciseStore(t, s)
}

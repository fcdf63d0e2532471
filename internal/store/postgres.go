package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/perfstat/pkg/database"
)

// PostgresStore keeps runs in PostgreSQL
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a new PostgreSQL run store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ping reports whether the pool can reach PostgreSQL
func (s *PostgresStore) Ping(ctx context.Context) error {
	status, err := s.db.HealthCheck(ctx)
	if err != nil {
		return err
	}
	if !status.Healthy {
		return errors.New(status.Error)
	}
	return nil
}

// Migrate creates the runs table
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS estimate_runs (
			id              BIGSERIAL PRIMARY KEY,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			name            TEXT NOT NULL,
			observations    INTEGER NOT NULL,
			first_date      DATE NOT NULL,
			last_date       DATE NOT NULL,
			spread          DOUBLE PRECISION NOT NULL,
			periods         INTEGER NOT NULL,
			sharpe          DOUBLE PRECISION NOT NULL,
			max_drawdown    DOUBLE PRECISION NOT NULL,
			total_return    DOUBLE PRECISION NOT NULL,
			benchmark_index TEXT NOT NULL DEFAULT ''
		)
	`

	if _, err := s.db.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create estimate_runs: %w", err)
	}
	return nil
}

// Save implements RunStore
func (s *PostgresStore) Save(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO estimate_runs (created_at, name, observations, first_date, last_date,
			spread, periods, sharpe, max_drawdown, total_return, benchmark_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := s.db.Pool.QueryRow(ctx, query,
		run.CreatedAt, run.Name, run.Observations, run.FirstDate, run.LastDate,
		run.Spread, run.Periods, run.Sharpe, run.MaxDrawdown, run.TotalReturn, run.BenchmarkIndex,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const selectRuns = `
	SELECT id, created_at, name, observations, first_date, last_date,
		spread, periods, sharpe, max_drawdown, total_return, benchmark_index
	FROM estimate_runs
`

// List implements RunStore
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.Pool.Query(ctx, selectRuns+` ORDER BY created_at DESC, id DESC LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := scanRun(rows, &r); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get implements RunStore
func (s *PostgresStore) Get(ctx context.Context, id int64) (*Run, error) {
	var r Run
	err := scanRun(s.db.Pool.QueryRow(ctx, selectRuns+` WHERE id = $1`, id), &r)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Close implements RunStore
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func scanRun(row pgx.Row, r *Run) error {
	return row.Scan(
		&r.ID, &r.CreatedAt, &r.Name, &r.Observations, &r.FirstDate, &r.LastDate,
		&r.Spread, &r.Periods, &r.Sharpe, &r.MaxDrawdown, &r.TotalReturn, &r.BenchmarkIndex,
	)
}

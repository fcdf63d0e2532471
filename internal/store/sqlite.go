package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// fixed width so TEXT ordering matches time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps runs in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates) the database at path. ":memory:" works
// for tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

// Migrate creates the runs table
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS estimate_runs(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		name TEXT NOT NULL,
		observations INTEGER NOT NULL,
		first_date TEXT NOT NULL,
		last_date TEXT NOT NULL,
		spread REAL NOT NULL,
		periods INTEGER NOT NULL,
		sharpe REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		total_return REAL NOT NULL,
		benchmark_index TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		return fmt.Errorf("failed to create estimate_runs: %w", err)
	}
	return nil
}

// Save implements RunStore
func (s *SQLiteStore) Save(ctx context.Context, run *Run) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO estimate_runs(created_at,name,observations,first_date,last_date,
		spread,periods,sharpe,max_drawdown,total_return,benchmark_index) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		run.CreatedAt.UTC().Format(sqliteTimeLayout), run.Name, run.Observations,
		run.FirstDate.UTC().Format(sqliteTimeLayout), run.LastDate.UTC().Format(sqliteTimeLayout),
		run.Spread, run.Periods, run.Sharpe, run.MaxDrawdown, run.TotalReturn, run.BenchmarkIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return nil
}

const sqliteSelectRuns = `SELECT id,created_at,name,observations,first_date,last_date,
	spread,periods,sharpe,max_drawdown,total_return,benchmark_index FROM estimate_runs`

// List implements RunStore
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectRuns+` ORDER BY created_at DESC, id DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := scanSQLiteRun(rows, &r); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get implements RunStore
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Run, error) {
	var r Run
	err := scanSQLiteRun(s.db.QueryRowContext(ctx, sqliteSelectRuns+` WHERE id=?`, id), &r)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Ping reports whether the database file is usable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements RunStore
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row scanner, r *Run) error {
	var createdAt, firstDate, lastDate string
	err := row.Scan(&r.ID, &createdAt, &r.Name, &r.Observations, &firstDate, &lastDate,
		&r.Spread, &r.Periods, &r.Sharpe, &r.MaxDrawdown, &r.TotalReturn, &r.BenchmarkIndex)
	if err != nil {
		return err
	}

	for _, f := range []struct {
		src string
		dst *time.Time
	}{
		{createdAt, &r.CreatedAt},
		{firstDate, &r.FirstDate},
		{lastDate, &r.LastDate},
	} {
		t, err := time.Parse(sqliteTimeLayout, f.src)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", f.src, err)
		}
		*f.dst = t
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/pkg/config"
	"github.com/wonny/perfstat/pkg/database"
	"github.com/wonny/perfstat/pkg/logger"
)

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("run not found")

// Run is one persisted estimate
type Run struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Name           string    `json:"name"`
	Observations   int       `json:"observations"`
	FirstDate      time.Time `json:"first_date"`
	LastDate       time.Time `json:"last_date"`
	Spread         float64   `json:"spread"`
	Periods        int       `json:"periods"`
	Sharpe         float64   `json:"sharpe"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	TotalReturn    float64   `json:"total_return"`
	BenchmarkIndex string    `json:"benchmark_index,omitempty"`
}

// RunFromReport captures the headline numbers of a report
func RunFromReport(report *estimate.Report, benchmarkIndex string) *Run {
	return &Run{
		CreatedAt:      time.Now().UTC(),
		Name:           report.Name,
		Observations:   report.Observations,
		FirstDate:      report.StartDate,
		LastDate:       report.EndDate,
		Spread:         report.Spread,
		Periods:        report.Periods,
		Sharpe:         report.Sharpe,
		MaxDrawdown:    report.MaxDrawdown,
		TotalReturn:    report.TotalReturn,
		BenchmarkIndex: benchmarkIndex,
	}
}

// RunStore persists estimate runs
type RunStore interface {
	// Save inserts run and sets its ID
	Save(ctx context.Context, run *Run) error
	// List returns the most recent runs first
	List(ctx context.Context, limit int) ([]Run, error)
	Get(ctx context.Context, id int64) (*Run, error)
	Close() error
}

// Pinger is implemented by stores backed by a database connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// Open returns the store selected by STORE_DRIVER and creates its schema
// ⭐ SSOT: run stores are constructed only here
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (RunStore, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s := NewPostgresStore(db)
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.WithField("driver", cfg.Store.Driver).Info("Run store ready")
		return s, nil

	case config.StoreSQLite:
		s, err := OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		log.WithFields(map[string]interface{}{
			"driver": cfg.Store.Driver,
			"path":   cfg.Store.SQLitePath,
		}).Info("Run store ready")
		return s, nil

	case config.StoreNone, "":
		return Nop{}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Nop discards runs
type Nop struct{}

// Save implements RunStore
func (Nop) Save(ctx context.Context, run *Run) error { return nil }

// List implements RunStore
func (Nop) List(ctx context.Context, limit int) ([]Run, error) { return []Run{}, nil }

// Get implements RunStore
func (Nop) Get(ctx context.Context, id int64) (*Run, error) { return nil, ErrNotFound }

// Close implements RunStore
func (Nop) Close() error { return nil }

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 50
	}
	return limit
}

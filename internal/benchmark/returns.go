package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/perfstat/internal/series"
)

// DefaultLabel names the benchmark returns column
const DefaultLabel = "rts"

// Returns downloads closes and converts them to close-to-close returns
// named label
func Returns(ctx context.Context, p Provider, index string, start time.Time, label string) (series.Series, error) {
	closes, err := p.Closes(ctx, index, start)
	if err != nil {
		return series.Series{}, fmt.Errorf("failed to fetch %s closes from %s: %w", index, p.Name(), err)
	}

	if label == "" {
		label = DefaultLabel
	}

	returns := closes.PctChange(1).Rename(label)
	if returns.Empty() {
		return series.Series{}, fmt.Errorf("%s since %s: %w", index, start.Format("2006-01-02"), ErrNoData)
	}

	return returns, nil
}

// JoinWithStrategy fetches benchmark returns and aligns them with the
// strategy returns on common dates
func JoinWithStrategy(ctx context.Context, p Provider, returns series.Series, index string, start time.Time, label string) (series.Frame, error) {
	bench, err := Returns(ctx, p, index, start, label)
	if err != nil {
		return series.Frame{}, err
	}

	frame, err := series.Join(returns, bench)
	if err != nil {
		return series.Frame{}, fmt.Errorf("failed to join strategy with %s: %w", index, err)
	}

	return frame, nil
}

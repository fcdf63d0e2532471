package estimate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/perfstat/internal/series"
)

const (
	// DefaultSpread is the per-period trading cost subtracted from the mean return
	DefaultSpread = 0.00011

	// DefaultPeriodsPerYear is the annualization constant for daily returns
	DefaultPeriodsPerYear = 260
)

// Options configures the statistics
type Options struct {
	Spread         float64 `json:"spread"`
	PeriodsPerYear int     `json:"periods"`
}

// DefaultOptions returns the standard spread and annualization
func DefaultOptions() Options {
	return Options{
		Spread:         DefaultSpread,
		PeriodsPerYear: DefaultPeriodsPerYear,
	}
}

func (o Options) normalized() Options {
	if o.PeriodsPerYear <= 0 {
		o.PeriodsPerYear = DefaultPeriodsPerYear
	}
	return o
}

// Drawdown returns cumprod(1+r) / runningmax(cumprod(1+r)) - 1.
// Every value is <= 0 and equals 0 wherever a new peak is set.
func Drawdown(returns series.Series) (series.Series, error) {
	clean := returns.DropNaN()
	if clean.Empty() {
		return series.Series{}, series.ErrEmptySeries
	}

	cum := clean.CumProd1p()
	peak := cum.RunningMax()

	points := make([]series.Point, cum.Len())
	for i, p := range cum.Points {
		dd := p.Value/peak.Points[i].Value - 1
		if dd > 0 {
			dd = 0
		}
		points[i] = series.Point{Time: p.Time, Value: dd}
	}

	return series.Series{Name: returns.Name, Points: points}, nil
}

// MaxDrawdown returns the deepest drawdown (<= 0)
func MaxDrawdown(returns series.Series) (float64, error) {
	dd, err := Drawdown(returns)
	if err != nil {
		return 0, err
	}
	return dd.Min()
}

// SharpeRatio returns sqrt(periods) * (mean(r) - spread) / std(r) using the
// sample standard deviation.
func SharpeRatio(returns series.Series, spread float64, periods int) (float64, error) {
	values := returns.DropNaN().Values()
	if len(values) < 2 {
		return 0, fmt.Errorf("sharpe ratio of %d observations: %w", len(values), ErrInsufficientData)
	}
	if periods <= 0 {
		periods = DefaultPeriodsPerYear
	}

	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return 0, ErrZeroVolatility
	}

	return math.Sqrt(float64(periods)) * (mean - spread) / std, nil
}

// SortinoRatio is SharpeRatio with the downside deviation in the denominator.
// The downside deviation is the root mean square of negative returns over
// all observations. Zero when there are no losing periods.
func SortinoRatio(returns series.Series, spread float64, periods int) (float64, error) {
	values := returns.DropNaN().Values()
	if len(values) < 2 {
		return 0, fmt.Errorf("sortino ratio of %d observations: %w", len(values), ErrInsufficientData)
	}
	if periods <= 0 {
		periods = DefaultPeriodsPerYear
	}

	var sumSquaredNegative float64
	for _, r := range values {
		if r < 0 {
			sumSquaredNegative += r * r
		}
	}
	if sumSquaredNegative == 0 {
		return 0, nil
	}

	downside := math.Sqrt(sumSquaredNegative / float64(len(values)))
	return math.Sqrt(float64(periods)) * (stat.Mean(values, nil) - spread) / downside, nil
}

// TotalReturn compounds the returns
func TotalReturn(returns series.Series) float64 {
	cum := returns.DropNaN().CumProd1p()
	last, ok := cum.Last()
	if !ok {
		return 0
	}
	return last.Value - 1
}

// annualize converts a compounded return over n periods to a yearly rate
func annualize(totalReturn float64, n, periods int) float64 {
	if n == 0 || totalReturn <= -1 {
		return totalReturn
	}
	return math.Pow(1+totalReturn, float64(periods)/float64(n)) - 1
}

// Volatility returns the annualized sample standard deviation
func Volatility(returns series.Series, periods int) float64 {
	values := returns.DropNaN().Values()
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil) * math.Sqrt(float64(periods))
}

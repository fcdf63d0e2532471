package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/perfstat/internal/plot"
)

var rule = strings.Repeat("-", 77)

// PrintSummary prints the max drawdown / Sharpe banner
func PrintSummary(w io.Writer, maxDrawdown, sharpe float64, labels plot.Labels) error {
	_, err := fmt.Fprintf(w, "%s\n%s: %s%%\n%s: %s\n%s\n",
		rule,
		labels.MaxDrawdown, FormatMaxDrawdown(maxDrawdown),
		labels.Sharpe, FormatSharpe(sharpe),
		rule,
	)
	return err
}

// FormatMaxDrawdown renders a drawdown ratio (<= 0) as a whole positive
// percent, rounding half to even
func FormatMaxDrawdown(maxDrawdown float64) string {
	pct := math.RoundToEven(-maxDrawdown * 100)
	if pct == 0 {
		pct = 0 // no "-0"
	}
	return strconv.FormatFloat(pct, 'f', 0, 64)
}

// FormatSharpe rounds to three decimals and trims trailing zeros,
// keeping at least one decimal digit
func FormatSharpe(sharpe float64) string {
	if math.IsNaN(sharpe) || math.IsInf(sharpe, 0) {
		return strconv.FormatFloat(sharpe, 'f', -1, 64)
	}

	s := strconv.FormatFloat(sharpe, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}

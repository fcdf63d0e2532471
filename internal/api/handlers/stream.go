package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/logger"
)

const (
	streamReadTimeout  = 5 * time.Minute
	streamWriteTimeout = 10 * time.Second
	streamMaxMessage   = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamHandler computes running statistics over a websocket
type StreamHandler struct {
	defaults Defaults
	logger   *logger.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(defaults Defaults, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		defaults: defaults,
		logger:   log.Component("api.stream"),
	}
}

// Summary is sent after every accepted observation.
// Sharpe is nil until it is defined (two observations with non-zero spread).
type Summary struct {
	Observations int      `json:"observations"`
	Date         string   `json:"date"`
	Drawdown     float64  `json:"drawdown"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	TotalReturn  float64  `json:"total_return"`
	Sharpe       *float64 `json:"sharpe"`
	Error        string   `json:"error,omitempty"`
}

// runningStats folds observations in one at a time. Mean and variance
// follow Welford's update, so no history is kept.
type runningStats struct {
	n       int
	mean    float64
	m2      float64 // sum of squared deviations from the mean
	cum     float64
	peak    float64
	maxDD   float64
	spread  float64
	periods int
}

func newRunningStats(opts estimate.Options) *runningStats {
	return &runningStats{cum: 1, peak: 1, spread: opts.Spread, periods: opts.PeriodsPerYear}
}

func (s *runningStats) add(p series.Point) Summary {
	s.n++
	delta := p.Value - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (p.Value - s.mean)

	s.cum *= 1 + p.Value
	s.peak = math.Max(s.peak, s.cum)

	dd := s.cum/s.peak - 1
	s.maxDD = math.Min(s.maxDD, dd)

	summary := Summary{
		Observations: s.n,
		Date:         p.Time.Format("2006-01-02"),
		Drawdown:     dd,
		MaxDrawdown:  s.maxDD,
		TotalReturn:  s.cum - 1,
	}

	if sharpe, ok := s.sharpe(); ok {
		summary.Sharpe = &sharpe
	}

	return summary
}

// sharpe matches estimate.SharpeRatio: sample standard deviation, and no
// value below two observations or with zero volatility
func (s *runningStats) sharpe() (float64, bool) {
	if s.n < 2 {
		return 0, false
	}
	std := math.Sqrt(s.m2 / float64(s.n-1))
	if std == 0 || math.IsNaN(std) {
		return 0, false
	}
	periods := s.periods
	if periods <= 0 {
		periods = estimate.DefaultPeriodsPerYear
	}
	return math.Sqrt(float64(periods)) * (s.mean - s.spread) / std, true
}

// Estimate upgrades to a websocket. The client sends {date, value}
// observations in time order; the server answers each with a Summary.
// GET /ws/estimate?spread=&periods=
func (h *StreamHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if v := r.URL.Query().Get("spread"); v != "" {
		f, err := parseFloat(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'spread'")
			return
		}
		req.Spread = &f
	}
	if v := r.URL.Query().Get("periods"); v != "" {
		n, err := parseInt(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'periods' (expected a positive integer)")
			return
		}
		req.Periods = &n
	}
	opts := req.options(h.defaults)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(streamMaxMessage)
	stats := newRunningStats(opts)
	var last time.Time

	h.logger.WithField("remote", r.RemoteAddr).Debug("Stream opened")

	for {
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

		var obs Observation
		if err := conn.ReadJSON(&obs); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				h.logger.WithError(err).Debug("Stream read ended")
			}
			break
		}

		var reply Summary
		t, err := parseDate(obs.Date)
		switch {
		case err != nil:
			reply = Summary{Observations: stats.n, Error: "invalid date " + obs.Date}
		case !last.IsZero() && !t.After(last):
			reply = Summary{Observations: stats.n, Error: "observations must be in increasing date order"}
		case math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0):
			reply = Summary{Observations: stats.n, Error: "value must be finite"}
		default:
			last = t
			reply = stats.add(series.Point{Time: t, Value: obs.Value})
		}

		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.WithError(err).Debug("Stream write failed")
			break
		}
	}

	h.logger.WithField("observations", stats.n).Debug("Stream closed")
}

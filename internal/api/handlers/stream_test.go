package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/logger"
)

func dialStream(t *testing.T, query string) *websocket.Conn {
	t.Helper()

	h := NewStreamHandler(testDefaults(), logger.Nop())
	srv := httptest.NewServer(http.HandlerFunc(h.Estimate))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, obs Observation) Summary {
	t.Helper()
	require.NoError(t, conn.WriteJSON(obs))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var s Summary
	require.NoError(t, conn.ReadJSON(&s))
	return s
}

func TestStream_RunningSummary(t *testing.T) {
	conn := dialStream(t, "")

	first := send(t, conn, Observation{Date: "2024-01-01", Value: 0.10})
	assert.Equal(t, 1, first.Observations)
	assert.Equal(t, "2024-01-01", first.Date)
	assert.Zero(t, first.MaxDrawdown)
	assert.Nil(t, first.Sharpe)

	second := send(t, conn, Observation{Date: "2024-01-02", Value: -0.20})
	assert.Equal(t, 2, second.Observations)
	assert.InDelta(t, -0.2, second.Drawdown, 1e-12)
	assert.InDelta(t, -0.2, second.MaxDrawdown, 1e-12)
	assert.InDelta(t, 1.1*0.8-1, second.TotalReturn, 1e-12)
	require.NotNil(t, second.Sharpe)
	assert.Less(t, *second.Sharpe, 0.0)

	third := send(t, conn, Observation{Date: "2024-01-03", Value: 0.25})
	assert.InDelta(t, 0.0, third.Drawdown, 1e-12)
	assert.InDelta(t, -0.2, third.MaxDrawdown, 1e-12, "max drawdown never shrinks")
}

func TestStream_MatchesBatchSharpe(t *testing.T) {
	conn := dialStream(t, "?spread=0&periods=252")

	values := []float64{0.01, -0.005, 0.02, 0.003, -0.01}
	var last Summary
	for i, v := range values {
		last = send(t, conn, Observation{Date: day0.AddDate(0, 0, i).Format("2006-01-02"), Value: v})
	}

	obs := observations(values...)
	req := EstimateRequest{Returns: obs}
	returns, err := req.series()
	require.NoError(t, err)
	want, err := estimate.SharpeRatio(returns, 0, 252)
	require.NoError(t, err)

	require.NotNil(t, last.Sharpe)
	assert.InDelta(t, want, *last.Sharpe, 1e-12)
}

func TestStream_RejectsBadObservations(t *testing.T) {
	conn := dialStream(t, "")

	send(t, conn, Observation{Date: "2024-01-02", Value: 0.01})

	bad := send(t, conn, Observation{Date: "not-a-date", Value: 0.01})
	assert.Contains(t, bad.Error, "invalid date")
	assert.Equal(t, 1, bad.Observations)

	stale := send(t, conn, Observation{Date: "2024-01-01", Value: 0.01})
	assert.Contains(t, stale.Error, "increasing date order")

	ok := send(t, conn, Observation{Date: "2024-01-03", Value: 0.01})
	assert.Empty(t, ok.Error)
	assert.Equal(t, 2, ok.Observations)
}

func TestStream_BadQuery(t *testing.T) {
	h := NewStreamHandler(testDefaults(), logger.Nop())
	rec := httptest.NewRecorder()
	h.Estimate(rec, httptest.NewRequest(http.MethodGet, "/ws/estimate?periods=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunningStats(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		spread float64
	}{
		{"mixed", []float64{0.01, -0.005, 0.02, 0.003, -0.01, 0.007}, 0.00011},
		{"losing", []float64{-0.01, -0.02, -0.005, -0.015}, 0},
		{"large magnitudes", []float64{1.5, -0.4, 0.9, -0.7, 2.1}, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := newRunningStats(estimate.Options{Spread: tt.spread, PeriodsPerYear: 260})

			for i, v := range tt.values {
				got := stats.add(series.Point{Time: day0.AddDate(0, 0, i), Value: v})
				assert.Equal(t, i+1, got.Observations)

				returns := series.New("r", observationPoints(tt.values[:i+1]))
				want, err := estimate.SharpeRatio(returns, tt.spread, 260)
				if err != nil {
					assert.Nil(t, got.Sharpe)
					continue
				}
				require.NotNil(t, got.Sharpe)
				assert.InDelta(t, want, *got.Sharpe, 1e-9)
			}
		})
	}
}

func TestRunningStats_ZeroVolatility(t *testing.T) {
	stats := newRunningStats(estimate.DefaultOptions())

	for i := 0; i < 5; i++ {
		got := stats.add(series.Point{Time: day0.AddDate(0, 0, i), Value: 0.002})
		assert.Nil(t, got.Sharpe)
	}
}

func observationPoints(values []float64) []series.Point {
	points := make([]series.Point, len(values))
	for i, v := range values {
		points[i] = series.Point{Time: day0.AddDate(0, 0, i), Value: v}
	}
	return points
}

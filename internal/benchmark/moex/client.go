package moex

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/httputil"
	"github.com/wonny/perfstat/pkg/logger"
)

const (
	defaultBaseURL = "https://iss.moex.com"
	defaultEngine  = "stock"
	defaultMarket  = "index"

	// maxPages bounds pagination if the cursor misbehaves
	maxPages = 1000
)

// Client downloads index history from the MOEX ISS API
// ⭐ SSOT: MOEX ISS calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	engine     string
	market     string
}

// NewClient creates a new MOEX ISS client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("benchmark.moex"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		engine:     defaultEngine,
		market:     defaultMarket,
	}
}

// Name identifies the provider
func (c *Client) Name() string {
	return "moex"
}

// table is the ISS "columns + data" block
type table struct {
	Columns []string        `json:"columns"`
	Data    [][]interface{} `json:"data"`
}

type historyResponse struct {
	History table `json:"history"`
	Cursor  table `json:"history.cursor"`
}

// Closes returns daily CLOSE levels of index since start
func (c *Client) Closes(ctx context.Context, index string, start time.Time) (series.Series, error) {
	index = strings.ToUpper(index)
	points := make([]series.Point, 0, 4096)
	offset := 0

	for page := 0; page < maxPages; page++ {
		var resp historyResponse
		if err := c.httpClient.GetJSON(ctx, c.historyURL(index, start, offset), &resp); err != nil {
			return series.Series{}, fmt.Errorf("failed to fetch %s history: %w", index, err)
		}

		rows, err := parseHistory(resp.History)
		if err != nil {
			return series.Series{}, fmt.Errorf("failed to parse %s history: %w", index, err)
		}
		points = append(points, rows...)

		fetched := len(resp.History.Data)
		if fetched == 0 {
			break
		}
		offset += fetched

		total, ok := cursorTotal(resp.Cursor)
		if !ok || offset >= total {
			break
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"index": index,
		"start": start.Format("2006-01-02"),
		"count": len(points),
	}).Debug("Fetched index history")

	return series.New(index, points), nil
}

func (c *Client) historyURL(index string, start time.Time, offset int) string {
	params := url.Values{}
	params.Set("from", start.Format("2006-01-02"))
	params.Set("start", fmt.Sprintf("%d", offset))
	params.Set("iss.meta", "off")

	return fmt.Sprintf("%s/iss/history/engines/%s/markets/%s/securities/%s.json?%s",
		c.baseURL, c.engine, c.market, url.PathEscape(index), params.Encode())
}

// parseHistory extracts TRADEDATE and CLOSE by column name. Rows without
// a close are skipped.
func parseHistory(t table) ([]series.Point, error) {
	dateCol, closeCol := -1, -1
	for i, name := range t.Columns {
		switch strings.ToUpper(name) {
		case "TRADEDATE":
			dateCol = i
		case "CLOSE":
			closeCol = i
		}
	}
	if len(t.Data) == 0 {
		return nil, nil
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("missing TRADEDATE or CLOSE column in %v", t.Columns)
	}

	points := make([]series.Point, 0, len(t.Data))
	for _, row := range t.Data {
		if len(row) <= dateCol || len(row) <= closeCol {
			continue
		}

		dateStr, ok := row[dateCol].(string)
		if !ok {
			continue
		}
		tradeDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		closePrice, ok := row[closeCol].(float64)
		if !ok {
			continue
		}

		points = append(points, series.Point{Time: tradeDate, Value: closePrice})
	}

	return points, nil
}

// cursorTotal reads TOTAL from the history.cursor block
func cursorTotal(t table) (int, bool) {
	if len(t.Data) == 0 {
		return 0, false
	}
	for i, name := range t.Columns {
		if strings.ToUpper(name) != "TOTAL" || len(t.Data[0]) <= i {
			continue
		}
		if total, ok := t.Data[0][i].(float64); ok {
			return int(total), true
		}
	}
	return 0, false
}

package naver

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/perfstat/internal/series"
)

var dateRe = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)

// Closes returns daily closing levels of index (KOSPI, KOSDAQ, KPI200)
// since start. Pages are newest first; paging stops once start is passed.
func (c *Client) Closes(ctx context.Context, index string, start time.Time) (series.Series, error) {
	index = strings.ToUpper(index)
	var points []series.Point
	var previousOldest time.Time

	for page := 1; page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return series.Series{}, ctx.Err()
		default:
		}

		params := url.Values{}
		params.Set("code", index)
		params.Set("page", strconv.Itoa(page))

		html, err := c.fetchHTML(ctx, "/sise/sise_index_day.naver", params)
		if err != nil {
			return series.Series{}, fmt.Errorf("failed to fetch %s page %d: %w", index, page, err)
		}

		rows, oldest, err := parseIndexHTML(html)
		if err != nil {
			return series.Series{}, fmt.Errorf("failed to parse %s page %d: %w", index, page, err)
		}

		// past the last page Naver keeps serving the last page
		if len(rows) == 0 || oldest.Equal(previousOldest) {
			break
		}
		previousOldest = oldest

		for _, p := range rows {
			if !p.Time.Before(start) {
				points = append(points, p)
			}
		}

		if oldest.Before(start) {
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

// parseIndexHTML extracts (date, close) rows from a sise_index_day page
// and returns the oldest date on the page
func parseIndexHTML(html string) ([]series.Point, time.Time, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, time.Time{}, err
	}

	var points []series.Point
	var oldest time.Time

	doc.Find("table.type_1 tr").Each(func(i int, row *goquery.Selection) {
		dateText := strings.TrimSpace(row.Find("td.date").First().Text())
		if !dateRe.MatchString(dateText) {
			return
		}

		tradeDate, err := time.Parse("2006.01.02", dateText)
		if err != nil {
			return
		}

		closeText := strings.TrimSpace(row.Find("td.number_1").First().Text())
		closePrice, err := parseNum(closeText)
		if err != nil {
			return
		}

		points = append(points, series.Point{Time: tradeDate, Value: closePrice})
		if oldest.IsZero() || tradeDate.Before(oldest) {
			oldest = tradeDate
		}
	})

	return points, oldest, nil
}

func parseNum(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(s, 64)
}

package naver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfstat/pkg/httputil"
	"github.com/wonny/perfstat/pkg/logger"
)

func indexPage(rows ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="type_1"><tr><th>날짜</th><th>체결가</th></tr>`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr><td class="date">%s</td><td class="number_1">%s</td>`+
			`<td class="rate_down">1.00</td><td class="number_1">-0.5%%</td></tr>`, r[0], r[1])
	}
	b.WriteString(`<tr><td colspan="6" class="blank_09"></td></tr></table></body></html>`)
	return b.String()
}

func TestParseIndexHTML(t *testing.T) {
	html := indexPage(
		[2]string{"2024.01.16", "2,497.09"},
		[2]string{"2024.01.15", "2,525.05"},
		[2]string{"bad", "1"},
	)

	points, oldest, err := parseIndexHTML(html)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, 2497.09, points[0].Value)
	assert.Equal(t, 2525.05, points[1].Value)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), oldest)
}

func TestClient_Closes(t *testing.T) {
	pages := map[string]string{
		"1": indexPage([2]string{"2024.01.05", "2,600.00"}, [2]string{"2024.01.04", "2,590.00"}),
		"2": indexPage([2]string{"2024.01.03", "2,580.00"}, [2]string{"2024.01.02", "2,570.00"}),
		"3": indexPage([2]string{"2023.12.29", "2,655.00"}, [2]string{"2023.12.28", "2,650.00"}),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sise/sise_index_day.naver", r.URL.Path)
		assert.Equal(t, "KOSPI", r.URL.Query().Get("code"))

		page := r.URL.Query().Get("page")
		assert.Contains(t, []string{"1", "2", "3"}, page, "must stop once start is passed")
		w.Write([]byte(pages[page]))
	}))
	defer server.Close()

	client := NewClient(httputil.New(logger.Nop(), time.Second).DisableRetry(), logger.Nop(), server.URL)

	closes, err := client.Closes(context.Background(), "kospi", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "KOSPI", closes.Name)
	assert.Equal(t, []float64{2570, 2580, 2590, 2600}, closes.Values())
}

func TestClient_ClosesStopsOnRepeatedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexPage([2]string{"2024.01.05", "2,600.00"})))
	}))
	defer server.Close()

	client := NewClient(httputil.New(logger.Nop(), time.Second).DisableRetry(), logger.Nop(), server.URL)

	closes, err := client.Closes(context.Background(), "KOSDAQ", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, closes.Len())
}

package moex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfstat/pkg/httputil"
	"github.com/wonny/perfstat/pkg/logger"
)

const columns = `["BOARDID","SECID","TRADEDATE","SHORTNAME","NAME","CLOSE","OPEN","HIGH","LOW"]`

func page(rows string, index, total int) string {
	return fmt.Sprintf(`{"history":{"columns":%s,"data":[%s]},`+
		`"history.cursor":{"columns":["INDEX","TOTAL","PAGESIZE"],"data":[[%d,%d,2]]}}`,
		columns, rows, index, total)
}

func TestClient_Closes(t *testing.T) {
	pages := map[string]string{
		"0": page(`["SNDX","RTSI","2024-01-03","RTS","RTS Index",1083.5,1080,1090,1070],`+
			`["SNDX","RTSI","2024-01-04","RTS","RTS Index",1090.1,1083,1095,1081]`, 0, 3),
		"2": page(`["SNDX","RTSI","2024-01-05","RTS","RTS Index",null,1090,1091,1085]`, 2, 3),
	}

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/iss/history/engines/stock/markets/index/securities/RTSI.json", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))

		body, ok := pages[r.URL.Query().Get("start")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(httputil.New(logger.Nop(), time.Second).DisableRetry(), logger.Nop(), server.URL)

	closes, err := client.Closes(context.Background(), "rtsi", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, "RTSI", closes.Name)
	assert.Equal(t, []float64{1083.5, 1090.1}, closes.Values())
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), closes.Points[0].Time)
}

func TestClient_ClosesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(httputil.New(logger.Nop(), time.Second).DisableRetry(), logger.Nop(), server.URL)

	_, err := client.Closes(context.Background(), "RTSI", time.Now())
	assert.Error(t, err)
}

func TestParseHistory(t *testing.T) {
	tests := []struct {
		name    string
		table   table
		want    int
		wantErr bool
	}{
		{
			name: "columns in any order",
			table: table{
				Columns: []string{"CLOSE", "TRADEDATE"},
				Data:    [][]interface{}{{100.0, "2024-01-03"}, {101.0, "2024-01-04"}},
			},
			want: 2,
		},
		{
			name: "skips bad rows",
			table: table{
				Columns: []string{"TRADEDATE", "CLOSE"},
				Data:    [][]interface{}{{"03.01.2024", 100.0}, {"2024-01-04", nil}, {"2024-01-05"}},
			},
			want: 0,
		},
		{
			name:  "empty",
			table: table{Columns: []string{"TRADEDATE"}},
			want:  0,
		},
		{
			name: "missing close column",
			table: table{
				Columns: []string{"TRADEDATE", "OPEN"},
				Data:    [][]interface{}{{"2024-01-03", 100.0}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHistory(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestCursorTotal(t *testing.T) {
	total, ok := cursorTotal(table{
		Columns: []string{"INDEX", "TOTAL", "PAGESIZE"},
		Data:    [][]interface{}{{0.0, 3500.0, 100.0}},
	})
	assert.True(t, ok)
	assert.Equal(t, 3500, total)

	_, ok = cursorTotal(table{})
	assert.False(t, ok)
}

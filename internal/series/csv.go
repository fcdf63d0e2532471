package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// CSVOptions controls how ReadCSV interprets rows
type CSVOptions struct {
	Name        string // series name, defaults to the value column header or "strategy"
	DateLayout  string // time layout of the date column, defaults to 2006-01-02
	DateColumn  int
	ValueColumn int
	Comma       rune
}

// DefaultCSVOptions returns options for "date,value" files
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		DateLayout:  "2006-01-02",
		DateColumn:  0,
		ValueColumn: 1,
		Comma:       ',',
	}
}

// ReadCSV reads a series from CSV. A header row is detected when the
// first row's date cell does not parse. An empty value cell is a missing
// observation and reads as NaN.
func ReadCSV(r io.Reader, opts CSVOptions) (Series, error) {
	if opts.DateLayout == "" {
		opts.DateLayout = "2006-01-02"
	}
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	if opts.DateColumn == opts.ValueColumn {
		return Series{}, fmt.Errorf("date and value column must differ (both %d)", opts.DateColumn)
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	name := opts.Name
	points := make([]Point, 0, 256)
	line := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++

		if len(record) <= opts.DateColumn || len(record) <= opts.ValueColumn {
			return Series{}, fmt.Errorf("line %d: expected at least %d columns, got %d",
				line, maxInt(opts.DateColumn, opts.ValueColumn)+1, len(record))
		}

		dateCell := strings.TrimSpace(record[opts.DateColumn])
		ts, err := time.Parse(opts.DateLayout, dateCell)
		if err != nil {
			if line == 1 {
				if name == "" {
					name = strings.TrimSpace(record[opts.ValueColumn])
				}
				continue
			}
			return Series{}, fmt.Errorf("line %d: invalid date %q: %w", line, dateCell, err)
		}

		valueCell := strings.TrimSpace(record[opts.ValueColumn])
		value := math.NaN()
		if valueCell != "" {
			value, err = strconv.ParseFloat(valueCell, 64)
			if err != nil {
				return Series{}, fmt.Errorf("line %d: invalid value %q: %w", line, valueCell, err)
			}
		}

		points = append(points, Point{Time: ts, Value: value})
	}

	if name == "" {
		name = "strategy"
	}
	if len(points) == 0 {
		return Series{}, fmt.Errorf("read %s: %w", name, ErrEmptySeries)
	}

	return New(name, points), nil
}

// WriteCSV writes a "date,<name>" header followed by one row per point
func WriteCSV(w io.Writer, s Series) error {
	writer := csv.NewWriter(w)

	name := s.Name
	if name == "" {
		name = "value"
	}
	if err := writer.Write([]string{"date", name}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range s.Points {
		row := []string{
			p.Time.Format("2006-01-02"),
			strconv.FormatFloat(p.Value, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

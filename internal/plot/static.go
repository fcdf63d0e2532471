package plot

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/wonny/perfstat/internal/series"
)

// Static renders PNG charts with go-chart
type Static struct {
	Width  int
	Height int
}

// NewStatic returns a 1500x600 PNG renderer
func NewStatic() *Static {
	return &Static{Width: 1500, Height: 600}
}

// Ext implements Renderer
func (s *Static) Ext() string { return "png" }

// ContentType implements Renderer
func (s *Static) ContentType() string { return "image/png" }

// RenderReturns implements Renderer
func (s *Static) RenderReturns(w io.Writer, f series.Frame, labels Labels) error {
	data, err := returnsData(f, labels)
	if err != nil {
		return err
	}

	data = data.widened()
	graph := s.canvas(data, labels.ReturnsTitle, labels.ReturnsAxis, false)
	for i, line := range data.lines {
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name: data.names[i],
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(data.colors[i]),
				StrokeWidth: lineWidth,
			},
			XValues: data.times,
			YValues: line,
		})
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render returns chart: %w", err)
	}
	return nil
}

// RenderDrawdown implements Renderer
func (s *Static) RenderDrawdown(w io.Writer, dd series.Series, labels Labels) error {
	graph, err := s.drawdownChart(dd, labels)
	if err != nil {
		return err
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render drawdown chart: %w", err)
	}
	return nil
}

// drawdownChart builds the drawdown line with its area shaded up to zero
func (s *Static) drawdownChart(dd series.Series, labels Labels) (*chart.Chart, error) {
	data, err := drawdownData(dd, labels)
	if err != nil {
		return nil, err
	}

	data = data.widened()
	graph := s.canvas(data, labels.DrawdownTitle, labels.DrawdownAxis, true)
	graph.Series = append(graph.Series, chart.TimeSeries{
		Name: data.names[0],
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex(colorDrawdownLine),
			StrokeWidth: lineWidth,
		},
		XValues: data.times,
		YValues: data.lines[0],
	})

	// fill between the line and zero; go-chart only fills down to the axis
	lo, hi := data.valueRange(true)
	graph.Elements = append([]chart.Renderable{
		fillToZero(data.times, data.lines[0], lo, hi, drawing.ColorFromHex(colorDrawdownFill).WithAlpha(128)),
	}, graph.Elements...)

	return graph, nil
}

// canvas builds an empty chart with fixed axes ranges
func (s *Static) canvas(data chartData, title, axis string, includeZero bool) *chart.Chart {
	times := data.times
	lo, hi := data.valueRange(includeZero)

	graph := &chart.Chart{
		Title:  title,
		Width:  s.Width,
		Height: s.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
			Range: &chart.ContinuousRange{
				Min: float64(times[0].UnixNano()),
				Max: float64(times[len(times)-1].UnixNano()),
			},
		},
		YAxis: chart.YAxis{
			Name:           axis,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			GridMajorStyle: chart.Style{StrokeColor: drawing.ColorFromHex("DDDDDD"), StrokeWidth: 1},
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.1f", vf)
				}
				return ""
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(graph)}

	return graph
}

// fillToZero shades the area between a line and the zero level
func fillToZero(times []time.Time, values []float64, lo, hi float64, color drawing.Color) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		if len(times) < 2 || hi <= lo {
			return
		}

		x0 := float64(times[0].UnixNano())
		x1 := float64(times[len(times)-1].UnixNano())
		if x1 <= x0 {
			return
		}

		px := func(t time.Time) int {
			return cb.Left + int((float64(t.UnixNano())-x0)/(x1-x0)*float64(cb.Width()))
		}
		py := func(v float64) int {
			return cb.Bottom - int((v-lo)/(hi-lo)*float64(cb.Height()))
		}

		r.SetFillColor(color)
		r.SetStrokeColor(drawing.ColorTransparent)
		r.SetStrokeWidth(0)

		r.MoveTo(px(times[0]), py(0))
		for i, t := range times {
			r.LineTo(px(t), py(values[i]))
		}
		r.LineTo(px(times[len(times)-1]), py(0))
		r.Close()
		r.Fill()
	}
}

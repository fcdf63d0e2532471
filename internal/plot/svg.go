package plot

import (
	"fmt"
	"io"
	"sync"

	"github.com/vicanso/go-charts/v2"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/wonny/perfstat/internal/series"
)

const themeReturns = "perfstat-returns"

var registerThemes sync.Once

// SVG renders vector charts with go-charts
type SVG struct {
	Width  int
	Height int
}

// NewSVG returns a 1500x600 SVG renderer
func NewSVG() *SVG {
	registerThemes.Do(func() {
		charts.AddTheme(themeReturns, themeWith(colorStrategy, colorBenchmark))
	})
	return &SVG{Width: 1500, Height: 600}
}

// themeWith is the light theme with a fixed series palette
func themeWith(colors ...string) charts.ThemeOption {
	seriesColors := make([]charts.Color, len(colors))
	for i, c := range colors {
		seriesColors[i] = drawing.ColorFromHex(c)
	}
	return charts.ThemeOption{
		AxisStrokeColor:    drawing.ColorFromHex("6E7079"),
		AxisSplitLineColor: drawing.ColorFromHex("E0E6F1"),
		BackgroundColor:    drawing.ColorWhite,
		TextColor:          drawing.ColorFromHex("464646"),
		SeriesColors:       seriesColors,
	}
}

// Ext implements Renderer
func (s *SVG) Ext() string { return "svg" }

// ContentType implements Renderer
func (s *SVG) ContentType() string { return "image/svg+xml" }

// RenderReturns implements Renderer
func (s *SVG) RenderReturns(w io.Writer, f series.Frame, labels Labels) error {
	data, err := returnsData(f, labels)
	if err != nil {
		return err
	}

	return s.render(w, data, themeReturns,
		charts.TitleTextOptionFunc(labels.ReturnsTitle, labels.ReturnsAxis),
		charts.LegendOptionFunc(charts.LegendOption{Data: data.names, Left: charts.PositionLeft, Top: "25"}),
	)
}

// RenderDrawdown implements Renderer. go-charts only fills a line area
// down to the axis minimum, so the drawdown is drawn with go-chart's SVG
// renderer, shading between the line and zero.
func (s *SVG) RenderDrawdown(w io.Writer, dd series.Series, labels Labels) error {
	graph, err := (&Static{Width: s.Width, Height: s.Height}).drawdownChart(dd, labels)
	if err != nil {
		return err
	}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render drawdown chart: %w", err)
	}
	return nil
}

func (s *SVG) render(w io.Writer, data chartData, theme string, extra ...charts.OptionFunc) error {
	lo, hi := data.valueRange(false)

	split := len(data.times) / 10
	if split < 1 {
		split = 1
	}

	options := []charts.OptionFunc{
		charts.SVGTypeOption(),
		charts.WidthOptionFunc(s.Width),
		charts.HeightOptionFunc(s.Height),
		charts.ThemeOptionFunc(theme),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        data.dateLabels(),
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: split,
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &lo, Max: &hi, DivideCount: 6}),
		func(opt *charts.ChartOption) {
			opt.SymbolShow = charts.FalseFlag()
		},
	}
	options = append(options, extra...)

	painter, err := charts.LineRender(data.lines, options...)
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := painter.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}

	_, err = w.Write(buf)
	return err
}

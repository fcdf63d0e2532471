package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wonny/perfstat/internal/series"
)

// Interactive renders self-contained HTML charts with go-echarts
type Interactive struct {
	Width  string
	Height string
}

// NewInteractive returns a 1200x600 HTML renderer
func NewInteractive() *Interactive {
	return &Interactive{Width: "1200px", Height: "600px"}
}

// Ext implements Renderer
func (i *Interactive) Ext() string { return "html" }

// ContentType implements Renderer
func (i *Interactive) ContentType() string { return "text/html; charset=utf-8" }

// RenderReturns implements Renderer
func (i *Interactive) RenderReturns(w io.Writer, f series.Frame, labels Labels) error {
	data, err := returnsData(f, labels)
	if err != nil {
		return err
	}

	line := i.newLine(labels.ReturnsTitle, labels.ReturnsAxis)
	line.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: "horizontal",
			Right:  "5%",
			Top:    "2%",
		}),
	)

	line.SetXAxis(data.dateLabels())
	for idx, values := range data.lines {
		color := "#" + data.colors[idx]
		line.AddSeries(data.names[idx], lineData(values),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: lineWidth}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render returns chart: %w", err)
	}
	return nil
}

// RenderDrawdown implements Renderer. The drawdown chart has no legend.
func (i *Interactive) RenderDrawdown(w io.Writer, dd series.Series, labels Labels) error {
	data, err := drawdownData(dd, labels)
	if err != nil {
		return err
	}

	line := i.newLine(labels.DrawdownTitle, labels.DrawdownAxis)
	line.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	line.SetXAxis(data.dateLabels())
	line.AddSeries(data.names[0], lineData(data.lines[0]),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#" + colorDrawdownLine, Width: lineWidth}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#" + colorDrawdownLine}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: "rgba(143, 188, 143, 0.5)"}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render drawdown chart: %w", err)
	}
	return nil
}

// newLine creates a line chart with the shared page, tooltip and zoom options
func (i *Interactive) newLine(title, axis string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     i.Width,
			Height:    i.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithYAxisOpts(opts.YAxis{Name: axis}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
	)
	return line
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	return items
}

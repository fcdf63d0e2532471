package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/wonny/perfstat/internal/estimate"
	"github.com/wonny/perfstat/internal/store"
)

// PrintTable prints every metric of a report as a table
func PrintTable(w io.Writer, r *estimate.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%s  %s ~ %s", r.Name, formatDate(r.StartDate), formatDate(r.EndDate)))
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	t.AppendRows([]table.Row{
		{"Observations", r.Observations},
		{"Total return", formatPct(r.TotalReturn)},
		{"Annual return", formatPct(r.AnnualReturn)},
		{"Annual volatility", formatPct(r.Volatility)},
		{"Sharpe ratio", FormatSharpe(r.Sharpe)},
		{"Sortino ratio", FormatSharpe(r.Sortino)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Max drawdown", formatPct(r.MaxDrawdown)},
		{"Peak", formatDate(r.PeakDate)},
		{"Trough", formatDate(r.MaxDrawdownDate)},
		{"Recovery", formatRecovery(r)},
		{"Duration (periods)", r.DrawdownDuration},
	})

	if b := r.Benchmark; b != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Benchmark", b.Name},
			{"Common dates", b.Overlap},
			{"Benchmark return", formatPct(b.TotalReturn)},
			{"Alpha", formatPct(b.Alpha)},
			{"Beta", fmt.Sprintf("%.3f", b.Beta)},
			{"Correlation", fmt.Sprintf("%.3f", b.Correlation)},
		})
	}

	t.Render()
}

// PrintRuns lists persisted runs, newest first
func PrintRuns(w io.Writer, runs []store.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Created", "Name", "Period", "Obs", "Sharpe", "Max DD", "Total", "Benchmark"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})

	for _, r := range runs {
		benchmark := r.BenchmarkIndex
		if benchmark == "" {
			benchmark = "-"
		}
		t.AppendRow(table.Row{
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Name,
			formatDate(r.FirstDate) + " ~ " + formatDate(r.LastDate),
			r.Observations,
			FormatSharpe(r.Sharpe),
			FormatMaxDrawdown(r.MaxDrawdown) + "%",
			formatPct(r.TotalReturn),
			benchmark,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "Runs", len(runs)})

	t.Render()
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatRecovery(r *estimate.Report) string {
	if !r.Recovered() {
		return "not recovered"
	}
	return formatDate(r.RecoveryDate)
}

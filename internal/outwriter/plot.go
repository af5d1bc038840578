package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/worktally/worktally/internal/contract"
	"github.com/worktally/worktally/schema"
)

const (
	chartHeight   = 8
	minChartWidth = 20
	barColor      = "39"
	emptyColor    = "240"
)

// PrintSeriesPlots draws one bar chart per series on stdout.
func PrintSeriesPlots(cfg *contract.Config, series ...schema.DailySeries) error {
	return WriteSeriesPlots(os.Stdout, cfg, series...)
}

// WriteSeriesPlots draws one bar chart per series, one bar per day. When a
// series has more days than the chart can fit, the most recent days are kept.
func WriteSeriesPlots(w io.Writer, cfg *contract.Config, series ...schema.DailySeries) error {
	title := painter(cfg, contract.HeaderColor)
	for _, s := range series {
		if _, err := fmt.Fprintln(w, title(s.Name)); err != nil {
			return err
		}
		if s.Empty() {
			if _, err := fmt.Fprintln(w, "No data available"); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, renderBars(s, terminalWidth(cfg))); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s to %s, total %.*f, max %.*f\n",
			s.Start().Format(schema.DayLayout), s.End().Format(schema.DayLayout),
			cfg.Precision, s.Total(), cfg.Precision, seriesMax(s)); err != nil {
			return err
		}
	}
	return nil
}

// PrintMergedPlot draws one bar chart per column of a merged table.
func PrintMergedPlot(table schema.MergedTable, cfg *contract.Config) error {
	return WriteSeriesPlots(os.Stdout, cfg, tableSeries(table)...)
}

// tableSeries splits a merged table back into one series per column.
func tableSeries(table schema.MergedTable) []schema.DailySeries {
	series := make([]schema.DailySeries, len(table.Columns))
	for i, c := range table.Columns {
		series[i].Name = table.Project + " " + c
		for _, r := range table.Rows {
			series[i].Points = append(series[i].Points, schema.DailyPoint{Day: r.Day, Value: r.Values[i], Present: true})
		}
	}
	return series
}

func renderBars(s schema.DailySeries, width int) string {
	chartWidth := max(width-2, minChartWidth)
	maxBars := chartWidth / 2 // bar width 1 plus gap 1

	points := s.Points
	if len(points) > maxBars {
		points = points[len(points)-maxBars:]
	}

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(barColor)).Background(lipgloss.Color(barColor))
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color(emptyColor)).Background(lipgloss.Color(emptyColor))
	for _, p := range points {
		style := bar
		if !p.Present {
			style = empty
		}
		bc.Push(barchart.BarData{
			Label:  "",
			Values: []barchart.BarValue{{Name: s.Name, Value: p.Value, Style: style}},
		})
	}
	bc.Draw()
	return bc.View()
}

func seriesMax(s schema.DailySeries) float64 {
	var m float64
	for _, p := range s.Points {
		if p.Present && p.Value > m {
			m = p.Value
		}
	}
	return m
}

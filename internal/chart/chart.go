// Package chart draws the expense-by-category bar chart for terminals.
package chart

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"hisab/internal/core"
)

const (
	DefaultWidth  = 60
	DefaultHeight = 14
)

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// Bars converts ordered category amounts into bar chart data. Category names
// become axis labels in the given order.
func Bars(items []core.CategoryAmount) []barchart.BarData {
	data := make([]barchart.BarData, 0, len(items))
	for _, it := range items {
		data = append(data, barchart.BarData{
			Label: it.Name,
			Values: []barchart.BarValue{{
				Name:  it.Name,
				Value: it.Amount.InexactFloat64(),
				Style: barStyle,
			}},
		})
	}
	return data
}

// RenderBars draws items as a vertical bar chart followed by a legend with
// the exact amounts. Non-positive sizes fall back to the defaults.
func RenderBars(title string, items []core.CategoryAmount, width, height int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}
	if len(items) == 0 {
		b.WriteString(labelStyle.Render("no expenses"))
		b.WriteString("\n")
		return b.String()
	}

	m := barchart.New(width, height,
		barchart.WithStyles(axisStyle, labelStyle),
		barchart.WithDataSet(Bars(items)),
	)
	m.Draw()
	b.WriteString(m.View())
	b.WriteString("\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(it.Name+":"), core.FormatAmount(it.Amount))
	}
	return b.String()
}

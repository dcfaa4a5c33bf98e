// Package export writes report documents: PDF and XLSX files into an export
// directory, and rows into a Google Sheets tab.
package export

import (
	"fmt"
	"strings"
	"time"

	"hisab/internal/core"
	"hisab/internal/report"
)

const (
	SummaryTitle      = "Category Summary"
	TransactionsTitle = "Transactions by Category"
	SheetName         = "Report"
	displayLayout     = "02/01/2006_15:04:05"
)

// DisplayName is the user-facing name of an export, dd/MM/yyyy_HH:mm:ss.ext.
func DisplayName(now time.Time, ext string) string {
	return now.Format(displayLayout) + "." + strings.TrimPrefix(ext, ".")
}

// FileName is DisplayName with the characters filesystems reject replaced.
func FileName(now time.Time, ext string) string {
	return strings.NewReplacer("/", "-", ":", "-").Replace(DisplayName(now, ext))
}

// Line is one line of the PDF layout. Level 0 lines are headings, level 1
// entries under them and level 2 the line items of a category.
type Line struct {
	Text  string
	Level int
}

// PDFLines lays out the summary then the per-category transaction listing.
func PDFLines(r report.Report) []Line {
	lines := []Line{{Text: SummaryTitle}}
	for _, s := range r.Summary {
		lines = append(lines, Line{Text: fmt.Sprintf("%s: %s", s.Name, core.FormatAmount(s.Amount)), Level: 1})
	}
	lines = append(lines, Line{Text: TransactionsTitle})
	for _, c := range r.TransactionsByCategory {
		lines = append(lines, Line{Text: c.Name, Level: 1})
		for _, tx := range c.Lines {
			lines = append(lines, Line{
				Text:  fmt.Sprintf("%s - %s - %s", tx.Name, tx.Date, core.FormatAmount(tx.Amount)),
				Level: 2,
			})
		}
	}
	return lines
}

// SheetRows lays out the spreadsheet: a summary section of [category, total]
// rows, then one block of [name, date, amount] rows per category. Blank rows
// separate the sections.
func SheetRows(r report.Report) [][]any {
	rows := [][]any{
		{SummaryTitle},
		{"Category", "Total"},
	}
	for _, s := range r.Summary {
		rows = append(rows, []any{s.Name, s.Amount.Round(2).InexactFloat64()})
	}
	rows = append(rows, []any{}, []any{TransactionsTitle})
	for _, c := range r.TransactionsByCategory {
		rows = append(rows, []any{c.Name}, []any{"Name", "Date", "Amount"})
		for _, tx := range c.Lines {
			rows = append(rows, []any{tx.Name, tx.Date, tx.Amount.Round(2).InexactFloat64()})
		}
		rows = append(rows, []any{})
	}
	return rows
}

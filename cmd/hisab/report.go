package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hisab/internal/chart"
	"hisab/internal/core"
	"hisab/internal/export"
	"hisab/internal/report"
	"hisab/internal/services"
)

// configuredFormats is the --export value when the flag is given bare.
const configuredFormats = "configured"

func reportCmd() *cobra.Command {
	var (
		f         filterFlags
		showChart bool
		formats   string
		queue     bool
		width     int
		height    int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show per-category totals, optionally charted or exported",
		Long: `Aggregate transactions per category at the catalog's default prices.

--export writes the report in the configured export_formats; --export=pdf,xlsx
picks formats (pdf, xlsx, sheets). With --queue the export is handed to
hisab-worker instead of running here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			df, err := f.filter()
			if err != nil {
				return err
			}
			exporting := cmd.Flags().Changed("export")
			var fmts []export.Format
			if exporting && formats != configuredFormats {
				if fmts, err = export.ParseFormats(formats); err != nil {
					return err
				}
			}

			app, err := openApp(cmd, queue)
			if err != nil {
				return err
			}
			defer app.Close()

			q := services.ReportQuery{Filter: df, Query: f.query}
			out := cmd.OutOrStdout()

			if exporting {
				if queue {
					msg, err := app.Ledger.RequestExport(cmd.Context(), fmts, q)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, successStyle.Render("✓ Export queued: "+msg.ID))
					return nil
				}
				results, err := app.Ledger.Export(cmd.Context(), fmts, q)
				for _, r := range results {
					fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ %s %s", r.DisplayName, subtleStyle.Render(r.Location))))
				}
				return err
			}

			r := app.Ledger.Report(q)
			if showChart {
				fmt.Fprintln(out, chart.RenderBars("Expenses by category", r.ExpenseByCategory, width, height))
				return nil
			}
			return writeReport(out, r)
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&showChart, "chart", false, "draw expenses per category as a bar chart")
	cmd.Flags().IntVar(&width, "width", chart.DefaultWidth, "chart width")
	cmd.Flags().IntVar(&height, "height", chart.DefaultHeight, "chart height")
	cmd.Flags().StringVar(&formats, "export", "", "export the report; optionally =pdf,xlsx,sheets")
	cmd.Flags().Lookup("export").NoOptDefVal = configuredFormats
	cmd.Flags().BoolVar(&queue, "queue", false, "queue the export for hisab-worker")
	return cmd
}

func writeReport(w io.Writer, r report.Report) error {
	fmt.Fprintln(w, titleStyle.Render("Summary"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", headerStyle.Render("Category"), headerStyle.Render("Net"))
	for _, s := range r.Summary {
		amount := core.FormatAmount(s.Amount)
		if s.Amount.IsNegative() {
			amount = expenseStyle.Render(amount)
		} else {
			amount = incomeStyle.Render(amount)
		}
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, amount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Net:"), core.FormatAmount(r.Net()))
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Total expense:"), core.FormatAmount(r.TotalExpense()))
	return nil
}

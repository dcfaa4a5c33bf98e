package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hisab/internal/core"
	"hisab/internal/history"
)

// filterFlags selects a period and a search text, shared by history and report.
type filterFlags struct {
	period string
	date   string
	query  string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.period, "period", "p", "all-time", "all-time, today, this-week, this-month, this-year or custom")
	flags.StringVar(&f.date, "date", "", "day for --period custom (YYYY-MM-DD)")
	flags.StringVarP(&f.query, "query", "q", "", "only transactions whose name, description or category contains this text")
}

func (f *filterFlags) filter() (history.DateFilter, error) {
	p, err := history.ParsePeriod(f.period)
	if err != nil {
		return history.DateFilter{}, err
	}
	if p == history.CustomDate {
		if f.date == "" {
			return history.DateFilter{}, fmt.Errorf("--date is required with --period custom")
		}
		if _, err := core.ParseDate(f.date); err != nil {
			return history.DateFilter{}, err
		}
	}
	return history.DateFilter{Period: p, Custom: f.date}, nil
}

func historyCmd() *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show transactions grouped by day, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			df, err := f.filter()
			if err != nil {
				return err
			}
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			groups := app.Ledger.History(df, f.query)
			if len(groups) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("No transactions match."))
				return nil
			}
			for _, g := range groups {
				fmt.Fprintln(out, titleStyle.Render(g.Date))
				if err := writeTransactions(out, g.Transactions); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

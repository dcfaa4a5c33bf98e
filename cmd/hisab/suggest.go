package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hisab/internal/entry"
)

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <text>...",
		Short: "Suggest categories for a transaction name or description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			cats := app.Ledger.Suggest(strings.Join(args, " "))
			if len(cats) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("No suggestions."))
				return nil
			}
			return writeCategories(out, cats)
		},
	}
}

func amountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "amount <Name[=qty]>...",
		Short: "Compute the amount of a category selection from default prices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			picks, err := parseSelections(args)
			if err != nil {
				return err
			}
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			total, err := app.Ledger.Amount(picks)
			if err != nil {
				return err
			}
			text := entry.AmountText(total)
			if text == "" {
				fmt.Fprintln(cmd.OutOrStdout(), warningStyle.Render("No default prices apply; type the amount."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

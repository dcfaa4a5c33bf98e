package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hisab/internal/core"
	"hisab/internal/entry"
	"hisab/internal/services"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Manage transactions",
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(editTxCmd())
	cmd.AddCommand(showTxCmd())
	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(removeTxCmd())
	return cmd
}

// entryFlags fills an entry session from the command line. Only flags the
// user set are replayed, so edits keep every other recorded value.
type entryFlags struct {
	name        string
	description string
	mobile      string
	txType      string
	amount      string
	categories  []string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.name, "name", "n", "", "transaction name")
	flags.StringVarP(&f.description, "description", "d", "", "free-text description")
	flags.StringVar(&f.mobile, "mobile", "", "mobile number")
	flags.StringVarP(&f.txType, "type", "t", "expense", "expense or income")
	flags.StringVarP(&f.amount, "amount", "a", "", "amount; computed from category prices when omitted")
	flags.StringArrayVarP(&f.categories, "category", "c", nil, "category as Name or Name=qty (repeatable)")
}

func (f *entryFlags) apply(cmd *cobra.Command, sess *entry.Session) error {
	flags := cmd.Flags()

	if flags.Changed("type") || !sess.Editing() {
		t, err := core.ParseTransactionType(f.txType)
		if err != nil {
			return err
		}
		sess.SetType(t)
	}

	if flags.Changed("category") {
		picks, err := parseSelections(f.categories)
		if err != nil {
			return err
		}
		for _, c := range sess.Selected() {
			if !picked(picks, c.Name) {
				if err := sess.Deselect(c.Name); err != nil {
					return err
				}
			}
		}
		for _, p := range picks {
			err := sess.Select(p.Name)
			if errors.Is(err, entry.ErrUnknownCategory) {
				err = sess.AddCategory(core.Category{Name: p.Name})
			}
			if err != nil {
				return err
			}
			if err := sess.SetQuantity(p.Name, p.Quantity); err != nil {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
		}
	}

	if flags.Changed("name") {
		sess.SetName(f.name)
	}
	if flags.Changed("description") {
		sess.SetDescription(f.description)
	}
	if flags.Changed("mobile") {
		sess.SetMobileNumber(f.mobile)
	}
	if flags.Changed("amount") {
		sess.EditAmount(f.amount)
	}
	return nil
}

func picked(picks []services.Selection, name string) bool {
	for _, p := range picks {
		if core.NamesEqual(p.Name, name) {
			return true
		}
	}
	return false
}

func addTxCmd() *cobra.Command {
	var f entryFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a transaction. Categories named with --category that are not in the
catalog are created. When no category is given, the categories suggested by
the name and description are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			sess := app.Ledger.NewEntry()
			if err := f.apply(cmd, sess); err != nil {
				return err
			}
			tx, err := app.Ledger.Save(cmd.Context(), sess)
			if err != nil {
				return explainEntryError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Recorded transaction #%d", tx.ID)))
			writeTransaction(out, tx)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func editTxCmd() *cobra.Command {
	var f entryFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction",
		Long: `Edit a recorded transaction. The recorded amount is kept until the category
selection changes; pass --amount "" to recompute it from category prices.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTxID(args[0])
			if err != nil {
				return err
			}

			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			sess, err := app.Ledger.EditEntry(id)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, sess); err != nil {
				return err
			}
			tx, err := app.Ledger.Save(cmd.Context(), sess)
			if err != nil {
				return explainEntryError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Updated transaction #%d", tx.ID)))
			writeTransaction(out, tx)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func showTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTxID(args[0])
			if err != nil {
				return err
			}
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			tx, err := app.Ledger.Transaction(id)
			if err != nil {
				return err
			}
			writeTransaction(cmd.OutOrStdout(), tx)
			return nil
		},
	}
}

func listTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every transaction in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			txs := app.Ledger.Transactions()
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("No transactions yet. Use 'hisab tx add' to record one."))
				return nil
			}
			return writeTransactions(cmd.OutOrStdout(), txs)
		},
	}
}

func removeTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTxID(args[0])
			if err != nil {
				return err
			}
			app, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			tx, err := app.Ledger.RemoveTransaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Deleted transaction #%d %q", tx.ID, tx.Name)))
			return nil
		},
	}
}

func parseTxID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return id, nil
}

// explainEntryError lists form messages one per line.
func explainEntryError(err error) error {
	var fe entry.FieldErrors
	if !errors.As(err, &fe) {
		return err
	}
	var lines []string
	for _, p := range []struct{ flag, msg string }{
		{"--name", fe.Name}, {"--amount", fe.Amount}, {"--category", fe.Category},
	} {
		if p.msg != "" {
			lines = append(lines, fmt.Sprintf("  %s: %s", p.flag, p.msg))
		}
	}
	return fmt.Errorf("transaction not saved\n%s", strings.Join(lines, "\n"))
}

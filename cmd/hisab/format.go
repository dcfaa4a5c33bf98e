package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"hisab/internal/core"
	"hisab/internal/services"
)

// parseSelections reads "Name" or "Name=qty" arguments.
func parseSelections(args []string) ([]services.Selection, error) {
	out := make([]services.Selection, 0, len(args))
	for _, arg := range args {
		name, qty := arg, 1
		if i := strings.LastIndex(arg, "="); i >= 0 {
			n, err := strconv.Atoi(strings.TrimSpace(arg[i+1:]))
			if err != nil {
				return nil, fmt.Errorf("invalid quantity in %q", arg)
			}
			name, qty = arg[:i], n
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty category name in %q", arg)
		}
		out = append(out, services.Selection{Name: name, Quantity: qty})
	}
	return out, nil
}

func categoryList(tx core.Transaction) string {
	parts := make([]string, len(tx.Categories))
	for i, name := range tx.Categories {
		if q := tx.Quantity(name); q > 1 {
			parts[i] = fmt.Sprintf("%s x%d", name, q)
		} else {
			parts[i] = name
		}
	}
	return strings.Join(parts, ", ")
}

func styledAmount(tx core.Transaction) string {
	s := core.FormatAmount(tx.Amount)
	if tx.Type == core.Income {
		return incomeStyle.Render("+" + s)
	}
	return expenseStyle.Render("-" + s)
}

func writeTransactions(w io.Writer, txs []core.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Date"),
		headerStyle.Render("Name"),
		headerStyle.Render("Amount"),
		headerStyle.Render("Categories"))
	for _, tx := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", tx.ID, tx.Date, tx.Name, styledAmount(tx), categoryList(tx))
	}
	return tw.Flush()
}

func writeTransaction(w io.Writer, tx core.Transaction) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("#%d %s", tx.ID, tx.Name)))
	fmt.Fprintf(w, "  Date:        %s\n", tx.Date)
	fmt.Fprintf(w, "  Type:        %s\n", tx.Type)
	fmt.Fprintf(w, "  Amount:      %s\n", styledAmount(tx))
	fmt.Fprintf(w, "  Categories:  %s\n", categoryList(tx))
	if d := core.Deref(tx.Description); d != "" {
		fmt.Fprintf(w, "  Description: %s\n", d)
	}
	if m := core.Deref(tx.MobileNumber); m != "" {
		fmt.Fprintf(w, "  Mobile:      %s\n", m)
	}
}

func writeCategories(w io.Writer, cats []core.Category) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", headerStyle.Render("Name"), headerStyle.Render("Default price"))
	for _, c := range cats {
		price := subtleStyle.Render("(none)")
		if c.DefaultPrice != nil {
			price = core.FormatAmount(*c.DefaultPrice)
		}
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, price)
	}
	return tw.Flush()
}

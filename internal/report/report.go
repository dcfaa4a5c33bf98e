// Package report aggregates transactions into per-category totals priced at
// the catalog's default prices.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// Report is the aggregated view of a set of transactions.
//
// Summary and TransactionsByCategory are sorted by category name.
// ExpenseByCategory keeps the order in which categories were first seen on
// an expense, which is the order chart bars are drawn in.
type Report struct {
	Summary                []core.CategoryAmount
	ExpenseByCategory      []core.CategoryAmount
	TransactionsByCategory []core.CategoryLines
}

// Aggregate prices every (transaction, category) pair at the category's
// default price times its quantity. Income adds to the category summary and
// expense subtracts. Categories missing from the catalog are priced at zero.
// The recorded transaction amount is not used. Inputs are not modified.
func Aggregate(txs []core.Transaction, categories []core.Category) Report {
	prices := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, dup := prices[key]; !dup {
			prices[key] = c.UnitPrice()
		}
	}

	summary := map[string]decimal.Decimal{}
	lines := map[string][]core.Transaction{}
	expense := map[string]decimal.Decimal{}
	var expenseOrder []string

	for _, tx := range txs {
		for _, name := range tx.Categories {
			unit := prices[strings.ToLower(strings.TrimSpace(name))]
			line := unit.Mul(decimal.NewFromInt(int64(tx.Quantity(name))))

			switch tx.Type {
			case core.Income:
				summary[name] = summary[name].Add(line)
			case core.Expense:
				summary[name] = summary[name].Sub(line)
				if _, seen := expense[name]; !seen {
					expenseOrder = append(expenseOrder, name)
				}
				expense[name] = expense[name].Add(line)
			default:
				continue
			}

			item := tx.Clone()
			item.Amount = line
			lines[name] = append(lines[name], item)
		}
	}

	var r Report
	for _, name := range sortedKeys(summary) {
		r.Summary = append(r.Summary, core.CategoryAmount{Name: name, Amount: summary[name]})
		r.TransactionsByCategory = append(r.TransactionsByCategory, core.CategoryLines{Name: name, Lines: lines[name]})
	}
	for _, name := range expenseOrder {
		r.ExpenseByCategory = append(r.ExpenseByCategory, core.CategoryAmount{Name: name, Amount: expense[name]})
	}
	return r
}

// Net is the sum of the category summary.
func (r Report) Net() decimal.Decimal {
	total := decimal.Zero
	for _, s := range r.Summary {
		total = total.Add(s.Amount)
	}
	return total
}

// TotalExpense is the sum of ExpenseByCategory.
func (r Report) TotalExpense() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.ExpenseByCategory {
		total = total.Add(e.Amount)
	}
	return total
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package entry

import (
	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// ComputeAmount sums default price times quantity over the selected
// categories. Missing prices count as zero and missing quantities as one.
func ComputeAmount(selected []core.Category, quantities map[string]int) decimal.Decimal {
	total := decimal.Zero
	for _, cat := range selected {
		qty := 1
		if q, ok := quantities[cat.Name]; ok && q > 0 {
			qty = q
		}
		total = total.Add(cat.UnitPrice().Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// AmountText renders a computed amount for the entry field: blank when zero,
// meaning the user has to type one.
func AmountText(d decimal.Decimal) string {
	if !d.IsPositive() {
		return ""
	}
	return core.FormatAmount(d)
}

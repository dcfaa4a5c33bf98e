package catalog

import "hisab/internal/core"

// Default returns the catalog used when nothing has been persisted yet.
func Default() *Catalog {
	return New([]core.Category{
		{Name: "Food & Dining", DefaultPrice: core.PriceOf("10")},
		{Name: "Transportation", DefaultPrice: core.PriceOf("5")},
		{Name: "Shopping", DefaultPrice: core.PriceOf("20")},
		{Name: "Entertainment", DefaultPrice: core.PriceOf("15")},
		{Name: "Bills & Utilities", DefaultPrice: core.PriceOf("50")},
		{Name: "Health & Fitness", DefaultPrice: core.PriceOf("30")},
		{Name: "Education", DefaultPrice: core.PriceOf("25")},
		{Name: "Salary"},
		{Name: "Gift", DefaultPrice: core.PriceOf("10")},
		{Name: "Other"},
	})
}

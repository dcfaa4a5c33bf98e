package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// CategoryLines lists the per-category line items of a report.
type CategoryLines struct {
	Name  string
	Lines []Transaction // Amount holds the line amount, not the recorded one
}

package http

import (
	"encoding/json"
	"errors"
	"strings"

	"hisab/internal/core"
	"hisab/internal/entry"
	"hisab/internal/history"
	"hisab/internal/report"
	"hisab/internal/storage"
)

// transactionInput is the body of POST and PUT /transactions. Absent fields
// keep the session's current value.
type transactionInput struct {
	Name               *string        `json:"name"`
	Description        *string        `json:"description"`
	MobileNumber       *string        `json:"mobileNumber"`
	Type               *string        `json:"type"`
	Amount             *json.Number   `json:"amount"`
	Categories         []string       `json:"categories"`
	CategoryQuantities map[string]int `json:"categoryQuantities"`
}

// apply replays the input onto an entry session the way a user would fill
// the form: categories first, then text fields, then a typed amount.
func (in transactionInput) apply(sess *entry.Session) error {
	if in.Type != nil {
		t, err := core.ParseTransactionType(*in.Type)
		if err != nil {
			return err
		}
		sess.SetType(t)
	}

	if in.Categories != nil {
		want := make(map[string]bool, len(in.Categories))
		for _, name := range in.Categories {
			want[strings.ToLower(strings.TrimSpace(name))] = true
		}
		for _, c := range sess.Selected() {
			if !want[strings.ToLower(c.Name)] {
				if err := sess.Deselect(c.Name); err != nil {
					return err
				}
			}
		}
		for _, name := range in.Categories {
			name = sanitizeInput(name)
			err := sess.Select(name)
			if errors.Is(err, entry.ErrUnknownCategory) {
				err = sess.AddCategory(core.Category{Name: name})
			}
			if err != nil {
				return err
			}
		}
	}
	for name, qty := range in.CategoryQuantities {
		if err := sess.SetQuantity(name, qty); err != nil {
			return err
		}
	}

	if in.Name != nil {
		sess.SetName(sanitizeInput(*in.Name))
	}
	if in.Description != nil {
		sess.SetDescription(sanitizeInput(*in.Description))
	}
	if in.MobileNumber != nil {
		sess.SetMobileNumber(sanitizeInput(*in.MobileNumber))
	}
	if in.Amount != nil {
		sess.EditAmount(in.Amount.String())
	}
	return nil
}

type categoryInput struct {
	Name         string       `json:"name"`
	ImageURI     *string      `json:"imageUri"`
	DefaultPrice *json.Number `json:"defaultPrice"`
}

func (in categoryInput) category() (core.Category, error) {
	c := core.Category{Name: sanitizeInput(in.Name), ImageURI: in.ImageURI}
	if in.DefaultPrice != nil {
		p, err := core.ParsePrice(in.DefaultPrice.String())
		if err != nil {
			return core.Category{}, err
		}
		c.DefaultPrice = p
	}
	return c, c.Validate()
}

func transactionRecords(txs []core.Transaction) []storage.TransactionRecord {
	out := make([]storage.TransactionRecord, len(txs))
	for i, tx := range txs {
		out[i] = storage.TransactionRecordOf(tx)
	}
	return out
}

func categoryRecords(cats []core.Category) []storage.CategoryRecord {
	out := make([]storage.CategoryRecord, len(cats))
	for i, c := range cats {
		out[i] = storage.CategoryRecordOf(c)
	}
	return out
}

type groupDTO struct {
	Date         string                      `json:"date"`
	Transactions []storage.TransactionRecord `json:"transactions"`
}

func groupDTOs(groups []history.Group) []groupDTO {
	out := make([]groupDTO, len(groups))
	for i, g := range groups {
		out[i] = groupDTO{Date: g.Date, Transactions: transactionRecords(g.Transactions)}
	}
	return out
}

type amountDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type linesDTO struct {
	Name  string                      `json:"name"`
	Lines []storage.TransactionRecord `json:"lines"`
}

type reportDTO struct {
	Summary                []amountDTO `json:"summary"`
	ExpenseByCategory      []amountDTO `json:"expenseByCategory"`
	TransactionsByCategory []linesDTO  `json:"transactionsByCategory"`
	Net                    float64     `json:"net"`
	TotalExpense           float64     `json:"totalExpense"`
}

func amountDTOs(items []core.CategoryAmount) []amountDTO {
	out := make([]amountDTO, len(items))
	for i, it := range items {
		out[i] = amountDTO{Name: it.Name, Amount: it.Amount.Round(2).InexactFloat64()}
	}
	return out
}

func newReportDTO(r report.Report) reportDTO {
	dto := reportDTO{
		Summary:                amountDTOs(r.Summary),
		ExpenseByCategory:      amountDTOs(r.ExpenseByCategory),
		TransactionsByCategory: make([]linesDTO, len(r.TransactionsByCategory)),
		Net:                    r.Net().Round(2).InexactFloat64(),
		TotalExpense:           r.TotalExpense().Round(2).InexactFloat64(),
	}
	for i, l := range r.TransactionsByCategory {
		dto.TransactionsByCategory[i] = linesDTO{Name: l.Name, Lines: transactionRecords(l.Lines)}
	}
	return dto
}

package storage

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// TransactionRecord is the stored JSON shape of a transaction. The HTTP API
// speaks the same shape.
type TransactionRecord struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	MobileNumber       *string        `json:"mobileNumber"`
	Amount             float64        `json:"amount"`
	Type               string         `json:"type"`
	Categories         []string       `json:"categories"`
	CategoryQuantities map[string]int `json:"categoryQuantities"`
	Description        *string        `json:"description"`
	Date               string         `json:"date"`
	CategoryImageURIs  []*string      `json:"categoryImageUris"`
}

type CategoryRecord struct {
	Name         string   `json:"name"`
	ImageURI     *string  `json:"imageUri"`
	DefaultPrice *float64 `json:"defaultPrice"`
}

// TransactionRecordOf converts tx, writing empty collections instead of null.
func TransactionRecordOf(tx core.Transaction) TransactionRecord {
	q := tx.CategoryQuantities
	if q == nil {
		q = map[string]int{}
	}
	cats := tx.Categories
	if cats == nil {
		cats = []string{}
	}
	uris := tx.CategoryImageURIs
	if uris == nil {
		uris = []*string{}
	}
	return TransactionRecord{
		ID:                 tx.ID,
		Name:               tx.Name,
		MobileNumber:       tx.MobileNumber,
		Amount:             tx.Amount.InexactFloat64(),
		Type:               string(tx.Type),
		Categories:         cats,
		CategoryQuantities: q,
		Description:        tx.Description,
		Date:               tx.Date,
		CategoryImageURIs:  uris,
	}
}

// Transaction converts the record back, rejecting unknown types.
func (r TransactionRecord) Transaction() (core.Transaction, error) {
	t, err := core.ParseTransactionType(r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:                 r.ID,
		Name:               r.Name,
		MobileNumber:       r.MobileNumber,
		Amount:             decimal.NewFromFloat(r.Amount),
		Type:               t,
		Categories:         r.Categories,
		CategoryQuantities: r.CategoryQuantities,
		Description:        r.Description,
		Date:               r.Date,
		CategoryImageURIs:  r.CategoryImageURIs,
	}, nil
}

func CategoryRecordOf(c core.Category) CategoryRecord {
	rec := CategoryRecord{Name: c.Name, ImageURI: c.ImageURI}
	if c.DefaultPrice != nil {
		f := c.DefaultPrice.InexactFloat64()
		rec.DefaultPrice = &f
	}
	return rec
}

func (r CategoryRecord) Category() core.Category {
	c := core.Category{Name: r.Name, ImageURI: r.ImageURI}
	if r.DefaultPrice != nil {
		d := decimal.NewFromFloat(*r.DefaultPrice)
		c.DefaultPrice = &d
	}
	return c
}

func EncodeTransactions(txs []core.Transaction) (string, error) {
	recs := make([]TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		recs = append(recs, TransactionRecordOf(tx))
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("encode transactions: %w", err)
	}
	return string(b), nil
}

// DecodeTransactions parses a stored blob. Any structural problem, including
// an unknown transaction type, makes the whole blob malformed.
func DecodeTransactions(blob string) ([]core.Transaction, error) {
	var recs []TransactionRecord
	if err := json.Unmarshal([]byte(blob), &recs); err != nil {
		return nil, fmt.Errorf("%w: transactions: %v", ErrMalformed, err)
	}
	out := make([]core.Transaction, 0, len(recs))
	for _, r := range recs {
		tx, err := r.Transaction()
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d: type %q", ErrMalformed, r.ID, r.Type)
		}
		out = append(out, tx)
	}
	return out, nil
}

func EncodeCategories(cats []core.Category) (string, error) {
	recs := make([]CategoryRecord, 0, len(cats))
	for _, c := range cats {
		recs = append(recs, CategoryRecordOf(c))
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(b), nil
}

func DecodeCategories(blob string) ([]core.Category, error) {
	var recs []CategoryRecord
	if err := json.Unmarshal([]byte(blob), &recs); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrMalformed, err)
	}
	out := make([]core.Category, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Category())
	}
	return out, nil
}

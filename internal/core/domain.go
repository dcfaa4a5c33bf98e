package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format every transaction date is stored in.
const DateLayout = "2006-01-02"

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

type (
	TransactionType string

	Category struct {
		Name         string
		ImageURI     *string          // opaque reference, never interpreted
		DefaultPrice *decimal.Decimal // nil means no auto price contribution
	}

	Transaction struct {
		ID                 int64
		Name               string
		MobileNumber       *string
		Description        *string
		Amount             decimal.Decimal
		Type               TransactionType
		Categories         []string
		CategoryQuantities map[string]int
		Date               string // YYYY-MM-DD
		CategoryImageURIs  []*string
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrNoCategory      = errors.New("no category selected")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrNegativePrice   = errors.New("negative default price")
)

// ParseTransactionType accepts the stored names case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

func (t TransactionType) Validate() error {
	if t != Income && t != Expense {
		return ErrInvalidType
	}
	return nil
}

// FormatDate returns the calendar day of t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as a local calendar day.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// NamesEqual compares category names the way the catalog identifies them.
func NamesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.DefaultPrice != nil && c.DefaultPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// UnitPrice returns the default price, or zero when none is configured.
func (c Category) UnitPrice() decimal.Decimal {
	if c.DefaultPrice == nil {
		return decimal.Zero
	}
	return *c.DefaultPrice
}

// Quantity returns the quantity recorded for name, defaulting to 1.
func (t Transaction) Quantity(name string) int {
	if q, ok := t.CategoryQuantities[name]; ok && q > 0 {
		return q
	}
	return 1
}

// HasCategory reports whether name is one of the transaction's categories.
func (t Transaction) HasCategory(name string) bool {
	for _, c := range t.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// PruneQuantities drops quantities for categories the transaction no longer references.
func (t *Transaction) PruneQuantities() {
	if len(t.CategoryQuantities) == 0 {
		return
	}
	kept := make(map[string]int, len(t.CategoryQuantities))
	for name, q := range t.CategoryQuantities {
		if t.HasCategory(name) {
			kept[name] = q
		}
	}
	t.CategoryQuantities = kept
}

// Clone returns a deep copy so callers cannot alias store-owned slices and maps.
func (t Transaction) Clone() Transaction {
	out := t
	out.Categories = append([]string(nil), t.Categories...)
	if t.CategoryQuantities != nil {
		out.CategoryQuantities = make(map[string]int, len(t.CategoryQuantities))
		for k, v := range t.CategoryQuantities {
			out.CategoryQuantities[k] = v
		}
	}
	if t.CategoryImageURIs != nil {
		out.CategoryImageURIs = append([]*string(nil), t.CategoryImageURIs...)
	}
	return out
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if len(t.Categories) == 0 {
		return ErrNoCategory
	}
	for name, q := range t.CategoryQuantities {
		if q < 1 {
			return ErrInvalidQuantity
		}
		if !t.HasCategory(name) {
			return errors.New("quantity for unknown category: " + name)
		}
	}
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	return nil
}

// StringPtr returns nil for blank input and a trimmed copy otherwise.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

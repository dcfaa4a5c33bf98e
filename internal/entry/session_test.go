package entry

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hisab/internal/catalog"
	"hisab/internal/core"
	"hisab/internal/suggest"
)

var fixedNow = time.Date(2025, 1, 5, 9, 30, 0, 0, time.Local)

func newAddSession() *Session {
	return NewSession(catalog.Default().All(), suggest.DefaultKeywords(), fixedNow)
}

func selectedNames(s *Session) []string {
	var out []string
	for _, c := range s.Selected() {
		out = append(out, c.Name)
	}
	return out
}

func TestSuggestionsAdoptedWhenNothingSelected(t *testing.T) {
	s := newAddSession()
	s.SetName("Morning coffee")

	assert.Equal(t, []string{"Food & Dining"}, selectedNames(s))
	assert.Equal(t, map[string]int{"Food & Dining": 1}, s.Quantities())
	assert.Equal(t, "10.00", s.Amount())
	assert.Equal(t, Auto, s.Mode())

	s.SetDescription("and a bus ticket")
	assert.Len(t, s.Suggested(), 3)
	assert.Equal(t, []string{"Food & Dining"}, selectedNames(s), "existing selection is kept")
}

func TestManualOverrideIsForfeitedBySelectionChange(t *testing.T) {
	s := newAddSession()
	require.NoError(t, s.Select("food & dining"))
	assert.Equal(t, "10.00", s.Amount())

	s.EditAmount("12,50")
	assert.Equal(t, Manual, s.Mode())
	assert.Equal(t, "12,50", s.Amount())

	require.NoError(t, s.SetQuantity("Food & Dining", 3))
	assert.Equal(t, Auto, s.Mode())
	assert.Equal(t, "30.00", s.Amount())

	s.EditAmount("99")
	require.NoError(t, s.Toggle("Transportation"))
	assert.Equal(t, Auto, s.Mode())
	assert.Equal(t, "35.00", s.Amount())

	s.EditAmount("  ")
	assert.Equal(t, Auto, s.Mode())
}

func TestZeroTotalLeavesAmountBlank(t *testing.T) {
	s := newAddSession()
	require.NoError(t, s.Select("Salary"))
	assert.Equal(t, "", s.Amount())
}

func TestSetQuantityErrors(t *testing.T) {
	s := newAddSession()
	assert.ErrorIs(t, s.SetQuantity("Food & Dining", 0), core.ErrInvalidQuantity)
	assert.ErrorIs(t, s.SetQuantity("Food & Dining", 2), ErrUnknownCategory)
	assert.ErrorIs(t, s.Select("Pets"), ErrUnknownCategory)
}

func TestValidate(t *testing.T) {
	s := newAddSession()
	err := s.Validate()
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, MsgNameRequired, fe.Name)
	assert.Equal(t, MsgAmountRequired, fe.Amount)
	assert.Equal(t, MsgCategoryRequired, fe.Category)

	s.SetName("Lunch")
	s.EditAmount("abc")
	require.True(t, errors.As(s.Validate(), &fe))
	assert.Equal(t, MsgAmountInvalid, fe.Amount)
	assert.Empty(t, fe.Name)

	s.EditAmount("-3")
	require.True(t, errors.As(s.Validate(), &fe))
	assert.Equal(t, MsgAmountInvalid, fe.Amount)

	s.EditAmount("8")
	s.SetCategoryInput("Pets")
	assert.NoError(t, s.Validate())
}

func TestSubmitAddFlow(t *testing.T) {
	s := newAddSession()
	s.SetName("Lunch")
	require.NoError(t, s.Select("Food & Dining"))
	require.NoError(t, s.SetQuantity("Food & Dining", 2))
	s.SetMobileNumber("555-0100")
	s.SetCategoryInput("pets")
	require.NoError(t, s.AddCategory(core.Category{Name: " Snacks ", DefaultPrice: core.PriceOf("3")}))

	sub, err := s.Submit()
	require.NoError(t, err)
	tx := sub.Transaction
	assert.Equal(t, int64(0), tx.ID)
	assert.Equal(t, "2025-01-05", tx.Date)
	assert.Equal(t, core.Expense, tx.Type)
	assert.Equal(t, "Lunch", tx.Name)
	assert.Equal(t, "555-0100", core.Deref(tx.MobileNumber))
	assert.Nil(t, tx.Description)
	assert.Equal(t, []string{"Food & Dining", "Snacks"}, tx.Categories)
	assert.Equal(t, map[string]int{"Food & Dining": 2, "Snacks": 1}, tx.CategoryQuantities)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(23)))
	assert.Len(t, tx.CategoryImageURIs, 2)
	require.Len(t, sub.NewCategories, 1)
	assert.Equal(t, "Snacks", sub.NewCategories[0].Name)
	require.NoError(t, tx.Validate())
}

func TestSubmitCreatesTypedCategory(t *testing.T) {
	s := newAddSession()
	s.SetName("Vet visit")
	s.EditAmount("40")
	s.SetType(core.Expense)
	s.SetCategoryInput("Pets")

	sub, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, []string{"Pets"}, sub.Transaction.Categories)
	assert.Equal(t, 1, sub.Transaction.CategoryQuantities["Pets"])
	require.Len(t, sub.NewCategories, 1)
	assert.Equal(t, "Pets", sub.NewCategories[0].Name)

	known := newAddSession()
	known.SetName("Paycheck")
	known.EditAmount("1000")
	known.SetType(core.Income)
	known.SetCategoryInput("salary")
	sub, err = known.Submit()
	require.NoError(t, err)
	assert.Equal(t, []string{"Salary"}, sub.Transaction.Categories)
	assert.Empty(t, sub.NewCategories)
}

func TestEditSessionKeepsRecordedAmountUntilChange(t *testing.T) {
	ghost := "ghost.png"
	orig := core.Transaction{
		ID:                 4,
		Name:               "Dinner",
		Amount:             decimal.NewFromInt(42),
		Type:               core.Expense,
		Categories:         []string{"Food & Dining", "Ghost"},
		CategoryQuantities: map[string]int{"Food & Dining": 2},
		Date:               "2024-12-24",
		CategoryImageURIs:  []*string{nil, &ghost},
	}
	s := EditSession(orig, catalog.Default().All(), suggest.DefaultKeywords())
	assert.True(t, s.Editing())
	assert.Equal(t, "42.00", s.Amount())
	assert.Equal(t, Auto, s.Mode())
	assert.Equal(t, []string{"Food & Dining", "Ghost"}, selectedNames(s))

	s.SetName("Dinner with coffee")
	assert.Equal(t, "42.00", s.Amount(), "renaming does not recompute")

	require.NoError(t, s.Toggle("ghost"))
	assert.Equal(t, "20.00", s.Amount())

	sub, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, int64(4), sub.Transaction.ID)
	assert.Equal(t, "2024-12-24", sub.Transaction.Date)
	assert.Equal(t, []string{"Food & Dining"}, sub.Transaction.Categories)
	assert.True(t, sub.Transaction.Amount.Equal(decimal.NewFromInt(20)))
}

func TestEditSessionOrphanKeepsImageSnapshot(t *testing.T) {
	ghost := "ghost.png"
	orig := core.Transaction{
		ID: 1, Name: "x", Amount: decimal.NewFromInt(1), Type: core.Income,
		Categories: []string{"Ghost"}, Date: "2025-01-01",
		CategoryImageURIs: []*string{&ghost},
	}
	s := EditSession(orig, catalog.Default().All(), nil)
	sub, err := s.Submit()
	require.NoError(t, err)
	require.Len(t, sub.Transaction.CategoryImageURIs, 1)
	assert.Equal(t, "ghost.png", core.Deref(sub.Transaction.CategoryImageURIs[0]))
	assert.Empty(t, sub.NewCategories)
}

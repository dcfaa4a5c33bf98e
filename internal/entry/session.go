// Package entry models the add and edit transaction flows: category
// suggestions, the amount auto-calculator and field validation.
package entry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hisab/internal/core"
	"hisab/internal/suggest"
)

// Mode says whether the amount field follows the computed total.
type Mode int

const (
	Auto Mode = iota
	Manual
)

func (m Mode) String() string {
	if m == Manual {
		return "manual"
	}
	return "auto"
}

var ErrUnknownCategory = errors.New("unknown category")

// Submission is the result of a successful save: the transaction to store and
// the categories it introduces that the catalog does not know yet.
type Submission struct {
	Transaction   core.Transaction
	NewCategories []core.Category
}

// Session holds the state of one add or edit form. It is not safe for
// concurrent use; every method is a synchronous derivation.
type Session struct {
	catalog  []core.Category
	keywords suggest.Keywords
	editing  *core.Transaction
	today    string

	name          string
	description   string
	mobileNumber  string
	txType        core.TransactionType
	selected      []core.Category
	quantities    map[string]int
	suggested     []core.Category
	created       []core.Category
	amount        string
	mode          Mode
	categoryInput string
}

// NewSession starts an add flow dated on now's calendar day.
func NewSession(categories []core.Category, keywords suggest.Keywords, now time.Time) *Session {
	return &Session{
		catalog:    append([]core.Category(nil), categories...),
		keywords:   keywords,
		today:      core.FormatDate(now),
		txType:     core.Expense,
		quantities: map[string]int{},
	}
}

// EditSession starts an edit flow for tx. Opening an edit recomputes nothing:
// the recorded amount is shown until the first selection or quantity change
// recomputes it from catalog prices, and category names that are no longer in
// the catalog stay selected, without a price, instead of being dropped.
func EditSession(tx core.Transaction, categories []core.Category, keywords suggest.Keywords) *Session {
	s := &Session{
		catalog:      append([]core.Category(nil), categories...),
		keywords:     keywords,
		name:         tx.Name,
		description:  core.Deref(tx.Description),
		mobileNumber: core.Deref(tx.MobileNumber),
		txType:       tx.Type,
		quantities:   map[string]int{},
		amount:       core.FormatAmount(tx.Amount),
	}
	orig := tx.Clone()
	s.editing = &orig
	for i, name := range tx.Categories {
		cat, ok := s.lookup(name)
		if !ok {
			cat = core.Category{Name: name}
			if i < len(tx.CategoryImageURIs) {
				cat.ImageURI = tx.CategoryImageURIs[i]
			}
		}
		if s.selectedIndex(cat.Name) >= 0 {
			continue
		}
		s.selected = append(s.selected, cat)
		if q, ok := tx.CategoryQuantities[name]; ok {
			s.quantities[cat.Name] = q
		}
	}
	s.suggested = suggest.Suggest(suggest.EntryText(s.name, s.description), s.catalog, s.keywords)
	return s
}

func (s *Session) Editing() bool { return s.editing != nil }

func (s *Session) SetName(name string) {
	s.name = name
	s.refreshSuggestions()
}

func (s *Session) SetDescription(description string) {
	s.description = description
	s.refreshSuggestions()
}

func (s *Session) SetMobileNumber(number string) { s.mobileNumber = number }

func (s *Session) SetType(t core.TransactionType) { s.txType = t }

// SetCategoryInput holds a free-typed category name, created on submit when
// the catalog does not know it.
func (s *Session) SetCategoryInput(text string) { s.categoryInput = text }

// EditAmount records a direct edit of the amount field. Typing switches to
// manual mode; clearing the field hands control back to the calculator.
func (s *Session) EditAmount(text string) {
	s.amount = text
	if strings.TrimSpace(text) == "" {
		s.mode = Auto
	} else {
		s.mode = Manual
	}
}

// Toggle selects an unselected category with quantity 1, or deselects it.
func (s *Session) Toggle(name string) error {
	if s.selectedIndex(name) >= 0 {
		return s.Deselect(name)
	}
	return s.Select(name)
}

func (s *Session) Select(name string) error {
	if s.selectedIndex(name) >= 0 {
		return nil
	}
	cat, ok := s.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	s.selected = append(s.selected, cat)
	s.quantities[cat.Name] = 1
	s.selectionChanged()
	return nil
}

func (s *Session) Deselect(name string) error {
	i := s.selectedIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	delete(s.quantities, s.selected[i].Name)
	s.selected = append(s.selected[:i], s.selected[i+1:]...)
	s.selectionChanged()
	return nil
}

// SetQuantity changes the quantity of a selected category.
func (s *Session) SetQuantity(name string, qty int) error {
	if qty < 1 {
		return core.ErrInvalidQuantity
	}
	i := s.selectedIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	s.quantities[s.selected[i].Name] = qty
	s.selectionChanged()
	return nil
}

// AddCategory selects a category created from the entry form. It is
// reported in Submission.NewCategories so the catalog can keep its price and
// image.
func (s *Session) AddCategory(cat core.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if err := cat.Validate(); err != nil {
		return err
	}
	if existing, ok := s.lookup(cat.Name); ok {
		return s.Select(existing.Name)
	}
	s.catalog = append(s.catalog, cat)
	s.created = append(s.created, cat)
	s.categoryInput = ""
	return s.Select(cat.Name)
}

func (s *Session) Amount() string { return s.amount }
func (s *Session) Mode() Mode     { return s.mode }

func (s *Session) Selected() []core.Category {
	return append([]core.Category(nil), s.selected...)
}

func (s *Session) Suggested() []core.Category {
	return append([]core.Category(nil), s.suggested...)
}

func (s *Session) Quantities() map[string]int {
	out := make(map[string]int, len(s.quantities))
	for k, v := range s.quantities {
		out[k] = v
	}
	return out
}

// Validate checks the fields that block saving.
func (s *Session) Validate() error {
	var fe FieldErrors
	if strings.TrimSpace(s.name) == "" {
		fe.Name = MsgNameRequired
	}
	switch {
	case strings.TrimSpace(s.amount) == "":
		fe.Amount = MsgAmountRequired
	default:
		if _, err := core.ParseAmount(s.amount); err != nil {
			fe.Amount = MsgAmountInvalid
		}
	}
	if len(s.selected) == 0 && strings.TrimSpace(s.categoryInput) == "" {
		fe.Category = MsgCategoryRequired
	}
	if fe.Empty() {
		return nil
	}
	return fe
}

// Submit validates the form and builds the transaction. Add flows carry id 0
// and today's date; the store assigns the real id. Edit flows keep both.
func (s *Session) Submit() (Submission, error) {
	if err := s.Validate(); err != nil {
		return Submission{}, err
	}
	amount, err := core.ParseAmount(s.amount)
	if err != nil {
		return Submission{}, err
	}
	if err := s.txType.Validate(); err != nil {
		return Submission{}, err
	}

	newCats := append([]core.Category(nil), s.created...)
	selected := append([]core.Category(nil), s.selected...)
	quantities := s.Quantities()
	if input := strings.TrimSpace(s.categoryInput); input != "" {
		cat, ok := s.lookup(input)
		if !ok {
			cat = core.Category{Name: input}
			newCats = append(newCats, cat)
		}
		if !containsName(selected, cat.Name) {
			selected = append(selected, cat)
			quantities[cat.Name] = 1
		}
	}

	tx := core.Transaction{
		Name:               strings.TrimSpace(s.name),
		MobileNumber:       core.StringPtr(s.mobileNumber),
		Description:        core.StringPtr(s.description),
		Amount:             amount,
		Type:               s.txType,
		CategoryQuantities: map[string]int{},
		Date:               s.today,
	}
	for _, cat := range selected {
		tx.Categories = append(tx.Categories, cat.Name)
		tx.CategoryImageURIs = append(tx.CategoryImageURIs, cat.ImageURI)
		if q, ok := quantities[cat.Name]; ok {
			tx.CategoryQuantities[cat.Name] = q
		}
	}
	if s.editing != nil {
		tx.ID = s.editing.ID
		tx.Date = s.editing.Date
	}
	return Submission{Transaction: tx, NewCategories: newCats}, nil
}

// selectionChanged forfeits any manual override and recomputes the amount.
func (s *Session) selectionChanged() {
	s.mode = Auto
	s.amount = AmountText(ComputeAmount(s.selected, s.quantities))
}

// refreshSuggestions recomputes suggestions from name and description. In the
// add flow an empty selection adopts them.
func (s *Session) refreshSuggestions() {
	s.suggested = suggest.Suggest(suggest.EntryText(s.name, s.description), s.catalog, s.keywords)
	if s.editing != nil || len(s.selected) > 0 || len(s.suggested) == 0 {
		return
	}
	s.selected = append([]core.Category(nil), s.suggested...)
	s.quantities = make(map[string]int, len(s.suggested))
	for _, cat := range s.suggested {
		s.quantities[cat.Name] = 1
	}
	s.selectionChanged()
}

func (s *Session) lookup(name string) (core.Category, bool) {
	for _, cat := range s.catalog {
		if core.NamesEqual(cat.Name, name) {
			return cat, true
		}
	}
	for _, cat := range s.selected {
		if core.NamesEqual(cat.Name, name) {
			return cat, true
		}
	}
	return core.Category{}, false
}

func (s *Session) selectedIndex(name string) int {
	for i, cat := range s.selected {
		if core.NamesEqual(cat.Name, name) {
			return i
		}
	}
	return -1
}

func containsName(cats []core.Category, name string) bool {
	for _, c := range cats {
		if core.NamesEqual(c.Name, name) {
			return true
		}
	}
	return false
}

package entry

import "strings"

// Field-level messages shown next to the entry form inputs.
const (
	MsgNameRequired     = "Name is required"
	MsgAmountRequired   = "Amount is required"
	MsgAmountInvalid    = "Enter a valid amount"
	MsgCategoryRequired = "At least one category is required"
)

// FieldErrors collects validation messages per form field. Empty fields are valid.
type FieldErrors struct {
	Name     string `json:"name,omitempty"`
	Amount   string `json:"amount,omitempty"`
	Category string `json:"category,omitempty"`
}

func (e FieldErrors) Empty() bool {
	return e.Name == "" && e.Amount == "" && e.Category == ""
}

func (e FieldErrors) Error() string {
	var parts []string
	for _, p := range []struct{ field, msg string }{
		{"name", e.Name}, {"amount", e.Amount}, {"category", e.Category},
	} {
		if p.msg != "" {
			parts = append(parts, p.field+": "+p.msg)
		}
	}
	return "invalid entry: " + strings.Join(parts, "; ")
}

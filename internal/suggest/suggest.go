// Package suggest maps free text typed for a transaction to candidate categories.
package suggest

import (
	"strings"

	"hisab/internal/core"
)

// Suggest returns, in catalog order, the categories with at least one keyword
// contained in the lower-cased text. Categories without a keyword entry are
// never suggested.
func Suggest(freeText string, categories []core.Category, keywords Keywords) []core.Category {
	text := strings.ToLower(strings.TrimSpace(freeText))
	if text == "" {
		return nil
	}
	var out []core.Category
	for _, cat := range categories {
		for _, kw := range keywords.For(cat.Name) {
			if kw != "" && strings.Contains(text, kw) {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}

// EntryText joins a transaction's name and description the way suggestions read them.
func EntryText(name, description string) string {
	return name + " " + description
}

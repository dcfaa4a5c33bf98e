package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Keywords maps a category name to the keywords that suggest it. Names are
// matched case-insensitively; keywords are stored lower-cased.
type Keywords map[string][]string

type keywordsFile struct {
	Keywords map[string][]string `toml:"keywords"`
}

// DefaultKeywords is the built-in table for the default catalog.
func DefaultKeywords() Keywords {
	return NewKeywords(map[string][]string{
		"Food & Dining":     {"food", "dining", "restaurant", "meal", "groceries", "coffee"},
		"Transportation":    {"transport", "bus", "train", "taxi", "fuel", "car"},
		"Shopping":          {"shop", "clothes", "electronics", "mall", "store"},
		"Entertainment":     {"movie", "concert", "game", "event", "ticket"},
		"Bills & Utilities": {"bill", "utility", "electricity", "water", "internet"},
		"Health & Fitness":  {"health", "gym", "doctor", "medicine", "fitness"},
		"Education":         {"education", "school", "course", "book", "tuition"},
		"Salary":            {"salary", "income", "pay", "wage"},
		"Gift":              {"gift", "present"},
		"Other":             {"misc", "other"},
	})
}

// NewKeywords normalizes a raw table.
func NewKeywords(raw map[string][]string) Keywords {
	k := make(Keywords, len(raw))
	for name, words := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				k[key] = append(k[key], w)
			}
		}
	}
	return k
}

// For returns the keywords configured for a category name.
func (k Keywords) For(name string) []string {
	return k[strings.ToLower(strings.TrimSpace(name))]
}

// Merge returns a table where entries of other replace entries of k.
func (k Keywords) Merge(other Keywords) Keywords {
	out := make(Keywords, len(k)+len(other))
	for name, words := range k {
		out[name] = words
	}
	for name, words := range other {
		out[name] = words
	}
	return out
}

// Names lists the configured category names in sorted order.
func (k Keywords) Names() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadKeywords reads a TOML file of the form:
//
//	[keywords]
//	"Food & Dining" = ["food", "coffee"]
//	Pets = ["vet", "kibble"]
func LoadKeywords(path string) (Keywords, error) {
	var f keywordsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode keywords file: %w", err)
	}
	return NewKeywords(f.Keywords), nil
}

// Package catalog holds the set of categories a transaction may reference.
//
// Categories are identified by name, compared case-insensitively. Transactions
// reference categories by name only, so deleting a category leaves existing
// references orphaned rather than cascading.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"hisab/internal/core"
)

var (
	ErrDuplicateName = errors.New("duplicate category name")
	ErrNotFound      = errors.New("category not found")
)

// Catalog is an ordered collection of categories with unique names.
type Catalog struct {
	items []core.Category
}

// New builds a catalog, keeping the first of any case-insensitive duplicates.
func New(categories []core.Category) *Catalog {
	c := &Catalog{items: make([]core.Category, 0, len(categories))}
	for _, cat := range categories {
		cat.Name = strings.TrimSpace(cat.Name)
		if cat.Name == "" || c.index(cat.Name) >= 0 {
			continue
		}
		c.items = append(c.items, cat)
	}
	return c
}

// All returns a copy of the categories in catalog order.
func (c *Catalog) All() []core.Category {
	return append([]core.Category(nil), c.items...)
}

func (c *Catalog) Len() int { return len(c.items) }

// Find looks a category up by name.
func (c *Catalog) Find(name string) (core.Category, bool) {
	if i := c.index(name); i >= 0 {
		return c.items[i], true
	}
	return core.Category{}, false
}

// Add appends a new category.
func (c *Catalog) Add(cat core.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if err := cat.Validate(); err != nil {
		return err
	}
	if c.index(cat.Name) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateName, cat.Name)
	}
	c.items = append(c.items, cat)
	return nil
}

// Update replaces the category named oldName in place. Renaming onto another
// existing name is rejected; changing only the case of the edited name is not.
func (c *Catalog) Update(oldName string, cat core.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if err := cat.Validate(); err != nil {
		return err
	}
	i := c.index(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	if j := c.index(cat.Name); j >= 0 && j != i {
		return fmt.Errorf("%w: %q", ErrDuplicateName, cat.Name)
	}
	c.items[i] = cat
	return nil
}

// Delete removes the named category.
func (c *Catalog) Delete(name string) (core.Category, error) {
	i := c.index(name)
	if i < 0 {
		return core.Category{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	removed := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return removed, nil
}

// ResolveOrCreate returns the catalog entry for name, or a new price-less
// category when none exists. created reports that the new entry was added and
// must be persisted.
func (c *Catalog) ResolveOrCreate(name string) (cat core.Category, created bool, err error) {
	if existing, ok := c.Find(name); ok {
		return existing, false, nil
	}
	cat = core.Category{Name: strings.TrimSpace(name)}
	if err := c.Add(cat); err != nil {
		return core.Category{}, false, err
	}
	return cat, true, nil
}

// Closest returns the catalog name nearest to name by edit distance, if any is
// within maxDistance. Used for "did you mean" hints.
func (c *Catalog) Closest(name string, maxDistance int) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	best, bestDist := "", maxDistance+1
	for _, cat := range c.items {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(cat.Name))
		if d < bestDist {
			best, bestDist = cat.Name, d
		}
	}
	return best, best != ""
}

func (c *Catalog) index(name string) int {
	for i, cat := range c.items {
		if core.NamesEqual(cat.Name, name) {
			return i
		}
	}
	return -1
}

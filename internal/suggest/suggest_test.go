package suggest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hisab/internal/catalog"
	"hisab/internal/core"
)

func names(cats []core.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Name
	}
	return out
}

func TestSuggest(t *testing.T) {
	cats := catalog.Default().All()
	kw := DefaultKeywords()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty text", "", nil},
		{"blank text", "   ", nil},
		{"single keyword", "Weekly GROCERIES run", []string{"Food & Dining"}},
		{"substring match", "taxicab", []string{"Transportation"}},
		{"several categories", EntryText("Coffee", "bus ticket"), []string{"Food & Dining", "Transportation", "Entertainment"}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.text, cats, kw)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSuggestIgnoresCategoriesWithoutKeywords(t *testing.T) {
	cats := []core.Category{{Name: "Pets"}, {Name: "Gift"}}
	got := Suggest("pet gift", cats, DefaultKeywords())
	assert.Equal(t, []string{"Gift"}, names(got))
}

func TestSuggestIsPure(t *testing.T) {
	cats := catalog.Default().All()
	kw := DefaultKeywords()
	a := Suggest("gym and coffee", cats, kw)
	b := Suggest("gym and coffee", cats, kw)
	assert.Equal(t, a, b)
	assert.Len(t, cats, 10)
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.toml")
	content := "[keywords]\n\"Food & Dining\" = [\"Pizza\", \" \"]\nPets = [\"vet\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pizza"}, kw.For("food & dining"))
	assert.Equal(t, []string{"vet"}, kw.For("PETS"))

	merged := DefaultKeywords().Merge(kw)
	assert.Equal(t, []string{"pizza"}, merged.For("Food & Dining"))
	assert.Contains(t, merged.For("Gift"), "gift")
	assert.Contains(t, merged.Names(), "pets")
}

func TestLoadKeywordsMissingFile(t *testing.T) {
	_, err := LoadKeywords(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

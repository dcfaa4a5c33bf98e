package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hisab/internal/services"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HISAB_CONFIG", "")
	t.Setenv("HISAB_DATA_BACKEND", "sqlite")
	t.Setenv("HISAB_SQLITE_DB_PATH", filepath.Join(dir, "hisab.db"))
	t.Setenv("HISAB_EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("HISAB_AMQP_URL", "")
	t.Setenv("HISAB_LOG_LEVEL", "error")
	cfgFile = ""
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseSelections(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []services.Selection
		wantErr bool
	}{
		{
			name: "plain names default to one",
			args: []string{"Food & Dining", "Bills"},
			want: []services.Selection{{Name: "Food & Dining", Quantity: 1}, {Name: "Bills", Quantity: 1}},
		},
		{
			name: "explicit quantity",
			args: []string{"Bills=3", " Health = 2"},
			want: []services.Selection{{Name: "Bills", Quantity: 3}, {Name: "Health", Quantity: 2}},
		},
		{name: "bad quantity", args: []string{"Bills=x"}, wantErr: true},
		{name: "empty name", args: []string{"=2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelections(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransactionCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "tx", "add", "-n", "Lunch", "-c", "Food & Dining=2")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded transaction #0")
	assert.Contains(t, out, "20.00")

	out, err = run(t, "tx", "add", "-n", "Salary", "-t", "income", "-a", "1000", "-c", "Salary")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded transaction #1")

	out, err = run(t, "tx", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lunch")
	assert.Contains(t, out, "Salary")

	out, err = run(t, "tx", "edit", "0", "-n", "Team lunch")
	require.NoError(t, err)
	assert.Contains(t, out, "Team lunch")
	assert.Contains(t, out, "20.00")

	out, err = run(t, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "-20.00")

	out, err = run(t, "tx", "rm", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted transaction #0")

	_, err = run(t, "tx", "show", "0")
	assert.Error(t, err)
}

func TestDefaultBackendKeepsWritesBetweenCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HISAB_CONFIG", "")
	t.Setenv("HISAB_DATA_BACKEND", "")
	t.Setenv("HISAB_DATA_DIRECTORY", dir)
	t.Setenv("HISAB_EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("HISAB_AMQP_URL", "")
	t.Setenv("HISAB_LOG_LEVEL", "error")
	cfgFile = ""

	_, err := run(t, "tx", "add", "-n", "Lunch", "-c", "Food & Dining=2")
	require.NoError(t, err)
	_, err = run(t, "categories", "add", "Pets", "--price", "7")
	require.NoError(t, err)

	out, err := run(t, "tx", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lunch")

	out, err = run(t, "tx", "show", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "-20.00")

	out, err = run(t, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")

	assert.FileExists(t, filepath.Join(dir, "transactions.json"))
	assert.FileExists(t, filepath.Join(dir, "categories.json"))
}

func TestAddWithoutNameReportsFields(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "tx", "add", "-c", "Other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name")
}

func TestCategoryCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "categories", "add", "Groceries", "--price", "12.5")
	require.NoError(t, err)
	assert.Contains(t, out, `Created category "Groceries"`)

	_, err = run(t, "categories", "add", "groceries")
	assert.Error(t, err)

	out, err = run(t, "categories", "update", "Groceries", "--name", "Market")
	require.NoError(t, err)
	assert.Contains(t, out, `Updated category "Market"`)

	out, err = run(t, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Market")
	assert.Contains(t, out, "12.50")

	_, err = run(t, "categories", "rm", "Markt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "Market"?`)
}

func TestAmountAndSuggest(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "amount", "Bills & Utilities=2", "Health & Fitness")
	require.NoError(t, err)
	assert.Contains(t, out, "130.00")

	out, err = run(t, "suggest", "morning", "coffee")
	require.NoError(t, err)
	assert.Contains(t, out, "Food & Dining")
}

func TestReportExportInline(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "tx", "add", "-n", "Movie", "-c", "Entertainment")
	require.NoError(t, err)

	out, err := run(t, "report", "--export=xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, ".xlsx")
	assert.NotContains(t, out, ".pdf")

	_, err = run(t, "report", "--export=pdf", "--queue")
	assert.ErrorIs(t, err, services.ErrQueueUnavailable)

	_, err = run(t, "report", "--export=doc")
	assert.Error(t, err)
}

func TestReportExportUsesConfiguredFormats(t *testing.T) {
	setupEnv(t)
	t.Setenv("HISAB_EXPORT_FORMATS", "xlsx")

	_, err := run(t, "tx", "add", "-n", "Movie", "-c", "Entertainment")
	require.NoError(t, err)

	out, err := run(t, "report", "--export")
	require.NoError(t, err)
	assert.Contains(t, out, ".xlsx")
	assert.NotContains(t, out, ".pdf")
}

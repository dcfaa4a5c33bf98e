package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hisab/internal/config"
)

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	mem, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, mem.Store)
	assert.Nil(t, mem.Cleanup)

	dir := filepath.Join(t.TempDir(), "data")
	mem, err = f.CreateBackend(ctx, Config{Type: MemoryBackend, DataDirectory: dir})
	require.NoError(t, err)
	require.NoError(t, mem.Store.Set(ctx, "transactions", "[]"))
	assert.FileExists(t, filepath.Join(dir, "transactions.json"))

	sq, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "h.db")})
	require.NoError(t, err)
	require.NotNil(t, sq.Cleanup)
	require.NoError(t, sq.Store.Set(ctx, "k", "v"))
	assert.NoError(t, sq.Cleanup())

	_, err = f.CreateBackend(ctx, Config{Type: SQLiteBackend})
	assert.Error(t, err)
	_, err = f.CreateBackend(ctx, Config{Type: "sheets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid: sqlite, memory")
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", Namespace: "ns"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "ns", cfg.Namespace)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid: sqlite, memory")
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

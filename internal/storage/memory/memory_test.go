package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hisab/internal/storage"
)

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	kv := New()
	if _, ok, err := kv.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := kv.Get(ctx, "k"); !ok || v != "v2" {
		t.Fatalf("unexpected value %q ok=%v", v, ok)
	}
}

func TestNewFromDirSeeds(t *testing.T) {
	dir := t.TempDir()
	kv := NewFromDir(dir)
	if _, ok, _ := kv.Get(context.Background(), storage.KeyTransactions); ok {
		t.Fatalf("expected no seed when files missing")
	}

	blob := `[{"name":"Gift","imageUri":null,"defaultPrice":10.0}]`
	if err := os.WriteFile(filepath.Join(dir, "categories.json"), []byte(blob+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte("  "), 0o644); err != nil {
		t.Fatal(err)
	}

	kv = NewFromDir(dir)
	v, ok, _ := kv.Get(context.Background(), storage.KeyCategories)
	if !ok || v != blob {
		t.Fatalf("unexpected seed %q ok=%v", v, ok)
	}
	if _, ok, _ := kv.Get(context.Background(), storage.KeyTransactions); ok {
		t.Fatalf("blank seed file should be skipped")
	}

	repo := storage.NewRepository(kv)
	cats, found, err := repo.LoadCategories(context.Background())
	if err != nil || !found || len(cats) != 1 || cats[0].Name != "Gift" {
		t.Fatalf("unexpected categories %v found=%v err=%v", cats, found, err)
	}
}

func TestDirBackedStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	first := NewFromDir(dir)
	if err := first.Set(ctx, storage.KeyTransactions, `[{"id":0}]`); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "transactions.json"))
	if err != nil || string(b) != `[{"id":0}]` {
		t.Fatalf("unexpected file %q err=%v", b, err)
	}

	second := NewFromDir(dir)
	if v, ok, _ := second.Get(ctx, storage.KeyTransactions); !ok || v != `[{"id":0}]` {
		t.Fatalf("second instance read %q ok=%v", v, ok)
	}

	// A write from another instance is visible without reopening.
	if err := second.Set(ctx, storage.KeyTransactions, `[]`); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := first.Get(ctx, storage.KeyTransactions); v != `[]` {
		t.Fatalf("first instance read stale %q", v)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the key file, got %d entries", len(entries))
	}
}

func TestProcessOnlyStoreWritesNothing(t *testing.T) {
	kv := New()
	if kv.Dir() != "" {
		t.Fatalf("expected no directory, got %q", kv.Dir())
	}
	if err := kv.Set(context.Background(), storage.KeyCategories, "[]"); err != nil {
		t.Fatal(err)
	}
}

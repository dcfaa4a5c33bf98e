package storage

import (
	"context"
	"fmt"
	"log/slog"

	"hisab/internal/core"
)

// Repository loads and saves the two collections through a KV.
type Repository struct {
	kv KV
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// LoadTransactions returns the stored transactions. A missing key yields an
// empty list. A malformed blob yields an empty list and an error wrapping
// ErrMalformed, which callers treat as a notice.
func (r *Repository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	blob, ok, err := r.kv.Get(ctx, KeyTransactions)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if !ok || blob == "" {
		return []core.Transaction{}, nil
	}
	txs, err := DecodeTransactions(blob)
	if err != nil {
		slog.WarnContext(ctx, "Discarding stored transactions", "error", err)
		return []core.Transaction{}, err
	}
	return txs, nil
}

func (r *Repository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	blob, err := EncodeTransactions(txs)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, KeyTransactions, blob); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

// LoadCategories returns the stored catalog. found is false when nothing has
// been stored yet or the blob is malformed.
func (r *Repository) LoadCategories(ctx context.Context) (cats []core.Category, found bool, err error) {
	blob, ok, err := r.kv.Get(ctx, KeyCategories)
	if err != nil {
		return nil, false, fmt.Errorf("load categories: %w", err)
	}
	if !ok || blob == "" {
		return nil, false, nil
	}
	cats, err = DecodeCategories(blob)
	if err != nil {
		slog.WarnContext(ctx, "Discarding stored categories", "error", err)
		return nil, false, err
	}
	return cats, true, nil
}

func (r *Repository) SaveCategories(ctx context.Context, cats []core.Category) error {
	blob, err := EncodeCategories(cats)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, KeyCategories, blob); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

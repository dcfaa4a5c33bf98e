// Package ledger owns the ordered collection of recorded transactions.
package ledger

import (
	"errors"
	"fmt"

	"hisab/internal/core"
)

var ErrNotFound = errors.New("transaction not found")

// Store keeps transactions in insertion order and assigns identifiers.
type Store struct {
	items []core.Transaction
}

func New(transactions []core.Transaction) *Store {
	s := &Store{items: make([]core.Transaction, 0, len(transactions))}
	for _, tx := range transactions {
		s.items = append(s.items, tx.Clone())
	}
	return s
}

// All returns copies of every transaction in insertion order.
func (s *Store) All() []core.Transaction {
	out := make([]core.Transaction, len(s.items))
	for i, tx := range s.items {
		out[i] = tx.Clone()
	}
	return out
}

func (s *Store) Len() int { return len(s.items) }

func (s *Store) Get(id int64) (core.Transaction, error) {
	i := s.index(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s.items[i].Clone(), nil
}

// NextID is max(existing ids)+1, or 0 for an empty store.
func (s *Store) NextID() int64 {
	if len(s.items) == 0 {
		return 0
	}
	max := s.items[0].ID
	for _, tx := range s.items[1:] {
		if tx.ID > max {
			max = tx.ID
		}
	}
	return max + 1
}

// Add assigns the next identifier to tx and appends it.
func (s *Store) Add(tx core.Transaction) (core.Transaction, error) {
	tx = tx.Clone()
	tx.PruneQuantities()
	tx.ID = s.NextID()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	s.items = append(s.items, tx)
	return tx.Clone(), nil
}

// Update replaces the transaction with the same id in place. The stored date
// is kept regardless of what tx carries.
func (s *Store) Update(tx core.Transaction) (core.Transaction, error) {
	i := s.index(tx.ID)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %d", ErrNotFound, tx.ID)
	}
	tx = tx.Clone()
	tx.PruneQuantities()
	tx.Date = s.items[i].Date
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	s.items[i] = tx
	return tx.Clone(), nil
}

func (s *Store) Remove(id int64) (core.Transaction, error) {
	i := s.index(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return removed, nil
}

func (s *Store) index(id int64) int {
	for i, tx := range s.items {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

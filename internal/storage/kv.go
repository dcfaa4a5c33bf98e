// Package storage persists the transaction list and the category catalog as
// JSON blobs in a namespaced key-value store.
package storage

import (
	"context"
	"errors"
)

// Fixed keys of the two persisted collections.
const (
	KeyTransactions = "transactions"
	KeyCategories   = "categories"

	DefaultNamespace = "HisabAppPrefs"
)

// ErrMalformed marks a stored blob that could not be decoded.
var ErrMalformed = errors.New("malformed stored data")

// KV is a string key-value store scoped to one namespace. A missing key is
// reported with ok == false and no error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Package memory is a key-value store kept in process memory and, when
// backed by a data directory, mirrored to one JSON file per key.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"hisab/internal/storage"
)

type KV struct {
	mu     sync.Mutex
	values map[string]string
	dir    string
}

var _ storage.KV = (*KV)(nil)

// New returns a store that lives only as long as the process.
func New() *KV {
	return &KV{values: map[string]string{}}
}

// NewFromDir returns a store backed by <dir>/<key>.json, so values written by
// one process are read by the next. Missing or blank files read as absent.
func NewFromDir(dir string) *KV {
	kv := New()
	kv.dir = dir
	for _, key := range []string{storage.KeyTransactions, storage.KeyCategories} {
		if blob := readFile(kv.path(key)); blob != "" {
			kv.values[key] = blob
			slog.Debug("Seeded memory store", "key", key, "bytes", len(blob))
		}
	}
	return kv
}

func (s *KV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		blob := readFile(s.path(key))
		if blob == "" {
			delete(s.values, key)
			return "", false, nil
		}
		s.values[key] = blob
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value and, for a directory-backed store, replaces the key's
// file through a temp file and rename.
func (s *KV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		if err := writeFile(s.path(key), value); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	s.values[key] = value
	return nil
}

// Dir is the backing directory, empty for a process-only store.
func (s *KV) Dir() string { return s.dir }

func (s *KV) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func readFile(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func writeFile(path, value string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

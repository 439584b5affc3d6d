// Package cache keeps the outcome of the previous generation run for each
// package so an unchanged package is not validated and rendered again.
package cache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/olehluchkiv/descgen/internal/generator"
)

// Record is what one run leaves behind.
type Record struct {
	Fingerprint  string                `msgpack:"fingerprint"`
	ArtifactName string                `msgpack:"artifact_name,omitempty"`
	Content      []byte                `msgpack:"content,omitempty"`
	Entries      generator.EntrySet    `msgpack:"entries,omitempty"`
	Duplicates   []generator.Duplicate `msgpack:"duplicates,omitempty"`
}

// Store persists records as msgpack files in a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// DefaultDir returns ~/.cache/descgen (or the platform equivalent).
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("getting cache dir: %w", err)
	}
	return filepath.Join(base, "descgen"), nil
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Load returns the record saved under key, or nil when there is none.
func (s *Store) Load(key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache record: %w", err)
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding cache record: %w", err)
	}
	return &rec, nil
}

// Save replaces the record stored under key.
func (s *Store) Save(key string, rec *Record) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding cache record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing cache record: %w", err)
	}
	return nil
}

// path maps a key to <dir>/<hash>.msgpack.
func (s *Store) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, fmt.Sprintf("%x.msgpack", h[:8]))
}

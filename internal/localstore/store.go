// Package localstore persists client-owned collections as JSON files
// under a per-user directory, the desktop stand-in for the browser
// profile storage other clients of the backend use. Entries carry no
// version field; a format change needs a manual migration.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Storage keys for the three independent entries.
const (
	KeySession  = "session"
	KeyJoined   = "joined_activity_ids"
	KeyPayments = "payments"
)

// ErrNotFound is returned when no value is stored for a key. Corrupt
// entries report the same: they are logged and treated as absent so a
// bad file never crashes the caller.
var ErrNotFound = errors.New("no value stored for key")

// Option configures optional behaviour for the Store.
type Option func(*Store)

// WithLogger overrides the logger used to report unreadable entries.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store is a keyed JSON-file store.
type Store struct {
	dir    string
	logger *log.Logger
}

// New creates the backing directory if needed and returns a Store.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	s := &Store{
		dir:    dir,
		logger: log.New(log.Writer(), "[localstore] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load decodes the stored value for key into v. Missing and malformed
// entries both report ErrNotFound.
func (s *Store) Load(key string, v any) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		s.logger.Printf("read %s: %v", key, err)
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Printf("malformed entry %s treated as absent: %v", key, err)
		return ErrNotFound
	}
	return nil
}

// Save serialises v and replaces the stored value for key.
func (s *Store) Save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Clear removes the stored value for key. Clearing an absent key is a
// no-op.
func (s *Store) Clear(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Package disk provides a flat-directory artifact store with atomic writes
// and byte-budgeted trimming.
package disk

import (
	"errors"
	"os"
	"path/filepath"
)

const defaultDirPerm = 0o700

// Store reads and writes artifacts as files in a single flat directory.
//
// Writes are atomic: content lands in a temp file that is renamed into
// place, so readers never observe a partially written artifact.
type Store struct {
	dir     string
	dirPerm os.FileMode
}

// Option configures a Store.
type Option func(*Store)

// WithDirPerm sets the permissions used when creating the store directory.
func WithDirPerm(mode os.FileMode) Option {
	return func(s *Store) {
		s.dirPerm = mode
	}
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store dir is empty")
	}
	s := &Store{
		dir:     dir,
		dirPerm: defaultDirPerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, s.dirPerm); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Exists reports whether an artifact with the given name is present.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.path(name))
	return err == nil && info.Mode().IsRegular()
}

// Read returns an artifact's content.
func (s *Store) Read(name string) ([]byte, error) {
	return os.ReadFile(s.path(name))
}

// Write atomically publishes content under name. If another writer
// publishes the same name concurrently, whichever rename lands last wins;
// either way readers only ever see a complete artifact.
func (s *Store) Write(name string, content []byte) error {
	if err := os.MkdirAll(s.dir, s.dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "artifact-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Remove deletes a single artifact. A missing artifact is not an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RemoveAll deletes every artifact and leaves the directory present and
// empty. Calling it repeatedly is safe.
func (s *Store) RemoveAll() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, s.dirPerm)
}

func (s *Store) path(name string) string {
	// Base guards against separators sneaking in via custom namers.
	return filepath.Join(s.dir, filepath.Base(name))
}

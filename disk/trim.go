package disk

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type fileInfo struct {
	path    string
	size    int64
	modTime time.Time
}

// Size returns the total size in bytes of all regular files in the store.
func (s *Store) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	return total, err
}

// Trim deletes artifacts oldest-modified-first until the store's total
// size is at or below limit. Ties in modification time break on path
// order. Individual deletion failures are skipped; trimming is
// best-effort. Returns the number of bytes freed.
func (s *Store) Trim(limit int64) (int64, error) {
	if limit < 0 {
		limit = 0
	}

	entries := make([]fileInfo, 0)
	var total int64
	walkErr := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size := info.Size()
		total += size
		entries = append(entries, fileInfo{
			path:    path,
			size:    size,
			modTime: info.ModTime(),
		})
		return nil
	})
	if errors.Is(walkErr, os.ErrNotExist) {
		return 0, nil
	}
	if walkErr != nil {
		return 0, walkErr
	}

	remaining := total
	if remaining <= limit {
		return 0, nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].modTime.Equal(entries[j].modTime) {
			return entries[i].path < entries[j].path
		}
		return entries[i].modTime.Before(entries[j].modTime)
	})

	var freed int64
	for _, entry := range entries {
		if remaining <= limit {
			break
		}
		if err := os.Remove(entry.path); err != nil {
			continue
		}
		remaining -= entry.size
		freed += entry.size
	}
	return freed, nil
}

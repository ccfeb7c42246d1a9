// Package thumbstore persists thumbnail artifacts in a single flat directory,
// one file per cache key. The existence of <key>.png is the only record that
// a thumbnail is ready: there is no index, no freshness metadata and no
// eviction. Writes land in a temp file first and are published with a link
// or rename, so Exists never observes a partially written artifact.
package thumbstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wilbur182/listexplorer/internal/thumbkey"
)

// Ext is the file extension of every artifact.
const Ext = "png"

const tempPrefix = ".tmp-"

var (
	// ErrMiss is returned by Read when no artifact exists for the key.
	ErrMiss = errors.New("thumbnail not in store")
	// ErrInvalidKey is returned for keys that thumbkey.Key cannot produce.
	ErrInvalidKey = errors.New("invalid cache key")
)

// Store is a directory of thumbnail artifacts. It is safe for concurrent use
// by multiple goroutines and processes.
type Store struct {
	dir string
}

// Stats summarizes the artifacts currently on disk.
type Stats struct {
	Count int
	Bytes int64
}

// Open returns a store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("thumbstore: empty directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("thumbstore: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the artifact path for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, thumbkey.FileName(key, Ext))
}

// Exists reports whether an artifact is published for key.
func (s *Store) Exists(key string) bool {
	if !thumbkey.Valid(key) {
		return false
	}
	info, err := os.Stat(s.Path(key))
	return err == nil && info.Mode().IsRegular()
}

// Read returns the artifact bytes for key, or ErrMiss.
func (s *Store) Read(key string) ([]byte, error) {
	if !thumbkey.Valid(key) {
		return nil, ErrInvalidKey
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("thumbstore: read %s: %w", key, err)
	}
	return data, nil
}

// Stat returns file metadata for the artifact, or ErrMiss.
func (s *Store) Stat(key string) (fs.FileInfo, error) {
	if !thumbkey.Valid(key) {
		return nil, ErrInvalidKey
	}
	info, err := os.Stat(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("thumbstore: stat %s: %w", key, err)
	}
	return info, nil
}

// Write persists data under key. An artifact that is already published is
// left untouched; concurrent writers of the same key never expose a torn file.
func (s *Store) Write(key string, data []byte) error {
	if !thumbkey.Valid(key) {
		return ErrInvalidKey
	}
	dst := s.Path(key)
	if s.Exists(key) {
		return nil
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+key+"-*")
	if err != nil {
		return fmt.Errorf("thumbstore: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once published

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("thumbstore: write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("thumbstore: sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("thumbstore: close %s: %w", key, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("thumbstore: chmod %s: %w", key, err)
	}
	return publish(tmpPath, dst)
}

// publish moves a complete temp file into place. A hard link refuses to
// clobber an artifact another writer published first; filesystems without
// links fall back to an atomic rename.
func publish(tmpPath, dst string) error {
	err := os.Link(tmpPath, dst)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("thumbstore: publish %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// Stats walks the store directory. Temp files are not counted.
func (s *Store) Stats() (Stats, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Stats{}, fmt.Errorf("thumbstore: list %s: %w", s.dir, err)
	}
	var st Stats
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, tempPrefix) {
			continue
		}
		key, ok := strings.CutSuffix(name, "."+Ext)
		if !ok || !thumbkey.Valid(key) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		st.Count++
		st.Bytes += info.Size()
	}
	return st, nil
}

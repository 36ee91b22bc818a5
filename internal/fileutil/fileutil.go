// Package fileutil provides the byte-oriented storage interfaces the
// compiler pipeline reads references from and writes artifacts to.
// The pipeline never touches the os package directly; it goes through
// Reader and Writer so tests can substitute in-memory implementations.
package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openruleset/bindery/core/errors"
)

// Reader reads raw file content by path.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

// Writer writes files and manages directories recursively.
type Writer interface {
	WriteFile(path string, data []byte) error
	MkdirAll(path string) error
	RemoveAll(path string) error
}

// OS implements Reader and Writer against the local filesystem.
type OS struct{}

// ReadFile reads the file at path.
func (OS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// WriteFile writes data to path, creating parent directories as needed.
func (o OS) WriteFile(path string, data []byte) error {
	if err := o.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// MkdirAll creates the directory at path and any missing parents.
func (OS) MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.NewIO("mkdir", path, err)
	}
	return nil
}

// RemoveAll removes path and everything beneath it. A missing path is not an error.
func (OS) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.NewIO("remove", path, err)
	}
	return nil
}

// ClearDir removes dir if it exists and recreates it empty, so a fresh
// compilation run never leaks stale artifacts from a previous one.
func ClearDir(w Writer, dir string) error {
	if err := w.RemoveAll(dir); err != nil {
		return err
	}
	return w.MkdirAll(dir)
}

// Mem is an in-memory Reader and Writer used in tests.
type Mem struct {
	Files map[string][]byte
	Dirs  map[string]bool
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{
		Files: make(map[string][]byte),
		Dirs:  make(map[string]bool),
	}
}

// ReadFile returns the stored content for path.
func (m *Mem) ReadFile(path string) ([]byte, error) {
	data, ok := m.Files[filepath.Clean(path)]
	if !ok {
		return nil, errors.NewIO("read", path, fs.ErrNotExist)
	}
	return data, nil
}

// WriteFile stores data under path.
func (m *Mem) WriteFile(path string, data []byte) error {
	m.Files[filepath.Clean(path)] = data
	return nil
}

// MkdirAll records the directory.
func (m *Mem) MkdirAll(path string) error {
	m.Dirs[filepath.Clean(path)] = true
	return nil
}

// RemoveAll drops every file and directory under path.
func (m *Mem) RemoveAll(path string) error {
	prefix := filepath.Clean(path)
	for p := range m.Files {
		if p == prefix || isUnder(p, prefix) {
			delete(m.Files, p)
		}
	}
	for p := range m.Dirs {
		if p == prefix || isUnder(p, prefix) {
			delete(m.Dirs, p)
		}
	}
	return nil
}

// Paths returns every stored file path in sorted order.
func (m *Mem) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

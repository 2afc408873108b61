// Package fsys defines a minimal filesystem interface for testability.
//
// Production code uses [OSFS] which delegates to the os package.
// Tests use [Fake] which provides an in-memory filesystem with spy
// capabilities and error injection.
package fsys

import (
	"os"
)

// FS abstracts the filesystem operations used by the config loader and
// the restart handler. It covers exactly the operations they need.
type FS interface {
	// MkdirAll creates a directory path and all parents that do not exist.
	MkdirAll(path string, perm os.FileMode) error

	// WriteFile writes data to the named file, creating it if necessary.
	WriteFile(name string, data []byte, perm os.FileMode) error

	// ReadFile returns the contents of the named file.
	ReadFile(name string) ([]byte, error)

	// Stat returns file info for the named file.
	Stat(name string) (os.FileInfo, error)

	// ReadDir reads the named directory and returns its entries.
	ReadDir(name string) ([]os.DirEntry, error)

	// Remove deletes the named file.
	Remove(name string) error

	// WriteTemp creates a new file in dir whose name matches pattern
	// (see [os.CreateTemp]), writes data to it and returns its path.
	// A partially written file is removed before an error is returned.
	WriteTemp(dir, pattern string, data []byte) (string, error)
}

// OSFS implements [FS] by delegating to the os package.
type OSFS struct{}

// MkdirAll delegates to [os.MkdirAll].
func (OSFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// WriteFile delegates to [os.WriteFile].
func (OSFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// ReadFile delegates to [os.ReadFile].
func (OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Stat delegates to [os.Stat].
func (OSFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// ReadDir delegates to [os.ReadDir].
func (OSFS) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

// Remove delegates to [os.Remove].
func (OSFS) Remove(name string) error {
	return os.Remove(name)
}

// WriteTemp creates the file with [os.CreateTemp].
func (OSFS) WriteTemp(dir, pattern string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// Package fs provides filesystem utilities for governor.
// This file implements path canonicalization for job registration.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotRegularFile is returned when a canonical path resolves to something
// that cannot be executed as a job (a directory, device, socket, ...).
type ErrNotRegularFile struct {
	Path string
	Mode os.FileMode
}

func (e *ErrNotRegularFile) Error() string {
	return fmt.Sprintf("%q is not a regular file (mode %s)", e.Path, e.Mode.Type())
}

// Canonicalize returns the absolute, symlink-free, cleaned form of path.
//
// Resolution steps:
//   - Relative paths are made absolute against the working directory
//   - filepath.EvalSymlinks follows every link and normalizes . and ..
//   - The result must be a regular file
//
// A missing target or dangling symlink returns the underlying *os.PathError
// (os.IsNotExist reports true). A non-regular target returns *ErrNotRegularFile.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	resolved = filepath.Clean(resolved)

	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", &ErrNotRegularFile{Path: resolved, Mode: info.Mode()}
	}
	return resolved, nil
}

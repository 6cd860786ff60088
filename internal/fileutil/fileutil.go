// Package fileutil provides small filesystem helpers for the engine; the
// input linker uses FileExists for its existence check.
package fileutil

import (
	"fmt"
	"os"
)

// MustGetwd returns the current working directory, panicking if it cannot
// be determined. Intended for use during process startup only.
func MustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("fileutil: failed to get working directory: %v", err))
	}
	return wd
}

// MustTempDir creates a new temporary directory under parent (os.TempDir
// if parent is empty) using pattern, panicking on failure. The caller owns
// removal of the returned directory.
func MustTempDir(parent, pattern string) string {
	dir, err := os.MkdirTemp(parent, pattern)
	if err != nil {
		panic(fmt.Sprintf("fileutil: failed to create temp dir: %v", err))
	}
	return dir
}

// FileExists reports whether path exists on disk.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// OpenOrCreateFile opens path for appending, creating it (and any missing
// parent directory is the caller's responsibility) with owner-only
// permissions if it does not already exist.
func OpenOrCreateFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("fileutil: open %s: %w", path, err)
	}
	return f, nil
}

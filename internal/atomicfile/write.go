// Package atomicfile writes generated files and caches with a
// temporary-file-and-rename strategy so readers never see partial output.

package atomicfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Write atomically replaces path with data. Missing parent directories are
// created. The data is written to a temp file in the target directory, synced,
// chmod'ed to perm, and renamed over path; the temp file is removed on any
// failure.
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := f.Name()
	var success bool
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return nil
}

// WriteIfChanged calls [Write] only when the existing content of path differs
// from data, leaving the mtime untouched otherwise. Build systems that compare
// timestamps then skip recompiling units that include an unchanged header.
// It reports whether the file was written.
func WriteIfChanged(path string, data []byte, perm os.FileMode) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read existing file: %w", err)
	}
	if err := Write(path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

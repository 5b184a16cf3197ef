package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/boshu2/conductor/internal/tplan"
)

// ReadState loads the record in sessionDir. Absent, unreadable and malformed
// files all yield ErrStateNotFound so callers can treat them alike.
func ReadState(sessionDir string) (*tplan.State, error) {
	data, err := os.ReadFile(StatePath(sessionDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateNotFound, err)
	}

	var st tplan.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStateNotFound, StatePath(sessionDir), err)
	}
	return &st, nil
}

// WriteState replaces the record in sessionDir as a whole. The directory is
// created when absent; readers never observe a partial file.
func WriteState(sessionDir string, st *tplan.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	return atomicWrite(StatePath(sessionDir), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// EnsureGitignore writes the ignore marker into markerRoot unless one is
// already there; existing contents are never touched.
func EnsureGitignore(markerRoot string) error {
	if err := os.MkdirAll(markerRoot, 0755); err != nil {
		return fmt.Errorf("create %s: %w", markerRoot, err)
	}

	path := filepath.Join(markerRoot, GitignoreFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(gitignoreContent); err != nil {
		_ = f.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// TruncateIfExists empties the file at path when it exists and reports
// whether it did. A missing file is not an error.
func TruncateIfExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	if err := os.Truncate(path, 0); err != nil {
		return false, fmt.Errorf("truncate %s: %w", path, err)
	}
	return true, nil
}

// atomicWrite writes to a temp file and renames atomically.
func atomicWrite(path string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create temp file in same directory for atomic rename
	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if err := writeFunc(tmpFile); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write content: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}

package util

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ReadJSON reads path into out. It reports false when the file does not exist.
func ReadJSON(path string, out any) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", path)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return true, errors.Wrapf(err, "failed to decode %s", path)
	}

	return true, nil
}

// WriteJSON writes v through a temp file that atomically replaces path.
func WriteJSON(path string, v any, mode os.FileMode) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode json")
	}

	return WriteFileAtomic(path, b, mode)
}

// WriteFileAtomic writes b to a temp file in the same directory, then renames it over path.
func WriteFileAtomic(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "failed to chmod temp file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}

	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", path)
	}

	return nil
}

// RemoveFile deletes path; a missing file is not an error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "failed to remove %s", path)
	}

	return nil
}

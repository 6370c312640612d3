package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const defaultFileMode fs.FileMode = 0o644

// WriteAtomic replaces path with data. The bytes go to a hidden sibling file
// that is synced and renamed over path, so a reader sees either the old
// document or the new one. An existing file keeps its permissions.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	mode, err := targetMode(path)
	if err != nil {
		return err
	}

	tmpName, err := writeTemp(dir, filepath.Base(path), data, mode)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v to path as indented JSON with a trailing newline.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return WriteAtomic(path, append(data, '\n'))
}

func targetMode(path string) (fs.FileMode, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return defaultFileMode, nil
	case err != nil:
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	case info.IsDir():
		return 0, fmt.Errorf("cannot write %s: is a directory", path)
	}
	return info.Mode().Perm(), nil
}

// writeTemp stores data in a new temp file next to the target and returns its
// name. The temp file is removed on any failure.
func writeTemp(dir, base string, data []byte, mode fs.FileMode) (name string, err error) {
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", base, err)
	}
	name = f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(name)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", base, err)
	}
	if err = f.Chmod(mode); err != nil {
		return "", fmt.Errorf("failed to set mode on %s: %w", base, err)
	}
	if err = f.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync %s: %w", base, err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", base, err)
	}
	return name, nil
}

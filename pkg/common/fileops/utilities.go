package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kinnison/git-sync/pkg/repository/scpath"
)

// Exists checks if a file or directory exists at the given path.
// Returns an error only if there's a filesystem error other than non-existence.
func Exists(p scpath.AbsolutePath) (bool, error) {
	_, err := os.Stat(p.String())
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("check existence: %w", err)
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path scpath.AbsolutePath) error {
	if err := os.MkdirAll(path.String(), 0755); err != nil {
		return fmt.Errorf("ensure directory %s: %w", path.String(), err)
	}
	return nil
}

// EnsureParentDir ensures that the parent directory of a file exists.
func EnsureParentDir(p scpath.AbsolutePath) error {
	dir := filepath.Dir(p.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ensure parent directory: %w", err)
	}
	return nil
}

// ReadString reads a file and returns its content as a trimmed string.
// A missing file yields an empty string and a nil error.
func ReadString(p scpath.AbsolutePath) (string, error) {
	data, err := os.ReadFile(p.String())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SafeRemove removes a file if it exists.
func SafeRemove(p scpath.AbsolutePath) error {
	if err := os.Remove(p.String()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// IsDirectory checks if the path exists and is a directory.
func IsDirectory(p scpath.AbsolutePath) (bool, error) {
	info, err := os.Stat(p.String())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat path: %w", err)
	}
	return info.IsDir(), nil
}

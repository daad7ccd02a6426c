package scpath

import (
	"fmt"
	"path/filepath"
)

// AbsolutePath is an absolute filesystem path.
type AbsolutePath string

// RepositoryPath represents an absolute path to a repository root directory.
// For a bare repository the root and the storage directory coincide.
// Example: "/home/user/myproject" or "/srv/mirrors/project.git"
type RepositoryPath string

// StorePath is the directory that holds objects/, refs/ and HEAD.
// Examples: "/home/user/myproject/.source", "/srv/mirrors/project.git"
type StorePath string

// String returns the path as a string
func (ap AbsolutePath) String() string {
	return string(ap)
}

// Join joins path elements to the path
func (ap AbsolutePath) Join(elem ...string) AbsolutePath {
	parts := append([]string{string(ap)}, elem...)
	return AbsolutePath(filepath.Join(parts...))
}

// Dir returns all but the last element of the path
func (ap AbsolutePath) Dir() AbsolutePath {
	return AbsolutePath(filepath.Dir(string(ap)))
}

// NewAbsolutePath resolves path against the working directory.
func NewAbsolutePath(path string) (AbsolutePath, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return AbsolutePath(abs), nil
}

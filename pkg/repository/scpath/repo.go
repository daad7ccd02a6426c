package scpath

import (
	"fmt"
	"path/filepath"
)

// String returns the path as a string
func (rp RepositoryPath) String() string {
	return string(rp)
}

// IsValid checks if this is a valid absolute path
func (rp RepositoryPath) IsValid() bool {
	return filepath.IsAbs(string(rp))
}

// Join joins path elements to the repository path
func (rp RepositoryPath) Join(elem ...string) AbsolutePath {
	return AbsolutePath(rp).Join(elem...)
}

// SourcePath returns the path to the .source directory
func (rp RepositoryPath) SourcePath() StorePath {
	return StorePath(filepath.Join(string(rp), SourceDir))
}

// GitPath returns the path to the .git directory
func (rp RepositoryPath) GitPath() StorePath {
	return StorePath(filepath.Join(string(rp), GitDir))
}

// BarePath treats the repository root as its own storage directory.
func (rp RepositoryPath) BarePath() StorePath {
	return StorePath(rp)
}

// NewRepositoryPath creates a new RepositoryPath from a string
func NewRepositoryPath(path string) (RepositoryPath, error) {
	if path == "" {
		return "", fmt.Errorf("repository path cannot be empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return RepositoryPath(absPath), nil
}

package refs

import (
	"fmt"
	"path"
	"strings"
)

// RefPath represents a Git reference path
// Examples: "refs/heads/main", "refs/tags/v1.0.0", "HEAD"
type RefPath string

// String returns the reference path as a string
func (rp RefPath) String() string {
	return string(rp)
}

// IsValid applies the subset of git's ref-name rules that matter for a
// name used as a file path.
func (rp RefPath) IsValid() bool {
	s := string(rp)
	if len(s) == 0 {
		return false
	}

	invalidChars := []string{" ", "~", "^", ":", "?", "*", "[", "\\", "..", "@{", "//", "\x00", "\t", "\n"}
	for _, invalid := range invalidChars {
		if strings.Contains(s, invalid) {
			return false
		}
	}

	if strings.HasSuffix(s, ".lock") || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "/") {
		return false
	}

	for _, component := range strings.Split(s, "/") {
		if strings.HasPrefix(component, ".") {
			return false
		}
	}
	return true
}

// Validate returns an error describing why the name cannot be written.
func (rp RefPath) Validate() error {
	if !rp.IsValid() {
		return fmt.Errorf("invalid reference name %q", string(rp))
	}
	if !rp.IsTransferable() {
		return fmt.Errorf("reference %q is outside %s", string(rp), RefPrefix)
	}
	return nil
}

// IsTransferable reports whether the name lives under refs/. HEAD and other
// top-level pseudo refs are never copied.
func (rp RefPath) IsTransferable() bool {
	return strings.HasPrefix(string(rp), RefPrefix) && len(rp) > len(RefPrefix)
}

// IsBranch checks if this is a branch reference
func (rp RefPath) IsBranch() bool {
	return strings.HasPrefix(string(rp), "refs/heads/")
}

// IsTag checks if this is a tag reference
func (rp RefPath) IsTag() bool {
	return strings.HasPrefix(string(rp), "refs/tags/")
}

// ShortName returns the short name of the reference
// "refs/heads/main" -> "main"
// "refs/tags/v1.0.0" -> "v1.0.0"
func (rp RefPath) ShortName() string {
	s := string(rp)
	if rp.IsBranch() {
		return strings.TrimPrefix(s, "refs/heads/")
	}
	if rp.IsTag() {
		return strings.TrimPrefix(s, "refs/tags/")
	}
	return s
}

// Matches reports whether the name matches a shell glob such as
// "refs/heads/*". A pattern ending in "/" matches everything beneath it.
// Malformed patterns match nothing.
func (rp RefPath) Matches(pattern string) bool {
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(string(rp), pattern)
	}
	ok, err := path.Match(pattern, string(rp))
	return err == nil && ok
}

// NewBranchRef creates a branch reference path
func NewBranchRef(name string) (RefPath, error) {
	if len(name) == 0 {
		return "", fmt.Errorf("branch name cannot be empty")
	}
	refPath := RefPath("refs/heads/" + name)
	if !refPath.IsValid() {
		return "", fmt.Errorf("invalid branch name: %s", name)
	}
	return refPath, nil
}

// NewTagRef creates a tag reference path
func NewTagRef(name string) (RefPath, error) {
	if len(name) == 0 {
		return "", fmt.Errorf("tag name cannot be empty")
	}
	refPath := RefPath("refs/tags/" + name)
	if !refPath.IsValid() {
		return "", fmt.Errorf("invalid tag name: %s", name)
	}
	return refPath, nil
}

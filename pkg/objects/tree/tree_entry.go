package tree

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kinnison/git-sync/pkg/objects"
)

// TreeEntry represents a single entry in a Git tree object.
//
// Serialized format in tree object:
// [mode] [space] [filename] [null byte] [20-byte SHA-1 binary]
//
// Example serialized entry for "hello.txt" file:
// "100644 hello.txt\0[20 bytes of SHA-1]"
type TreeEntry struct {
	Mode objects.FileMode
	Name string
	Hash objects.ObjectHash
}

// NewTreeEntry creates a new TreeEntry with validation
func NewTreeEntry(mode objects.FileMode, name string, hash objects.ObjectHash) (*TreeEntry, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := hash.Validate(); err != nil {
		return nil, fmt.Errorf("entry %q: %w", name, err)
	}
	return &TreeEntry{Mode: mode, Name: name, Hash: hash}, nil
}

// IsDirectory returns true if this entry is a subtree
func (e *TreeEntry) IsDirectory() bool {
	return e.Mode.IsDirectory()
}

// IsSubmodule returns true if this entry is a gitlink
func (e *TreeEntry) IsSubmodule() bool {
	return e.Mode.IsGitlink()
}

// appendTo serializes the entry onto buf.
func (e *TreeEntry) appendTo(buf *bytes.Buffer) error {
	raw, err := e.Hash.Raw()
	if err != nil {
		return fmt.Errorf("entry %q: %w", e.Name, err)
	}
	buf.WriteString(e.Mode.ToOctalString())
	buf.WriteByte(objects.SpaceByte)
	buf.WriteString(e.Name)
	buf.WriteByte(objects.NullByte)
	buf.Write(raw[:])
	return nil
}

// sortKey is the name git compares entries by: subtrees sort as if their
// name ended in "/".
func (e *TreeEntry) sortKey() string {
	if e.IsDirectory() {
		return e.Name + "/"
	}
	return e.Name
}

// deserializeTreeEntry reads one entry starting at offset and returns the
// offset of the next one.
func deserializeTreeEntry(data []byte, offset int) (*TreeEntry, int, error) {
	spaceIndex := bytes.IndexByte(data[offset:], objects.SpaceByte)
	if spaceIndex == -1 {
		return nil, 0, fmt.Errorf("invalid tree entry: missing space")
	}
	spaceIndex += offset

	mode, err := objects.FromOctalString(string(data[offset:spaceIndex]))
	if err != nil {
		return nil, 0, fmt.Errorf("invalid tree entry: %w", err)
	}

	nullIndex := bytes.IndexByte(data[spaceIndex+1:], objects.NullByte)
	if nullIndex == -1 {
		return nil, 0, fmt.Errorf("invalid tree entry: missing null byte")
	}
	nullIndex += spaceIndex + 1

	name := string(data[spaceIndex+1 : nullIndex])

	start := nullIndex + 1
	end := start + objects.RawHashLength
	if end > len(data) {
		return nil, 0, fmt.Errorf("invalid tree entry: incomplete SHA")
	}

	entry, err := NewTreeEntry(mode, name, objects.ObjectHash(hex.EncodeToString(data[start:end])))
	if err != nil {
		return nil, 0, err
	}
	return entry, end, nil
}

// validateName rejects names git would never write into a tree.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("invalid characters in name: %q", name)
	}
	return nil
}

package tree

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/kinnison/git-sync/pkg/objects"
)

// Tree is a parsed tree object: a directory snapshot whose entries point at
// blobs, subtrees and (for submodules) commits in other repositories.
//
// Entries are kept in git order so that building a tree from the same
// entries always produces the same hash.
type Tree struct {
	entries []*TreeEntry
}

// NewTree creates a tree from entries in any order.
func NewTree(entries []*TreeEntry) *Tree {
	sorted := make([]*TreeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].sortKey() < sorted[j].sortKey()
	})
	return &Tree{entries: sorted}
}

// Parse decodes a tree payload (no header). Entry order is preserved as
// stored so that re-serializing yields identical bytes.
func Parse(payload []byte) (*Tree, error) {
	var entries []*TreeEntry
	offset := 0
	for offset < len(payload) {
		entry, next, err := deserializeTreeEntry(payload, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tree entry at offset %d: %w", offset, err)
		}
		entries = append(entries, entry)
		offset = next
	}
	return &Tree{entries: entries}, nil
}

// Entries returns a copy of the tree entries
func (t *Tree) Entries() []*TreeEntry {
	entries := make([]*TreeEntry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

// IsEmpty returns true if the tree has no entries
func (t *Tree) IsEmpty() bool {
	return len(t.entries) == 0
}

// References lists the objects this tree points to inside the same
// repository. Gitlink entries are skipped.
func (t *Tree) References() []objects.ObjectHash {
	refs := make([]objects.ObjectHash, 0, len(t.entries))
	for _, e := range t.entries {
		if e.IsSubmodule() {
			continue
		}
		refs = append(refs, e.Hash)
	}
	return refs
}

// Payload serializes the entries.
func (t *Tree) Payload() ([]byte, error) {
	var buf bytes.Buffer
	for _, entry := range t.entries {
		if err := entry.appendTo(&buf); err != nil {
			return nil, fmt.Errorf("failed to serialize tree entry: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// ToStoredObject serializes the tree and computes its id.
func (t *Tree) ToStoredObject() (*objects.StoredObject, error) {
	payload, err := t.Payload()
	if err != nil {
		return nil, err
	}
	return objects.NewStoredObject(objects.TreeType, payload), nil
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{entries: %d}", len(t.entries))
}

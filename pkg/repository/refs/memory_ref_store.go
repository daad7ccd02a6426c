package refs

import (
	"sync"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/objects"
)

// MemoryRefStore is a RefStore held in a map.
type MemoryRefStore struct {
	mu   sync.Mutex
	refs map[RefPath]objects.ObjectHash
	head RefPath
}

// NewMemoryRefStore creates an empty store.
func NewMemoryRefStore() *MemoryRefStore {
	return &MemoryRefStore{refs: make(map[RefPath]objects.ObjectHash)}
}

// List returns all references sorted by name.
func (m *MemoryRefStore) List() ([]Reference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Reference, 0, len(m.refs))
	for name, hash := range m.refs {
		out = append(out, Reference{Name: name, Target: hash})
	}
	SortReferences(out)
	return out, nil
}

// Get returns the object name points to.
func (m *MemoryRefStore) Get(name RefPath) (objects.ObjectHash, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.refs[name]
	return hash, ok, nil
}

// CompareAndSet atomically moves name from expectedOld to newHash.
func (m *MemoryRefStore) CompareAndSet(name RefPath, expectedOld objects.ObjectHash, hasOld bool, newHash objects.ObjectHash) (bool, error) {
	if e := name.Validate(); e != nil {
		return false, NewRefError(err.CodeInvalidInput, "compare_and_set", name, "", e)
	}
	if e := newHash.Validate(); e != nil {
		return false, NewRefError(err.CodeInvalidInput, "compare_and_set", name, "invalid target", e)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.refs[name]
	if exists != hasOld || (hasOld && current != expectedOld) {
		return false, nil
	}
	m.refs[name] = newHash
	return true, nil
}

// SymbolicHead returns the HEAD target, if set.
func (m *MemoryRefStore) SymbolicHead() (RefPath, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.head, m.head != "", nil
}

// SetSymbolicHead points HEAD at target.
func (m *MemoryRefStore) SetSymbolicHead(target RefPath) error {
	if !target.IsValid() {
		return NewRefError(err.CodeInvalidInput, "write_head", target, "", nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = target
	return nil
}

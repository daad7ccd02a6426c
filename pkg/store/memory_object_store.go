package store

import (
	"sync"

	"github.com/kinnison/git-sync/pkg/objects"
)

// MemoryObjectStore is an ObjectStore held in a map.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[objects.ObjectHash]*objects.StoredObject
}

// NewMemoryObjectStore creates an empty store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[objects.ObjectHash]*objects.StoredObject)}
}

// Has reports whether hash is stored.
func (m *MemoryObjectStore) Has(hash objects.ObjectHash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[hash]
	return ok, nil
}

// Get returns a copy of the stored object after verifying it.
func (m *MemoryObjectStore) Get(hash objects.ObjectHash) (*objects.StoredObject, error) {
	m.mu.RLock()
	obj, ok := m.objects[hash]
	m.mu.RUnlock()
	if !ok {
		return nil, NewNotFoundError("get", hash)
	}

	out := obj.Clone()
	if err := objects.Verify(out); err != nil {
		return nil, NewObjectError("get", hash, err)
	}
	return out, nil
}

// Put stores a private copy of obj.
func (m *MemoryObjectStore) Put(obj *objects.StoredObject) error {
	if err := objects.Verify(obj); err != nil {
		var hash objects.ObjectHash
		if obj != nil {
			hash = obj.ID
		}
		return NewObjectError("put", hash, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[obj.ID]; ok {
		return nil
	}
	m.objects[obj.ID] = obj.Clone()
	return nil
}

// Len returns the number of stored objects.
func (m *MemoryObjectStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Hashes returns every stored id in no particular order.
func (m *MemoryObjectStore) Hashes() []objects.ObjectHash {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]objects.ObjectHash, 0, len(m.objects))
	for h := range m.objects {
		out = append(out, h)
	}
	return out
}

// Tamper replaces the payload stored under hash without updating the id.
// It exists so that corruption handling can be exercised.
func (m *MemoryObjectStore) Tamper(hash objects.ObjectHash, payload []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[hash]
	if !ok {
		return false
	}
	obj.Payload = append([]byte(nil), payload...)
	return true
}

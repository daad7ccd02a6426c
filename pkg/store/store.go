package store

import (
	"github.com/kinnison/git-sync/pkg/objects"
)

// ObjectStore is a content-addressed object database.
//
// Implementations must be safe for concurrent use: the transfer engine calls
// Has, Get and Put from several goroutines at once.
type ObjectStore interface {
	// Has reports whether an object with this id is stored. It must not read
	// the object payload.
	Has(hash objects.ObjectHash) (bool, error)

	// Get returns the object stored under hash. It fails with a NOT_FOUND
	// error when absent and a CORRUPT error when the stored content does not
	// hash to hash.
	Get(hash objects.ObjectHash) (*objects.StoredObject, error)

	// Put stores obj. Storing an id that is already present is a no-op
	// success. It fails with a CORRUPT error when obj.Payload does not hash
	// to obj.ID.
	Put(obj *objects.StoredObject) error
}

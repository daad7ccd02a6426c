package blob

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/objects"
)

// Blob is file content. It refers to no other object.
type Blob struct {
	data []byte
}

// New wraps data. The slice is not copied.
func New(data []byte) *Blob {
	return &Blob{data: data}
}

// Parse reads a blob payload. Any byte sequence is a valid blob.
func Parse(payload []byte) *Blob {
	return New(payload)
}

// Content returns the raw bytes.
func (b *Blob) Content() []byte {
	return b.data
}

// Size returns the content length in bytes.
func (b *Blob) Size() int64 {
	return int64(len(b.data))
}

// References always returns nil.
func (b *Blob) References() []objects.ObjectHash {
	return nil
}

// ToStoredObject computes the blob id.
func (b *Blob) ToStoredObject() *objects.StoredObject {
	return objects.NewStoredObject(objects.BlobType, b.data)
}

func (b *Blob) String() string {
	return fmt.Sprintf("Blob{size: %d, hash: %s}", b.Size(), b.ToStoredObject().ID.Short())
}

package objects

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/common/err"
)

// StoredObject is one content-addressed object as it moves between stores.
//
// ID must equal ComputeObjectHash(Type, Payload); stores re-check this with
// Verify on every read and write.
type StoredObject struct {
	ID      ObjectHash
	Type    ObjectType
	Payload []byte
}

// NewStoredObject computes the ID for payload. The payload is not copied.
func NewStoredObject(objType ObjectType, payload []byte) *StoredObject {
	return &StoredObject{
		ID:      ComputeObjectHash(objType, payload),
		Type:    objType,
		Payload: payload,
	}
}

// ParseEnvelope decodes an envelope read from storage under the given id.
// The hash is not checked; call Verify.
func ParseEnvelope(id ObjectHash, data Envelope) (*StoredObject, error) {
	objType, payload, e := data.Parse()
	if e != nil {
		return nil, NewFormatError(id, e)
	}
	return &StoredObject{ID: id, Type: objType, Payload: payload}, nil
}

// Envelope returns the "<type> <size>\0<payload>" form.
func (o *StoredObject) Envelope() Envelope {
	return NewEnvelope(o.Type, o.Payload)
}

// Size returns the payload length.
func (o *StoredObject) Size() int64 {
	return int64(len(o.Payload))
}

// Clone returns a deep copy.
func (o *StoredObject) Clone() *StoredObject {
	payload := make([]byte, len(o.Payload))
	copy(payload, o.Payload)
	return &StoredObject{ID: o.ID, Type: o.Type, Payload: payload}
}

func (o *StoredObject) String() string {
	return fmt.Sprintf("%s %s (%d bytes)", o.Type, o.ID.Short(), len(o.Payload))
}

// Verify recomputes the content hash of obj and compares it with obj.ID.
// It fails with a CORRUPT error on mismatch and INVALID_FORMAT when the
// object has no valid id or type.
func Verify(obj *StoredObject) error {
	if obj == nil {
		return &ObjectError{base: err.New(pkgName, err.CodeInvalidInput, "verify", "nil object", nil)}
	}
	if e := obj.ID.Validate(); e != nil {
		return NewFormatError(obj.ID, e)
	}
	if !obj.Type.IsValid() {
		return NewFormatError(obj.ID, fmt.Errorf("unknown object type: %q", obj.Type))
	}

	actual := ComputeObjectHash(obj.Type, obj.Payload)
	if actual != obj.ID {
		return NewCorruptError(obj.ID, actual)
	}
	return nil
}

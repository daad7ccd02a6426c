package objects

import (
	"bytes"
	"fmt"
	"strconv"
)

// ObjectType represents the type of Git object
type ObjectType string

const (
	BlobType   ObjectType = "blob"
	TreeType   ObjectType = "tree"
	CommitType ObjectType = "commit"
	TagType    ObjectType = "tag"
)

const (
	NullByte  = byte(0)
	SpaceByte = byte(' ')
)

// String implements the Stringer interface
func (o ObjectType) String() string {
	return string(o)
}

// IsValid reports whether o is one of the four object kinds.
func (o ObjectType) IsValid() bool {
	switch o {
	case BlobType, TreeType, CommitType, TagType:
		return true
	default:
		return false
	}
}

// ParseObjectType converts a string to ObjectType
func ParseObjectType(s string) (ObjectType, error) {
	t := ObjectType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown object type: %s", s)
	}
	return t, nil
}

// CreateHeader returns "<type> <size>\0".
func CreateHeader(objType ObjectType, size int64) []byte {
	header := make([]byte, 0, len(objType)+22)
	header = append(header, objType...)
	header = append(header, SpaceByte)
	header = strconv.AppendInt(header, size, 10)
	return append(header, NullByte)
}

// Envelope is an object in its hashed form: "<type> <size>\0<payload>".
type Envelope []byte

// NewEnvelope builds the envelope for a type and payload.
func NewEnvelope(objType ObjectType, payload []byte) Envelope {
	header := CreateHeader(objType, int64(len(payload)))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	return Envelope(append(out, payload...))
}

// Parse splits the envelope into its type and payload and checks that the
// declared size matches the payload length.
func (e Envelope) Parse() (ObjectType, []byte, error) {
	data := []byte(e)
	nullIndex := bytes.IndexByte(data, NullByte)
	if nullIndex == -1 {
		return "", nil, fmt.Errorf("invalid object header: missing null byte")
	}

	spaceIndex := bytes.IndexByte(data[:nullIndex], SpaceByte)
	if spaceIndex == -1 {
		return "", nil, fmt.Errorf("invalid object header: missing space")
	}

	objType, err := ParseObjectType(string(data[:spaceIndex]))
	if err != nil {
		return "", nil, fmt.Errorf("invalid object header: %w", err)
	}

	size, err := strconv.ParseInt(string(data[spaceIndex+1:nullIndex]), 10, 64)
	if err != nil || size < 0 {
		return "", nil, fmt.Errorf("invalid size in header: %q", data[spaceIndex+1:nullIndex])
	}

	payload := data[nullIndex+1:]
	if int64(len(payload)) != size {
		return "", nil, fmt.Errorf("content size mismatch: expected %d, got %d", size, len(payload))
	}

	return objType, payload, nil
}

package objects

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// ObjectHash represents a SHA-1 hash of a Git object (40-character hex string)
// Example: "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"
//
// Hashes are kept in lower case so that plain string comparison is identity.
type ObjectHash string

// ShortHash represents an abbreviated hash (typically 7 characters)
// Example: "e69de29"
type ShortHash string

// RawHash represents a SHA-1 hash as a 20-byte array
type RawHash [20]byte

const (
	// HashLength is the length of a full SHA-1 hash in hex (40 characters)
	HashLength = 40
	// ShortHashLength is the default length for abbreviated hashes (7 characters)
	ShortHashLength = 7
	// RawHashLength is the length of a SHA-1 hash in bytes (20 bytes)
	RawHashLength = 20
)

// ZeroHash returns an all-zero hash. It never names a stored object.
func ZeroHash() ObjectHash {
	return ObjectHash(strings.Repeat("0", HashLength))
}

// NewObjectHash hashes data as-is. Use ComputeObjectHash for object content.
func NewObjectHash(data []byte) ObjectHash {
	hash := sha1.Sum(data)
	return ObjectHash(hex.EncodeToString(hash[:]))
}

// NewObjectHashFromRaw creates an ObjectHash from a 20-byte array
func NewObjectHashFromRaw(raw RawHash) ObjectHash {
	return ObjectHash(hex.EncodeToString(raw[:]))
}

// ParseObjectHash normalises s to lower case and validates it.
func ParseObjectHash(s string) (ObjectHash, error) {
	hash := ObjectHash(strings.ToLower(strings.TrimSpace(s)))
	if err := hash.Validate(); err != nil {
		return "", err
	}
	return hash, nil
}

// ComputeObjectHash computes the object hash from type and payload
// following Git's format: hash("<type> <size>\0<payload>")
func ComputeObjectHash(objType ObjectType, payload []byte) ObjectHash {
	h := sha1.New()
	h.Write(CreateHeader(objType, int64(len(payload))))
	h.Write(payload)
	return ObjectHash(hex.EncodeToString(h.Sum(nil)))
}

// String returns the hash as a string
func (h ObjectHash) String() string {
	return string(h)
}

// IsValid returns true if this is a valid SHA-1 hash
func (h ObjectHash) IsValid() bool {
	return h.Validate() == nil
}

// Validate checks the length and that only lower-case hex digits are used.
func (h ObjectHash) Validate() error {
	if len(h) != HashLength {
		return fmt.Errorf("hash must be %d characters long, got %d", HashLength, len(h))
	}

	for _, c := range h {
		if !isHexChar(c) {
			return fmt.Errorf("hash must contain only lower-case hex characters, found '%c'", c)
		}
	}

	return nil
}

// IsZero returns true if this is the zero hash
func (h ObjectHash) IsZero() bool {
	return h == ZeroHash()
}

// Short returns the abbreviated version of the hash
func (h ObjectHash) Short() ShortHash {
	if len(h) >= ShortHashLength {
		return ShortHash(h[:ShortHashLength])
	}
	return ShortHash(h)
}

// Raw returns the hash as a 20-byte array
func (h ObjectHash) Raw() (RawHash, error) {
	if err := h.Validate(); err != nil {
		return RawHash{}, err
	}
	var raw RawHash
	if _, err := hex.Decode(raw[:], []byte(h)); err != nil {
		return RawHash{}, err
	}
	return raw, nil
}

// MarshalText implements encoding.TextMarshaler
func (h ObjectHash) MarshalText() ([]byte, error) {
	return []byte(h), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (h *ObjectHash) UnmarshalText(text []byte) error {
	hash, err := ParseObjectHash(string(text))
	if err != nil {
		return err
	}
	*h = hash
	return nil
}

// String returns the short hash as a string
func (sh ShortHash) String() string {
	return string(sh)
}

// Hash converts RawHash to ObjectHash
func (rh RawHash) Hash() ObjectHash {
	return NewObjectHashFromRaw(rh)
}

// isHexChar returns true if the character is a lower-case hex character
func isHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

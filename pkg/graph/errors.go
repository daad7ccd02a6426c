package graph

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/objects"
)

const pkgName = "graph"

// Error codes raised while walking.
const (
	// CodeSourceObjectMissing means an object reachable from a root is not in
	// the source store.
	CodeSourceObjectMissing = "SOURCE_OBJECT_MISSING"

	// CodeAdapterIO wraps any other store failure.
	CodeAdapterIO = "ADAPTER_IO"
)

// Sentinels for errors.Is.
var (
	ErrSourceObjectMissing = &err.Error{Code: CodeSourceObjectMissing}
	ErrAdapterIO           = &err.Error{Code: CodeAdapterIO}
	ErrCorrupt             = &err.Error{Code: err.CodeCorrupt}
)

// WalkError reports the object a walk stopped at.
type WalkError struct {
	base *err.Error
	Hash objects.ObjectHash
}

// Error implements the error interface
func (e *WalkError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *WalkError) Unwrap() error {
	return e.base
}

// Code returns the error code.
func (e *WalkError) Code() string {
	return e.base.Code
}

// NewSourceObjectMissingError reports that hash is reachable but absent
// from the source.
func NewSourceObjectMissingError(hash objects.ObjectHash, cause error) *WalkError {
	return &WalkError{
		base: err.New(pkgName, CodeSourceObjectMissing, "walk",
			fmt.Sprintf("object %s missing from source", hash), cause),
		Hash: hash,
	}
}

// NewAdapterIOError wraps a store failure. Unwrap reaches cause unchanged.
func NewAdapterIOError(op string, hash objects.ObjectHash, cause error) *WalkError {
	return &WalkError{
		base: err.New(pkgName, CodeAdapterIO, op, fmt.Sprintf("object %s", hash), cause),
		Hash: hash,
	}
}

// classify maps a store error on a source read to the walk error kinds.
// Corrupt and malformed objects keep their code.
func classify(op string, hash objects.ObjectHash, e error) *WalkError {
	switch {
	case err.IsCode(e, err.CodeNotFound):
		return NewSourceObjectMissingError(hash, e)
	case err.IsCode(e, err.CodeCorrupt):
		return &WalkError{base: err.New(pkgName, err.CodeCorrupt, op, fmt.Sprintf("object %s", hash), e), Hash: hash}
	case err.IsCode(e, err.CodeInvalidFormat):
		return &WalkError{base: err.New(pkgName, err.CodeInvalidFormat, op, fmt.Sprintf("object %s", hash), e), Hash: hash}
	default:
		return NewAdapterIOError(op, hash, e)
	}
}

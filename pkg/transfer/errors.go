package transfer

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/graph"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/repository/refs"
)

const pkgName = "transfer"

// Error codes. Walk failures reuse the graph package codes.
const (
	CodeSourceObjectMissing = graph.CodeSourceObjectMissing
	CodeAdapterIO           = graph.CodeAdapterIO
	CodeCorrupt             = err.CodeCorrupt
	CodeReferenceConflict   = "REFERENCE_CONFLICT"
	CodeIncompleteTransfer  = "INCOMPLETE_TRANSFER"
)

// Sentinels for errors.Is.
var (
	ErrSourceObjectMissing = graph.ErrSourceObjectMissing
	ErrAdapterIO           = graph.ErrAdapterIO
	ErrCorrupt             = graph.ErrCorrupt
	ErrReferenceConflict   = &err.Error{Code: CodeReferenceConflict}
	ErrIncompleteTransfer  = &err.Error{Code: CodeIncompleteTransfer}
)

// TransferError is raised by the engine. Hash or Ref is set depending on
// what failed.
type TransferError struct {
	base *err.Error
	Hash objects.ObjectHash
	Ref  refs.RefPath
}

// Error implements the error interface
func (e *TransferError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *TransferError) Unwrap() error {
	return e.base
}

// Code returns the error code.
func (e *TransferError) Code() string {
	return e.base.Code
}

// NewReferenceConflictError reports that name changed in the target while
// it was being updated.
func NewReferenceConflictError(name refs.RefPath) *TransferError {
	return &TransferError{
		base: err.New(pkgName, CodeReferenceConflict, "update_reference",
			fmt.Sprintf("reference %s changed concurrently", name), nil),
		Ref: name,
	}
}

// NewIncompleteTransferError reports that ref's target is still missing
// after the object phase.
func NewIncompleteTransferError(hash objects.ObjectHash, ref refs.RefPath) *TransferError {
	return &TransferError{
		base: err.New(pkgName, CodeIncompleteTransfer, "barrier",
			fmt.Sprintf("target of %s (%s) missing after copy", ref, hash), nil),
		Hash: hash,
		Ref:  ref,
	}
}

// NewCorruptError reports an object whose content does not match its id.
func NewCorruptError(op string, hash objects.ObjectHash, cause error) *TransferError {
	return &TransferError{
		base: err.New(pkgName, CodeCorrupt, op, fmt.Sprintf("object %s", hash), cause),
		Hash: hash,
	}
}

// NewAdapterIOError wraps a store failure. Unwrap reaches cause unchanged.
func NewAdapterIOError(op string, hash objects.ObjectHash, ref refs.RefPath, cause error) *TransferError {
	what := fmt.Sprintf("object %s", hash)
	if ref != "" {
		what = fmt.Sprintf("reference %s", ref)
	}
	return &TransferError{
		base: err.New(pkgName, CodeAdapterIO, op, what, cause),
		Hash: hash,
		Ref:  ref,
	}
}

// classifyObjectError maps a store error raised while copying hash.
func classifyObjectError(op string, hash objects.ObjectHash, e error) error {
	switch {
	case err.IsCode(e, err.CodeNotFound):
		return graph.NewSourceObjectMissingError(hash, e)
	case err.IsCode(e, err.CodeCorrupt):
		return NewCorruptError(op, hash, e)
	default:
		return NewAdapterIOError(op, hash, "", e)
	}
}

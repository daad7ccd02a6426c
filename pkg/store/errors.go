package store

import (
	"errors"
	"fmt"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/objects"
)

const pkgName = "store"

// Sentinels for errors.Is. They match any error carrying the same code.
var (
	ErrNotFound = &err.Error{Code: err.CodeNotFound}
	ErrCorrupt  = &err.Error{Code: err.CodeCorrupt}
	ErrIO       = &err.Error{Code: err.CodeIO}
)

// StoreError reports a failed operation on a single object.
type StoreError struct {
	base *err.Error
	Hash objects.ObjectHash
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.base
}

// Code returns the error code.
func (e *StoreError) Code() string {
	return e.base.Code
}

// NewNotFoundError reports that hash is not stored.
func NewNotFoundError(op string, hash objects.ObjectHash) *StoreError {
	return &StoreError{
		base: err.New(pkgName, err.CodeNotFound, op, fmt.Sprintf("object %s not found", hash), nil),
		Hash: hash,
	}
}

// NewIOError wraps a failure of the underlying storage.
func NewIOError(op string, hash objects.ObjectHash, cause error) *StoreError {
	return &StoreError{
		base: err.New(pkgName, err.CodeIO, op, fmt.Sprintf("object %s", hash), cause),
		Hash: hash,
	}
}

// NewObjectError lifts a verification or parse failure from the objects
// package, keeping its code. Other causes are reported as INVALID_FORMAT.
func NewObjectError(op string, hash objects.ObjectHash, cause error) *StoreError {
	code := err.CodeInvalidFormat
	var oe *objects.ObjectError
	if errors.As(cause, &oe) {
		code = oe.Code()
	}
	return &StoreError{
		base: err.New(pkgName, code, op, fmt.Sprintf("object %s", hash), cause),
		Hash: hash,
	}
}

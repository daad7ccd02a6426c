package objects

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/common/err"
)

const pkgName = "objects"

// ErrCorrupt matches any error reporting content that does not hash to its id.
var ErrCorrupt = &err.Error{Code: err.CodeCorrupt}

// ErrInvalidFormat matches any error reporting an unparsable object.
var ErrInvalidFormat = &err.Error{Code: err.CodeInvalidFormat}

// ObjectError is an error about a single object.
type ObjectError struct {
	base *err.Error
	Hash ObjectHash
}

// NewCorruptError reports that the content stored under expected hashes to actual.
func NewCorruptError(expected, actual ObjectHash) *ObjectError {
	return &ObjectError{
		base: err.New(pkgName, err.CodeCorrupt, "verify",
			fmt.Sprintf("object %s hashes to %s", expected, actual), nil),
		Hash: expected,
	}
}

// NewFormatError reports a payload or header that could not be parsed.
func NewFormatError(hash ObjectHash, cause error) *ObjectError {
	msg := "malformed object"
	if hash != "" {
		msg = fmt.Sprintf("malformed object %s", hash)
	}
	return &ObjectError{
		base: err.New(pkgName, err.CodeInvalidFormat, "parse", msg, cause),
		Hash: hash,
	}
}

// Error implements the error interface
func (e *ObjectError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *ObjectError) Unwrap() error {
	return e.base
}

// Code returns the error code.
func (e *ObjectError) Code() string {
	return e.base.Code
}

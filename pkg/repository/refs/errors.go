package refs

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/common/err"
)

const pkgName = "refs"

// Sentinels for errors.Is.
var (
	ErrInvalidName = &err.Error{Code: err.CodeInvalidInput}
	ErrLockFailed  = &err.Error{Code: err.CodeLockFailed}
	ErrCorrupt     = &err.Error{Code: err.CodeInvalidFormat}
	ErrIO          = &err.Error{Code: err.CodeIO}
)

// RefError reports a failed operation on one reference.
type RefError struct {
	base *err.Error
	Name RefPath
}

// NewRefError builds a RefError. An empty msg names the reference.
func NewRefError(code, op string, name RefPath, msg string, cause error) *RefError {
	if msg == "" {
		msg = fmt.Sprintf("reference %s", name)
	}
	return &RefError{base: err.New(pkgName, code, op, msg, cause), Name: name}
}

// Error implements the error interface
func (e *RefError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *RefError) Unwrap() error {
	return e.base
}

// Code returns the error code.
func (e *RefError) Code() string {
	return e.base.Code
}

package err

import (
	"errors"
	"strings"
)

// Error is the base error type shared by every package in the module.
//
// Package-specific errors wrap it and add domain fields (an object hash, a
// reference name). Matching with errors.Is is done by Code, so two errors
// raised in different packages for the same condition compare equal.
type Error struct {
	// Package identifies the originating package (e.g., "store", "refs", "transfer")
	Package string

	// Code is a machine-readable error code, one of the Code* constants or a
	// package-specific UPPER_SNAKE_CASE value.
	Code string

	// Op is the operation being performed when the error occurred,
	// e.g. "get", "put", "compare_and_set".
	Op string

	// Message provides brief human-readable context.
	Message string

	// Err is the wrapped error. Nil for leaf errors.
	Err error
}

// Error implements the error interface.
// Format: [package][code] operation: message: wrapped_error
func (e *Error) Error() string {
	var parts []string

	var prefix strings.Builder
	if e.Package != "" {
		prefix.WriteString("[")
		prefix.WriteString(e.Package)
		prefix.WriteString("]")
	}
	if e.Code != "" {
		prefix.WriteString("[")
		prefix.WriteString(e.Code)
		prefix.WriteString("]")
	}
	if prefix.Len() > 0 {
		parts = append(parts, prefix.String())
	}

	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	result := strings.Join(parts, ": ")

	if e.Err != nil {
		if result != "" {
			result += ": " + e.Err.Error()
		} else {
			result = e.Err.Error()
		}
	}

	return result
}

// Unwrap returns the underlying error for errors.Is() and errors.As() support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error carrying the same non-empty code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// New creates a new base error with the specified fields.
func New(pkg, code, op, message string, err error) *Error {
	return &Error{
		Package: pkg,
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with package and operation context.
// Returns nil if err is nil.
func Wrap(err error, pkg, op string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Package: pkg,
		Op:      op,
		Err:     err,
	}
}

// WrapWithCode wraps an error with package, operation, and code.
// Returns nil if err is nil.
func WrapWithCode(err error, pkg, code, op string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Package: pkg,
		Code:    code,
		Op:      op,
		Err:     err,
	}
}

// Standard error codes used across packages.
const (
	// CodeInvalidInput indicates invalid or malformed input parameters
	CodeInvalidInput = "INVALID_INPUT"

	// CodeNotFound indicates a requested object or reference does not exist
	CodeNotFound = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists when it shouldn't
	CodeAlreadyExists = "ALREADY_EXISTS"

	// CodeInternal indicates an unexpected internal error
	CodeInternal = "INTERNAL"

	// CodeLockFailed indicates failure to acquire a required lock
	CodeLockFailed = "LOCK_FAILED"

	// CodeConflict indicates the stored state changed underneath the caller
	CodeConflict = "CONFLICT"

	// CodeInvalidFormat indicates data is in an invalid format
	CodeInvalidFormat = "INVALID_FORMAT"

	// CodeCorrupt indicates stored content does not hash to its identifier
	CodeCorrupt = "CORRUPT"

	// CodeIO indicates the underlying storage failed
	CodeIO = "IO"
)

// IsCode checks if an error has a specific error code.
// Works with wrapped errors.
func IsCode(err error, code string) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// GetCode extracts the outermost error code from an error.
// Returns empty string if the error is not a base Error.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetPackage extracts the package name from an error.
// Returns empty string if the error is not a base Error.
func GetPackage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Package
	}
	return ""
}

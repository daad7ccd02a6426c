// Package err provides the structured error type used across git-sync.
//
// Every package reports failures as an *Error (or a type embedding one) that
// carries the package name, a machine-readable code and the failing operation.
// Codes are what callers branch on:
//
//	if err.IsCode(e, err.CodeCorrupt) {
//	    // stored content no longer matches its hash
//	}
//
// Packages that need extra fields wrap a *Error and unwrap to it:
//
//	type StoreError struct {
//	    base *err.Error
//	    Hash objects.ObjectHash
//	}
//
//	func (e *StoreError) Error() string { return e.base.Error() }
//	func (e *StoreError) Unwrap() error { return e.base }
//
// errors.Is matches two *Error values when their codes are equal, so a
// package may expose sentinels such as store.ErrNotFound and callers can test
// for them regardless of which layer produced the error.
package err

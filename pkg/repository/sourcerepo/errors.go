package sourcerepo

import (
	"fmt"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
)

const pkgName = "sourcerepo"

// Sentinels for errors.Is.
var (
	ErrNotRepository = &err.Error{Code: err.CodeNotFound}
	ErrAlreadyExists = &err.Error{Code: err.CodeAlreadyExists}
)

// RepoError reports a failure to open or create the repository at Path.
type RepoError struct {
	base *err.Error
	Path scpath.RepositoryPath
}

func newRepoError(code, op string, path scpath.RepositoryPath, msg string, cause error) *RepoError {
	if msg == "" {
		msg = fmt.Sprintf("repository %s", path)
	}
	return &RepoError{base: err.New(pkgName, code, op, msg, cause), Path: path}
}

// Error implements the error interface
func (e *RepoError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *RepoError) Unwrap() error {
	return e.base
}

// Code returns the error code.
func (e *RepoError) Code() string {
	return e.base.Code
}

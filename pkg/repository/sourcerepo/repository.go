package sourcerepo

import (
	"fmt"
	"strings"

	"github.com/kinnison/git-sync/pkg/repository/refs"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
	"github.com/kinnison/git-sync/pkg/store"
)

// Backend selects the storage implementation behind a repository.
type Backend string

const (
	// BackendAuto picks native for ".source" repositories and git otherwise.
	BackendAuto Backend = "auto"

	// BackendNative uses the loose-file object and reference stores.
	BackendNative Backend = "native"

	// BackendGit uses go-git storage, which also reads packfiles.
	BackendGit Backend = "git"

	// BackendMemory keeps everything in memory. Only NewMemory returns it.
	BackendMemory Backend = "memory"
)

// ParseBackend accepts "auto", "native" or "git". Empty means auto.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendNative, BackendGit:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want auto, native or git)", s)
	}
}

// Layout is the on-disk shape of a repository.
type Layout string

const (
	// LayoutSource is a working directory with a ".source" storage dir.
	LayoutSource Layout = "source"

	// LayoutGit is a working directory with a ".git" storage dir.
	LayoutGit Layout = "git"

	// LayoutBare keeps objects/, refs/ and HEAD directly in the root.
	LayoutBare Layout = "bare"
)

// Repository pairs an object store with a reference store.
//
// The transfer engine only uses Objects and Refs. The remaining fields
// describe where the stores came from and are empty for memory
// repositories.
type Repository struct {
	Path    scpath.RepositoryPath
	Dir     scpath.StorePath
	Layout  Layout
	Backend Backend

	Objects store.ObjectStore
	Refs    refs.RefStore
}

// Head returns the branch HEAD points to, when the reference store keeps a
// symbolic HEAD.
func (r *Repository) Head() (refs.RefPath, bool, error) {
	hs, ok := r.Refs.(refs.HeadStore)
	if !ok {
		return "", false, nil
	}
	return hs.SymbolicHead()
}

// SetHead points HEAD at target. Stores without a HEAD ignore it.
func (r *Repository) SetHead(target refs.RefPath) error {
	hs, ok := r.Refs.(refs.HeadStore)
	if !ok {
		return nil
	}
	return hs.SetSymbolicHead(target)
}

// String describes the repository for logs and reports.
func (r *Repository) String() string {
	if r.Path == "" {
		return fmt.Sprintf("<%s>", r.Backend)
	}
	return fmt.Sprintf("%s (%s, %s)", r.Path, r.Layout, r.Backend)
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Repository {
	return &Repository{
		Backend: BackendMemory,
		Objects: store.NewMemoryObjectStore(),
		Refs:    refs.NewMemoryRefStore(),
	}
}

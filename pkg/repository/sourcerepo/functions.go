package sourcerepo

import (
	"path/filepath"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/common/fileops"
	"github.com/kinnison/git-sync/pkg/repository/refs"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
	"github.com/kinnison/git-sync/pkg/store"
	"github.com/kinnison/git-sync/pkg/store/gitstore"
)

// Detect finds the storage directory of the repository rooted at path.
//
// A ".source" directory wins over ".git"; failing both, path itself is
// accepted when it holds objects/, refs/ and HEAD. The boolean is false
// when path is not a repository.
func Detect(path scpath.RepositoryPath) (scpath.StorePath, Layout, bool, error) {
	candidates := []struct {
		dir    scpath.StorePath
		layout Layout
	}{
		{path.SourcePath(), LayoutSource},
		{path.GitPath(), LayoutGit},
	}
	for _, c := range candidates {
		isDir, e := fileops.IsDirectory(scpath.AbsolutePath(c.dir))
		if e != nil {
			return "", "", false, newRepoError(err.CodeIO, "detect", path, "", e)
		}
		if isDir {
			return c.dir, c.layout, true, nil
		}
	}

	if gitstore.IsGitDir(path.BarePath()) {
		return path.BarePath(), LayoutBare, true, nil
	}
	return "", "", false, nil
}

// RepositoryExists reports whether path is the root of any supported
// repository layout.
func RepositoryExists(path scpath.RepositoryPath) (bool, error) {
	_, _, ok, e := Detect(path)
	return ok, e
}

// Open opens the repository rooted at path with the requested backend.
//
// Auto uses the native stores for ".source" repositories and go-git for
// ".git" and bare ones. Forcing native on a git repository works for
// loose objects only; packed objects are then invisible.
func Open(path scpath.RepositoryPath, backend Backend) (*Repository, error) {
	dir, layout, ok, e := Detect(path)
	if e != nil {
		return nil, e
	}
	if !ok {
		return nil, newRepoError(err.CodeNotFound, "open", path, "not a repository: "+path.String(), nil)
	}
	return openDir(path, dir, layout, backend)
}

// FindRepository walks up from startPath to the nearest repository and
// opens it.
func FindRepository(startPath scpath.RepositoryPath, backend Backend) (*Repository, error) {
	current := startPath.String()
	for {
		repoPath := scpath.RepositoryPath(current)
		dir, layout, ok, e := Detect(repoPath)
		if e != nil {
			return nil, e
		}
		if ok {
			return openDir(repoPath, dir, layout, backend)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, newRepoError(err.CodeNotFound, "find", startPath,
				"no repository found above "+startPath.String(), nil)
		}
		current = parent
	}
}

func openDir(path scpath.RepositoryPath, dir scpath.StorePath, layout Layout, backend Backend) (*Repository, error) {
	if backend == BackendAuto || backend == "" {
		backend = BackendGit
		if layout == LayoutSource {
			backend = BackendNative
		}
	}

	repo := &Repository{Path: path, Dir: dir, Layout: layout, Backend: backend}
	switch backend {
	case BackendNative:
		repo.Objects = store.NewFileObjectStore(dir)
		repo.Refs = refs.NewFileRefStore(dir)
	case BackendGit:
		gs := gitstore.Open(dir)
		repo.Objects = gs
		repo.Refs = gs.Refs()
	default:
		return nil, newRepoError(err.CodeInvalidInput, "open", path, "unsupported backend "+string(backend), nil)
	}
	return repo, nil
}

package sourcerepo

import (
	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/common/fileops"
	"github.com/kinnison/git-sync/pkg/repository/refs"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
	"github.com/kinnison/git-sync/pkg/store"
	"github.com/kinnison/git-sync/pkg/store/gitstore"
)

const description = "Unnamed repository; edit this file 'description' to name the repository.\n"

const nativeConfig = `[core]
    repositoryformatversion = 0
    filemode = false
    bare = true
`

// Init creates an empty repository at path and opens it.
//
// The native (and auto) backend produces this layout:
//
//	<path>/
//	└─ .source/
//	   ├─ objects/      loose objects, objects/ab/cdef...
//	   ├─ refs/heads/
//	   ├─ refs/tags/
//	   ├─ HEAD          ref: refs/heads/main
//	   ├─ config
//	   └─ description
//
// The git backend creates a bare git repository directly in path.
func Init(path scpath.RepositoryPath, backend Backend) (*Repository, error) {
	exists, e := RepositoryExists(path)
	if e != nil {
		return nil, e
	}
	if exists {
		return nil, newRepoError(err.CodeAlreadyExists, "init", path, "already a repository: "+path.String(), nil)
	}
	if e := fileops.EnsureDir(scpath.AbsolutePath(path)); e != nil {
		return nil, newRepoError(err.CodeIO, "init", path, "", e)
	}

	switch backend {
	case BackendAuto, BackendNative, "":
		return initNative(path)
	case BackendGit:
		gs, e := gitstore.Init(path.BarePath())
		if e != nil {
			return nil, newRepoError(err.CodeIO, "init", path, "", e)
		}
		return &Repository{
			Path:    path,
			Dir:     path.BarePath(),
			Layout:  LayoutBare,
			Backend: BackendGit,
			Objects: gs,
			Refs:    gs.Refs(),
		}, nil
	default:
		return nil, newRepoError(err.CodeInvalidInput, "init", path, "unsupported backend "+string(backend), nil)
	}
}

func initNative(path scpath.RepositoryPath) (*Repository, error) {
	dir := path.SourcePath()

	objectStore := store.NewFileObjectStore(dir)
	if e := objectStore.Initialize(); e != nil {
		return nil, newRepoError(err.CodeIO, "init", path, "", e)
	}
	refStore := refs.NewFileRefStore(dir)
	if e := refStore.Init(); e != nil {
		return nil, newRepoError(err.CodeIO, "init", path, "", e)
	}
	if e := refStore.SetSymbolicHead(refs.DefaultBranch); e != nil {
		return nil, newRepoError(err.CodeIO, "init", path, "", e)
	}

	files := []struct {
		name    string
		content string
	}{
		{"description", description},
		{"config", nativeConfig},
	}
	for _, f := range files {
		if e := fileops.AtomicWrite(dir.Join(f.name), []byte(f.content), 0o644); e != nil {
			return nil, newRepoError(err.CodeIO, "init", path, "create "+f.name, e)
		}
	}

	return &Repository{
		Path:    path,
		Dir:     dir,
		Layout:  LayoutSource,
		Backend: BackendNative,
		Objects: objectStore,
		Refs:    refStore,
	}, nil
}

// Package gitstore adapts go-git storage to the object and reference store
// contracts, so repositories kept in git's own layout (loose objects,
// packfiles, packed-refs) can take part in a transfer.
package gitstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/repository/refs"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
	"github.com/kinnison/git-sync/pkg/store"
)

// Store serves objects out of a go-git storage.Storer; Refs gives the
// references of the same storage.
//
// go-git storage is not safe for concurrent use, so every call is
// serialised. The store still satisfies the concurrency guarantees of
// store.ObjectStore and refs.RefStore.
type Store struct {
	mu     sync.Mutex
	storer storage.Storer

	// fs is the repository directory for filesystem-backed stores. It is
	// used to tell loose references from packed ones.
	fs billy.Filesystem
}

var (
	_ store.ObjectStore = (*Store)(nil)
	_ refs.RefStore     = (*RefStore)(nil)
	_ refs.HeadStore    = (*RefStore)(nil)
)

// New wraps an existing storer.
func New(s storage.Storer) *Store {
	return &Store{storer: s}
}

// NewMemory creates a store on go-git in-memory storage.
func NewMemory() *Store {
	return New(memory.NewStorage())
}

// Open wraps the git directory at dir (a ".git" directory or a bare
// repository).
func Open(dir scpath.StorePath) *Store {
	fs := osfs.New(dir.String())
	return &Store{
		storer: filesystem.NewStorage(fs, cache.NewObjectLRUDefault()),
		fs:     fs,
	}
}

// Init creates an empty git directory at dir and opens it. HEAD points at
// refs/heads/main.
func Init(dir scpath.StorePath) (*Store, error) {
	fs := osfs.New(dir.String())
	st := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	if e := st.Init(); e != nil {
		return nil, store.NewIOError("init", "", e)
	}
	s := &Store{storer: st, fs: fs}
	if e := s.Refs().SetSymbolicHead(refs.DefaultBranch); e != nil {
		return nil, e
	}
	return s, nil
}

// Has reports whether hash is stored, loose or packed.
func (s *Store) Has(hash objects.ObjectHash) (bool, error) {
	if !hash.IsValid() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.storer.HasEncodedObject(toHash(hash))
	switch {
	case e == nil:
		return true, nil
	case errors.Is(e, plumbing.ErrObjectNotFound):
		return false, nil
	default:
		return false, store.NewIOError("has", hash, e)
	}
}

// Get reads hash and checks its content hashes back to it.
func (s *Store) Get(hash objects.ObjectHash) (*objects.StoredObject, error) {
	if e := hash.Validate(); e != nil {
		return nil, store.NewObjectError("get", hash, objects.NewFormatError(hash, e))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	enc, e := s.storer.EncodedObject(plumbing.AnyObject, toHash(hash))
	if errors.Is(e, plumbing.ErrObjectNotFound) {
		return nil, store.NewNotFoundError("get", hash)
	}
	if e != nil {
		return nil, store.NewIOError("get", hash, e)
	}

	payload, e := readPayload(enc)
	if e != nil {
		return nil, store.NewIOError("get", hash, e)
	}
	objType, e := objects.ParseObjectType(enc.Type().String())
	if e != nil {
		return nil, store.NewObjectError("get", hash, objects.NewFormatError(hash, e))
	}

	obj := &objects.StoredObject{ID: hash, Type: objType, Payload: payload}
	if e := objects.Verify(obj); e != nil {
		return nil, store.NewObjectError("get", hash, e)
	}
	return obj, nil
}

// Put writes obj as a loose object unless it is already present.
func (s *Store) Put(obj *objects.StoredObject) error {
	if e := objects.Verify(obj); e != nil {
		var hash objects.ObjectHash
		if obj != nil {
			hash = obj.ID
		}
		return store.NewObjectError("put", hash, e)
	}
	objType, e := plumbing.ParseObjectType(obj.Type.String())
	if e != nil {
		return store.NewObjectError("put", obj.ID, objects.NewFormatError(obj.ID, e))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := toHash(obj.ID)
	if s.storer.HasEncodedObject(h) == nil {
		return nil
	}

	enc := s.storer.NewEncodedObject()
	enc.SetType(objType)
	enc.SetSize(int64(len(obj.Payload)))
	w, e := enc.Writer()
	if e != nil {
		return store.NewIOError("put", obj.ID, e)
	}
	if _, e := w.Write(obj.Payload); e != nil {
		_ = w.Close()
		return store.NewIOError("put", obj.ID, e)
	}
	if e := w.Close(); e != nil {
		return store.NewIOError("put", obj.ID, e)
	}

	written, e := s.storer.SetEncodedObject(enc)
	if e != nil {
		return store.NewIOError("put", obj.ID, e)
	}
	if written != h {
		return store.NewObjectError("put", obj.ID, objects.NewCorruptError(obj.ID, fromHash(written)))
	}
	return nil
}

// RefStore is the reference side of a Store. It shares the store's lock.
type RefStore struct {
	s *Store
}

// Refs returns the reference store backed by the same storage.
func (s *Store) Refs() *RefStore {
	return &RefStore{s: s}
}

// List returns the direct references under refs/, sorted by name.
func (rs *RefStore) List() ([]refs.Reference, error) {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	iter, e := rs.s.storer.IterReferences()
	if e != nil {
		return nil, refs.NewRefError(err.CodeIO, "list", "", "", e)
	}
	defer iter.Close()

	var out []refs.Reference
	e = iter.ForEach(func(r *plumbing.Reference) error {
		if r.Type() != plumbing.HashReference {
			return nil
		}
		name := refs.RefPath(r.Name().String())
		if !name.IsTransferable() {
			return nil
		}
		out = append(out, refs.Reference{Name: name, Target: fromHash(r.Hash())})
		return nil
	})
	if e != nil {
		return nil, refs.NewRefError(err.CodeIO, "list", "", "", e)
	}
	refs.SortReferences(out)
	return out, nil
}

// Get returns the target of name. Symbolic references read as absent.
func (rs *RefStore) Get(name refs.RefPath) (objects.ObjectHash, bool, error) {
	if !name.IsValid() {
		return "", false, refs.NewRefError(err.CodeInvalidInput, "get", name, "", nil)
	}

	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	r, e := rs.s.reference(name)
	if e != nil {
		return "", false, refs.NewRefError(err.CodeIO, "get", name, "", e)
	}
	if r == nil {
		return "", false, nil
	}
	return fromHash(r.Hash()), true, nil
}

// CompareAndSet updates name to newHash when it currently holds expectedOld.
//
// Updates of loose references go through go-git's CheckAndSetReference,
// which re-checks the old value under the reference file lock. A reference
// that only exists in packed-refs, or one being created, is guarded by the
// store mutex alone.
func (rs *RefStore) CompareAndSet(name refs.RefPath, expectedOld objects.ObjectHash, hasOld bool, newHash objects.ObjectHash) (bool, error) {
	if e := name.Validate(); e != nil {
		return false, refs.NewRefError(err.CodeInvalidInput, "compare_and_set", name, "", e)
	}
	if e := newHash.Validate(); e != nil {
		return false, refs.NewRefError(err.CodeInvalidInput, "compare_and_set", name, "invalid target", e)
	}

	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	current, e := rs.s.reference(name)
	if e != nil {
		return false, refs.NewRefError(err.CodeIO, "compare_and_set", name, "", e)
	}
	switch {
	case current == nil && hasOld:
		return false, nil
	case current != nil && (!hasOld || fromHash(current.Hash()) != expectedOld):
		return false, nil
	case current != nil && fromHash(current.Hash()) == newHash:
		return true, nil
	}

	var old *plumbing.Reference
	if current != nil && rs.s.isLoose(name) {
		old = current
	}
	next := plumbing.NewHashReference(plumbing.ReferenceName(name), toHash(newHash))
	e = rs.s.storer.CheckAndSetReference(next, old)
	if errors.Is(e, storage.ErrReferenceHasChanged) {
		return false, nil
	}
	if e != nil {
		return false, refs.NewRefError(err.CodeIO, "compare_and_set", name, "", e)
	}
	return true, nil
}

// SymbolicHead returns the reference HEAD points to.
func (rs *RefStore) SymbolicHead() (refs.RefPath, bool, error) {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	r, e := rs.s.storer.Reference(plumbing.HEAD)
	if errors.Is(e, plumbing.ErrReferenceNotFound) {
		return "", false, nil
	}
	if e != nil {
		return "", false, refs.NewRefError(err.CodeIO, "read_head", refs.RefHEAD, "", e)
	}
	if r.Type() != plumbing.SymbolicReference {
		return "", false, nil
	}
	return refs.RefPath(r.Target().String()), true, nil
}

// SetSymbolicHead points HEAD at target.
func (rs *RefStore) SetSymbolicHead(target refs.RefPath) error {
	if !target.IsValid() {
		return refs.NewRefError(err.CodeInvalidInput, "write_head", target, "", nil)
	}

	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	r := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.ReferenceName(target))
	if e := rs.s.storer.SetReference(r); e != nil {
		return refs.NewRefError(err.CodeIO, "write_head", target, "", e)
	}
	return nil
}

// reference returns the direct reference stored under name, or nil.
// Callers hold s.mu.
func (s *Store) reference(name refs.RefPath) (*plumbing.Reference, error) {
	r, e := s.storer.Reference(plumbing.ReferenceName(name))
	if errors.Is(e, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if e != nil {
		return nil, e
	}
	if r.Type() != plumbing.HashReference {
		return nil, nil
	}
	return r, nil
}

// isLoose reports whether name has its own file. Memory storage has no
// packed references, so every reference counts as loose there.
func (s *Store) isLoose(name refs.RefPath) bool {
	if s.fs == nil {
		return true
	}
	fi, e := s.fs.Stat(name.String())
	return e == nil && fi.Mode().IsRegular()
}

func readPayload(enc plumbing.EncodedObject) ([]byte, error) {
	r, e := enc.Reader()
	if e != nil {
		return nil, e
	}
	defer r.Close()

	payload, e := io.ReadAll(r)
	if e != nil {
		return nil, e
	}
	if int64(len(payload)) != enc.Size() {
		return nil, fmt.Errorf("short read: %d of %d bytes", len(payload), enc.Size())
	}
	return payload, nil
}

func toHash(h objects.ObjectHash) plumbing.Hash {
	return plumbing.NewHash(strings.ToLower(h.String()))
}

func fromHash(h plumbing.Hash) objects.ObjectHash {
	return objects.ObjectHash(h.String())
}

// IsGitDir reports whether dir looks like a git directory: it holds
// objects/, refs/ and HEAD.
func IsGitDir(dir scpath.StorePath) bool {
	for _, p := range []scpath.AbsolutePath{dir.ObjectsPath(), dir.RefsPath()} {
		fi, e := os.Stat(p.String())
		if e != nil || !fi.IsDir() {
			return false
		}
	}
	fi, e := os.Stat(dir.HeadPath().String())
	return e == nil && fi.Mode().IsRegular()
}

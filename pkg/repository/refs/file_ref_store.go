package refs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/common/fileops"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
)

const (
	defaultLockWait  = 2 * time.Second
	lockRetryDelay   = 10 * time.Millisecond
	refFileMode      = 0644
	lockFileOpenMode = os.O_WRONLY | os.O_CREATE | os.O_EXCL
)

// FileRefStore reads and writes references in git's on-disk layout.
//
// Loose references live one per file under <store>/refs. References that
// git has folded into <store>/packed-refs are read too; a loose file always
// shadows its packed entry. Writes only ever create loose files, so the
// packed-refs file is never modified.
//
// Each CompareAndSet holds <ref>.lock, created with O_EXCL, for the whole
// read-compare-write cycle. Other git-aware writers honour the same lock.
type FileRefStore struct {
	root     scpath.StorePath
	lockWait time.Duration
}

// FileRefStoreOption configures a FileRefStore.
type FileRefStoreOption func(*FileRefStore)

// WithLockWait bounds how long CompareAndSet waits for a held lock.
func WithLockWait(d time.Duration) FileRefStoreOption {
	return func(s *FileRefStore) {
		s.lockWait = d
	}
}

// NewFileRefStore creates a reference store rooted at root.
func NewFileRefStore(root scpath.StorePath, opts ...FileRefStoreOption) *FileRefStore {
	s := &FileRefStore{root: root, lockWait: defaultLockWait}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the refs/heads and refs/tags directories.
func (s *FileRefStore) Init() error {
	for _, dir := range []string{scpath.HeadsDir, scpath.TagsDir} {
		if e := fileops.EnsureDir(s.root.RefsPath().Join(dir)); e != nil {
			return NewRefError(err.CodeIO, "init", "", "create refs directory", e)
		}
	}
	return nil
}

// List returns every direct reference under refs/, sorted by name.
// Symbolic references inside refs/ (refs/remotes/origin/HEAD) are skipped.
func (s *FileRefStore) List() ([]Reference, error) {
	packed, e := s.readPacked()
	if e != nil {
		return nil, e
	}

	merged := make(map[RefPath]objects.ObjectHash, len(packed))
	for name, hash := range packed {
		merged[name] = hash
	}

	refsDir := s.root.RefsPath().String()
	walkErr := filepath.WalkDir(refsDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && p == refsDir {
				return filepath.SkipDir
			}
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(p, scpath.LockSuffix) || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}

		rel, relErr := filepath.Rel(s.root.String(), p)
		if relErr != nil {
			return relErr
		}
		name := RefPath(filepath.ToSlash(rel))

		hash, symbolic, readErr := s.readLoose(name)
		if readErr != nil {
			return readErr
		}
		if symbolic {
			delete(merged, name)
			return nil
		}
		merged[name] = hash
		return nil
	})
	if walkErr != nil {
		return nil, wrapIO("list", "", walkErr)
	}

	out := make([]Reference, 0, len(merged))
	for name, hash := range merged {
		out = append(out, Reference{Name: name, Target: hash})
	}
	SortReferences(out)
	return out, nil
}

// Get returns the object name points to.
func (s *FileRefStore) Get(name RefPath) (objects.ObjectHash, bool, error) {
	if !name.IsValid() {
		return "", false, NewRefError(err.CodeInvalidInput, "get", name, "", nil)
	}
	return s.current(name)
}

// CompareAndSet atomically moves name from expectedOld to newHash.
func (s *FileRefStore) CompareAndSet(name RefPath, expectedOld objects.ObjectHash, hasOld bool, newHash objects.ObjectHash) (bool, error) {
	if e := name.Validate(); e != nil {
		return false, NewRefError(err.CodeInvalidInput, "compare_and_set", name, "", e)
	}
	if e := newHash.Validate(); e != nil {
		return false, NewRefError(err.CodeInvalidInput, "compare_and_set", name, "invalid target", e)
	}

	refPath := s.root.RefFilePath(name.String())
	if e := fileops.EnsureParentDir(refPath); e != nil {
		return false, wrapIO("compare_and_set", name, e)
	}

	lockPath := refPath.String() + scpath.LockSuffix
	lockFile, lockErr := s.acquireLock(lockPath)
	if lockErr != nil {
		return false, NewRefError(err.CodeLockFailed, "compare_and_set", name, "", lockErr)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = fileops.SafeRemove(scpath.AbsolutePath(lockPath))
		}
	}()

	current, exists, e := s.current(name)
	if e != nil {
		return false, e
	}
	if exists != hasOld || (hasOld && current != expectedOld) {
		return false, nil
	}
	if exists && current == newHash {
		return true, nil
	}

	if _, e := lockFile.WriteString(newHash.String() + "\n"); e != nil {
		return false, wrapIO("compare_and_set", name, e)
	}
	if e := lockFile.Sync(); e != nil {
		return false, wrapIO("compare_and_set", name, e)
	}
	closeErr := lockFile.Close()
	lockFile = nil
	if closeErr != nil {
		return false, wrapIO("compare_and_set", name, closeErr)
	}

	if e := os.Rename(lockPath, refPath.String()); e != nil {
		return false, wrapIO("compare_and_set", name, e)
	}
	cleanupLock = false
	return true, nil
}

// SymbolicHead returns the target of a symbolic HEAD.
func (s *FileRefStore) SymbolicHead() (RefPath, bool, error) {
	content, e := fileops.ReadString(s.root.HeadPath())
	if e != nil {
		return "", false, wrapIO("read_head", RefHEAD, e)
	}
	target, ok := strings.CutPrefix(content, SymbolicRefPrefix)
	if !ok {
		return "", false, nil
	}
	return RefPath(strings.TrimSpace(target)), true, nil
}

// SetSymbolicHead writes "ref: <target>" to HEAD.
func (s *FileRefStore) SetSymbolicHead(target RefPath) error {
	if !target.IsValid() {
		return NewRefError(err.CodeInvalidInput, "write_head", target, "", nil)
	}
	content := []byte(SymbolicRefPrefix + target.String() + "\n")
	if e := fileops.AtomicWrite(s.root.HeadPath(), content, refFileMode); e != nil {
		return wrapIO("write_head", RefHEAD, e)
	}
	return nil
}

// ResolveHead follows HEAD through symbolic references to an object. It
// returns false for an unborn branch.
func (s *FileRefStore) ResolveHead() (objects.ObjectHash, bool, error) {
	name := RefHEAD
	content, e := fileops.ReadString(s.root.HeadPath())
	if e != nil {
		return "", false, wrapIO("resolve_head", name, e)
	}

	for i := 0; i < MaxRefDepth; i++ {
		if content == "" {
			return "", false, nil
		}
		target, symbolic := strings.CutPrefix(content, SymbolicRefPrefix)
		if !symbolic {
			hash, parseErr := objects.ParseObjectHash(content)
			if parseErr != nil {
				return "", false, NewRefError(err.CodeInvalidFormat, "resolve_head", name, "", parseErr)
			}
			return hash, true, nil
		}

		name = RefPath(strings.TrimSpace(target))
		if content, e = s.rawContent(name); e != nil {
			return "", false, e
		}
	}
	return "", false, NewRefError(err.CodeInvalidFormat, "resolve_head", RefHEAD,
		fmt.Sprintf("reference depth exceeded %d", MaxRefDepth), nil)
}

// rawContent returns the trimmed loose file of name, or its packed hash,
// or "" when neither exists.
func (s *FileRefStore) rawContent(name RefPath) (string, error) {
	content, e := fileops.ReadString(s.root.RefFilePath(name.String()))
	if e != nil && !isNotDir(e) {
		return "", wrapIO("read", name, e)
	}
	if content != "" {
		return content, nil
	}
	hash, ok, e := s.readPackedOne(name)
	if e != nil || !ok {
		return "", e
	}
	return hash.String(), nil
}

// current reads the value of name, loose first then packed. A symbolic
// loose file counts as absent.
func (s *FileRefStore) current(name RefPath) (objects.ObjectHash, bool, error) {
	hash, symbolic, exists, e := s.readLooseRaw(name)
	if e != nil {
		return "", false, e
	}
	if exists {
		if symbolic {
			return "", false, nil
		}
		return hash, true, nil
	}
	return s.readPackedOne(name)
}

func (s *FileRefStore) readLoose(name RefPath) (objects.ObjectHash, bool, error) {
	hash, symbolic, _, e := s.readLooseRaw(name)
	return hash, symbolic, e
}

// readLooseRaw returns (hash, symbolic, exists, err) for the loose file of name.
func (s *FileRefStore) readLooseRaw(name RefPath) (objects.ObjectHash, bool, bool, error) {
	data, e := os.ReadFile(s.root.RefFilePath(name.String()).String())
	if e != nil {
		if os.IsNotExist(e) || isNotDir(e) {
			return "", false, false, nil
		}
		return "", false, false, wrapIO("read", name, e)
	}

	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, SymbolicRefPrefix) {
		return "", true, true, nil
	}
	hash, parseErr := objects.ParseObjectHash(content)
	if parseErr != nil {
		return "", false, false, NewRefError(err.CodeInvalidFormat, "read", name, "", parseErr)
	}
	return hash, false, true, nil
}

func (s *FileRefStore) readPacked() (map[RefPath]objects.ObjectHash, error) {
	f, e := os.Open(s.root.PackedRefsPath().String())
	if e != nil {
		if os.IsNotExist(e) {
			return nil, nil
		}
		return nil, wrapIO("read_packed", "", e)
	}
	defer f.Close()

	packed, parseErr := parsePackedRefs(f)
	if parseErr != nil {
		return nil, NewRefError(err.CodeInvalidFormat, "read_packed", "", scpath.PackedRefsFile, parseErr)
	}
	return packed, nil
}

func (s *FileRefStore) readPackedOne(name RefPath) (objects.ObjectHash, bool, error) {
	packed, e := s.readPacked()
	if e != nil {
		return "", false, e
	}
	hash, ok := packed[name]
	return hash, ok, nil
}

func (s *FileRefStore) acquireLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(s.lockWait)
	for {
		f, e := os.OpenFile(lockPath, lockFileOpenMode, refFileMode)
		if e == nil {
			return f, nil
		}
		if !os.IsExist(e) {
			return nil, e
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
		}
		time.Sleep(lockRetryDelay)
	}
}

func wrapIO(op string, name RefPath, cause error) *RefError {
	return NewRefError(err.CodeIO, op, name, "", cause)
}

// isNotDir reports ENOTDIR, returned when a path component is a file
// (refs/heads/a exists and refs/heads/a/b is looked up).
func isNotDir(e error) bool {
	return errors.Is(e, syscall.ENOTDIR)
}

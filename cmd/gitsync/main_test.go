package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/objects/blob"
	"github.com/kinnison/git-sync/pkg/objects/commit"
	"github.com/kinnison/git-sync/pkg/objects/tree"
	"github.com/kinnison/git-sync/pkg/repository/refs"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
	"github.com/kinnison/git-sync/pkg/repository/sourcerepo"
	"github.com/kinnison/git-sync/pkg/store/gitstore"
	"github.com/kinnison/git-sync/pkg/transfer"
)

// TestHelper builds on-disk repositories for command tests.
type TestHelper struct {
	t    *testing.T
	tick int64
}

func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return &TestHelper{t: t}
}

func (th *TestHelper) Path() scpath.RepositoryPath {
	th.t.Helper()
	p, e := scpath.NewRepositoryPath(th.t.TempDir())
	require.NoError(th.t, e)
	return p
}

func (th *TestHelper) InitRepo(backend sourcerepo.Backend) *sourcerepo.Repository {
	th.t.Helper()
	repo, e := sourcerepo.Init(th.Path(), backend)
	require.NoError(th.t, e)
	return repo
}

func (th *TestHelper) put(repo *sourcerepo.Repository, obj *objects.StoredObject) objects.ObjectHash {
	th.t.Helper()
	require.NoError(th.t, repo.Objects.Put(obj))
	return obj.ID
}

// Commit stores a one-file snapshot and returns the blob and commit ids.
func (th *TestHelper) Commit(repo *sourcerepo.Repository, content string, parents ...objects.ObjectHash) (objects.ObjectHash, objects.ObjectHash) {
	th.t.Helper()
	b := th.put(repo, blob.New([]byte(content)).ToStoredObject())
	te, e := tree.NewTreeEntry(objects.FileModeRegular, "file.txt", b)
	require.NoError(th.t, e)
	treeObj, e := tree.NewTree([]*tree.TreeEntry{te}).ToStoredObject()
	require.NoError(th.t, e)
	tr := th.put(repo, treeObj)

	th.tick++
	who, e := commit.NewPerson("Test", "test@example.com", time.Unix(1700000000+th.tick, 0).UTC())
	require.NoError(th.t, e)
	c, e := commit.NewCommitBuilder().Tree(tr).Parents(parents...).
		Author(who).Committer(who).Message(content).Build()
	require.NoError(th.t, e)
	commitObj, e := c.ToStoredObject()
	require.NoError(th.t, e)
	return b, th.put(repo, commitObj)
}

func (th *TestHelper) SetRef(repo *sourcerepo.Repository, name refs.RefPath, target objects.ObjectHash) {
	th.t.Helper()
	current, exists, e := repo.Refs.Get(name)
	require.NoError(th.t, e)
	ok, e := repo.Refs.CompareAndSet(name, current, exists, target)
	require.NoError(th.t, e)
	require.True(th.t, ok)
}

func (th *TestHelper) Refs(repo *sourcerepo.Repository) []refs.Reference {
	th.t.Helper()
	list, e := repo.Refs.List()
	require.NoError(th.t, e)
	return list
}

// Run executes the command line and returns exit status, stdout and stderr.
func (th *TestHelper) Run(args ...string) (int, string, string) {
	th.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSync_NativeToNewTarget(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)
	_, c := th.Commit(source, "hello\n")
	th.SetRef(source, "refs/heads/main", c)
	targetPath := th.Path()

	code, stdout, stderr := th.Run("--init-target", source.Path.String(), targetPath.String())
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "refs/heads/main")
	assert.Contains(t, stdout, "created")
	assert.Contains(t, stdout, "3 objects transferred")

	target, e := sourcerepo.Open(targetPath, sourcerepo.BackendAuto)
	require.NoError(t, e)
	assert.Equal(t, sourcerepo.LayoutSource, target.Layout)
	assert.Equal(t, th.Refs(source), th.Refs(target))
}

func TestSync_RerunReportsUnchanged(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)
	_, c := th.Commit(source, "hello\n")
	th.SetRef(source, "refs/heads/main", c)
	target := th.InitRepo(sourcerepo.BackendNative)

	code, _, stderr := th.Run(source.Path.String(), target.Path.String())
	require.Equal(t, exitOK, code, stderr)

	code, stdout, stderr := th.Run("--output", "plain", source.Path.String(), target.Path.String())
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "unchanged refs/heads/main "+c.String()+" "+c.String())
	assert.Contains(t, stdout, "0 objects transferred")
}

func TestSync_GitBackendBothSides(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendGit)
	_, c1 := th.Commit(source, "one\n")
	_, c2 := th.Commit(source, "two\n", c1)
	th.SetRef(source, "refs/heads/main", c2)
	th.SetRef(source, "refs/heads/old", c1)
	targetPath := th.Path()

	code, _, stderr := th.Run("--backend", "git", "--init-target", "--workers", "2",
		source.Path.String(), targetPath.String())
	require.Equal(t, exitOK, code, stderr)
	assert.True(t, gitstore.IsGitDir(targetPath.BarePath()))

	target, e := sourcerepo.Open(targetPath, sourcerepo.BackendAuto)
	require.NoError(t, e)
	assert.Equal(t, sourcerepo.BackendGit, target.Backend)
	assert.Equal(t, th.Refs(source), th.Refs(target))

	code, stdout, stderr := th.Run("verify", targetPath.String())
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "6 objects reachable from 2 references")
}

func TestSync_InitTargetMirrorsHead(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)
	_, c := th.Commit(source, "dev\n")
	th.SetRef(source, "refs/heads/dev", c)
	require.NoError(t, source.SetHead("refs/heads/dev"))
	targetPath := th.Path()

	code, _, stderr := th.Run("--init-target", source.Path.String(), targetPath.String())
	require.Equal(t, exitOK, code, stderr)

	target, e := sourcerepo.Open(targetPath, sourcerepo.BackendAuto)
	require.NoError(t, e)
	head, ok, e := target.Head()
	require.NoError(t, e)
	assert.True(t, ok)
	assert.Equal(t, refs.RefPath("refs/heads/dev"), head)
}

func TestSync_MissingTargetWithoutInit(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)

	code, _, stderr := th.Run(source.Path.String(), th.Path().String())
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "target")
}

func TestSync_CorruptSourceAborts(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)
	b, c := th.Commit(source, "hello\n")
	th.SetRef(source, "refs/heads/main", c)
	target := th.InitRepo(sourcerepo.BackendNative)

	// Replace the blob with a well-formed object of different content.
	path := source.Dir.ObjectFilePath(b.String()).String()
	require.NoError(t, os.Remove(path))
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, e := zw.Write(objects.NewEnvelope(objects.BlobType, []byte("evil!\n")))
	require.NoError(t, e)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o444))

	code, _, stderr := th.Run(source.Path.String(), target.Path.String())
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "aborted")
	assert.Empty(t, th.Refs(target))

	code, stdout, _ := th.Run("verify", source.Path.String())
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, "corrupt")
	assert.Contains(t, stdout, b.String())
}

func TestSync_ConfigFileSelectsRefs(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)
	_, c1 := th.Commit(source, "main\n")
	_, c2 := th.Commit(source, "release\n")
	th.SetRef(source, "refs/heads/main", c1)
	th.SetRef(source, "refs/tags/v1", c2)
	target := th.InitRepo(sourcerepo.BackendNative)

	cfg := filepath.Join(t.TempDir(), "sync.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[transfer]\nrefs = [\"refs/tags/*\"]\nworkers = 1\n"), 0o644))

	code, _, stderr := th.Run("--config", cfg, source.Path.String(), target.Path.String())
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, []refs.Reference{{Name: "refs/tags/v1", Target: c2}}, th.Refs(target))

	code, _, stderr = th.Run("--config", cfg, "--ref", "refs/heads/*", source.Path.String(), target.Path.String())
	require.Equal(t, exitOK, code, stderr)
	assert.Len(t, th.Refs(target), 2, "flag replaces the configured patterns")
}

func TestSync_ProgressAndJSONLogs(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)
	_, c := th.Commit(source, "hello\n")
	th.SetRef(source, "refs/heads/main", c)
	target := th.InitRepo(sourcerepo.BackendNative)

	code, _, stderr := th.Run("--progress", "--log-format", "json", source.Path.String(), target.Path.String())
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, "copying objects")
	assert.Contains(t, stderr, `"msg":"transfer complete"`)
}

func TestSync_FullWalkFlagRepairsTarget(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)
	b, c := th.Commit(source, "hello\n")
	th.SetRef(source, "refs/heads/main", c)

	// The target holds the commit and its tree but lost the blob.
	target := th.InitRepo(sourcerepo.BackendNative)
	commitObj, e := source.Objects.Get(c)
	require.NoError(t, e)
	require.NoError(t, target.Objects.Put(commitObj))
	cm, e := commit.Parse(commitObj.Payload)
	require.NoError(t, e)
	treeObj, e := source.Objects.Get(cm.Tree)
	require.NoError(t, e)
	require.NoError(t, target.Objects.Put(treeObj))

	code, stdout, stderr := th.Run("--output", "plain", source.Path.String(), target.Path.String())
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "0 objects transferred")

	code, stdout, stderr = th.Run("--full-walk", "--output", "plain", source.Path.String(), target.Path.String())
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "1 objects transferred")
	has, e := target.Objects.Has(b)
	require.NoError(t, e)
	assert.True(t, has)
}

func TestSync_UsageErrors(t *testing.T) {
	th := NewTestHelper(t)
	source := th.InitRepo(sourcerepo.BackendNative)

	tests := []struct {
		name string
		args []string
	}{
		{"one argument", []string{source.Path.String()}},
		{"bad output", []string{"--output", "xml", source.Path.String(), source.Path.String()}},
		{"bad backend", []string{"--backend", "svn", source.Path.String(), source.Path.String()}},
		{"bad pattern", []string{"--ref", "HEAD", source.Path.String(), source.Path.String()}},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "nope.toml"), source.Path.String(), source.Path.String()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := th.Run(tt.args...)
			assert.Equal(t, exitFailure, code)
			assert.NotEmpty(t, stderr)
		})
	}
}

func TestVerify_FindsRepositoryAbove(t *testing.T) {
	th := NewTestHelper(t)
	repo := th.InitRepo(sourcerepo.BackendNative)
	_, c := th.Commit(repo, "hello\n")
	th.SetRef(repo, "refs/heads/main", c)

	sub := filepath.Join(repo.Path.String(), "deep", "dir")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	code, stdout, stderr := th.Run("verify", sub)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "repository ok")
	assert.Contains(t, stdout, "3 objects reachable from 1 references")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(&transfer.Result{State: transfer.StateSuccess}, nil))
	assert.Equal(t, exitPartial, exitCode(&transfer.Result{State: transfer.StatePartialSuccess}, nil))
	assert.Equal(t, exitFailure, exitCode(&transfer.Result{State: transfer.StateAborted}, context.Canceled))
	assert.Equal(t, exitFailure, exitCode(nil, nil))
}

func TestWriteReport_Table(t *testing.T) {
	res := &transfer.Result{
		State: transfer.StatePartialSuccess,
		References: []transfer.RefOutcome{
			{Name: "refs/heads/a", New: "0123456789abcdef0123456789abcdef01234567", Status: transfer.RefCreated},
			{Name: "refs/heads/b", Old: "fedcba9876543210fedcba9876543210fedcba98",
				New: "0123456789abcdef0123456789abcdef01234567", Status: transfer.RefConflict,
				Err: transfer.NewReferenceConflictError("refs/heads/b")},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, res, outputTable))
	out := buf.String()
	assert.Contains(t, out, "refs/heads/a")
	assert.Contains(t, out, "conflict")
	assert.Contains(t, out, "fedcba98")
	assert.Contains(t, out, "01234567")
}

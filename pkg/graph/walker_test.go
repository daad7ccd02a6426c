package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/objects/commit"
	"github.com/kinnison/git-sync/pkg/objects/tree"
	"github.com/kinnison/git-sync/pkg/store"
)

// history builds objects straight into a memory store.
type history struct {
	t     *testing.T
	store *store.MemoryObjectStore
}

func newHistory(t *testing.T) *history {
	return &history{t: t, store: store.NewMemoryObjectStore()}
}

func (h *history) put(obj *objects.StoredObject) objects.ObjectHash {
	h.t.Helper()
	require.NoError(h.t, h.store.Put(obj))
	return obj.ID
}

func (h *history) blob(content string) objects.ObjectHash {
	return h.put(objects.NewStoredObject(objects.BlobType, []byte(content)))
}

func (h *history) tree(entries ...*tree.TreeEntry) objects.ObjectHash {
	h.t.Helper()
	obj, e := tree.NewTree(entries).ToStoredObject()
	require.NoError(h.t, e)
	return h.put(obj)
}

func (h *history) entry(mode objects.FileMode, name string, hash objects.ObjectHash) *tree.TreeEntry {
	h.t.Helper()
	te, e := tree.NewTreeEntry(mode, name, hash)
	require.NoError(h.t, e)
	return te
}

func (h *history) commit(treeHash objects.ObjectHash, msg string, parents ...objects.ObjectHash) objects.ObjectHash {
	h.t.Helper()
	who, e := commit.NewPerson("Test", "test@example.com", time.Unix(1700000000, 0).UTC())
	require.NoError(h.t, e)
	c, e := commit.NewCommitBuilder().
		Tree(treeHash).
		Parents(parents...).
		Author(who).
		Committer(who).
		Message(msg).
		Build()
	require.NoError(h.t, e)
	obj, e := c.ToStoredObject()
	require.NoError(h.t, e)
	return h.put(obj)
}

// copyTo puts the given objects from h into dst.
func (h *history) copyTo(dst store.ObjectStore, ids ...objects.ObjectHash) {
	h.t.Helper()
	for _, id := range ids {
		obj, e := h.store.Get(id)
		require.NoError(h.t, e)
		require.NoError(h.t, dst.Put(obj))
	}
}

func newTestWalker(source, target store.ObjectStore, opts ...Option) *Walker {
	return NewWalker(source, target, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func TestWalker_SingleCommit(t *testing.T) {
	h := newHistory(t)
	b := h.blob("hello\n")
	tr := h.tree(h.entry(objects.FileModeRegular, "a.txt", b))
	c := h.commit(tr, "init")

	missing, e := newTestWalker(h.store, store.NewMemoryObjectStore()).Missing(context.Background(), []objects.ObjectHash{c})
	require.NoError(t, e)
	assert.Equal(t, 3, missing.Len())
	assert.Equal(t, 3, missing.Visited())
	for _, id := range []objects.ObjectHash{b, tr, c} {
		assert.True(t, missing.Contains(id))
	}
}

func TestWalker_RootPresentYieldsNoWork(t *testing.T) {
	h := newHistory(t)
	b := h.blob("hello\n")
	c := h.commit(h.tree(h.entry(objects.FileModeRegular, "a.txt", b)), "init")

	missing, e := newTestWalker(h.store, h.store).Missing(context.Background(), []objects.ObjectHash{c})
	require.NoError(t, e)
	assert.Zero(t, missing.Len())
	assert.Equal(t, 1, missing.Visited())
	assert.Empty(t, missing.Sorted())
}

func TestWalker_PrunesAtPresentObjects(t *testing.T) {
	h := newHistory(t)
	b1 := h.blob("one\n")
	t1 := h.tree(h.entry(objects.FileModeRegular, "f", b1))
	c1 := h.commit(t1, "first")
	b2 := h.blob("two\n")
	t2 := h.tree(h.entry(objects.FileModeRegular, "f", b2))
	c2 := h.commit(t2, "second", c1)

	target := store.NewMemoryObjectStore()
	h.copyTo(target, b1, t1, c1)

	missing, e := newTestWalker(h.store, target).Missing(context.Background(), []objects.ObjectHash{c2})
	require.NoError(t, e)
	assert.ElementsMatch(t, []objects.ObjectHash{b2, t2, c2}, missing.Sorted())
	assert.Equal(t, 4, missing.Visited(), "c2, t2, b2 and the present parent")
}

func TestWalker_FullWalkRepairsPartialTarget(t *testing.T) {
	h := newHistory(t)
	b := h.blob("content\n")
	tr := h.tree(h.entry(objects.FileModeRegular, "f", b))
	c := h.commit(tr, "msg")

	// The commit and tree made it across but the blob did not.
	target := store.NewMemoryObjectStore()
	h.copyTo(target, tr, c)

	pruned, e := newTestWalker(h.store, target).Missing(context.Background(), []objects.ObjectHash{c})
	require.NoError(t, e)
	assert.Zero(t, pruned.Len())

	full, e := newTestWalker(h.store, target, WithFullWalk()).Missing(context.Background(), []objects.ObjectHash{c})
	require.NoError(t, e)
	assert.Equal(t, []objects.ObjectHash{b}, full.Sorted())
	assert.Equal(t, 3, full.Visited())
}

func TestWalker_SharedSubgraphVisitedOnce(t *testing.T) {
	h := newHistory(t)
	b := h.blob("shared\n")
	tr := h.tree(h.entry(objects.FileModeRegular, "f", b))
	base := h.commit(tr, "base")
	left := h.commit(tr, "left", base)
	right := h.commit(tr, "right", base)
	merge := h.commit(tr, "merge", left, right)

	missing, e := newTestWalker(h.store, store.NewMemoryObjectStore()).
		Missing(context.Background(), []objects.ObjectHash{merge, left, merge})
	require.NoError(t, e)
	assert.Equal(t, 6, missing.Len())
	assert.Equal(t, 6, missing.Visited())
}

func TestWalker_SkipsGitlinksAndZeroRoots(t *testing.T) {
	h := newHistory(t)
	sub := objects.ObjectHash("a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0")
	tr := h.tree(
		h.entry(objects.FileModeGitlink, "vendor", sub),
		h.entry(objects.FileModeRegular, "README", h.blob("readme\n")),
	)

	missing, e := newTestWalker(h.store, store.NewMemoryObjectStore()).
		Missing(context.Background(), []objects.ObjectHash{tr, objects.ZeroHash(), ""})
	require.NoError(t, e)
	assert.Equal(t, 2, missing.Len())
	assert.False(t, missing.Contains(sub))
}

func TestWalker_SourceObjectMissing(t *testing.T) {
	h := newHistory(t)
	absent := objects.NewStoredObject(objects.BlobType, []byte("never stored\n")).ID
	c := h.commit(h.tree(h.entry(objects.FileModeRegular, "f", absent)), "broken")

	_, e := newTestWalker(h.store, store.NewMemoryObjectStore()).Missing(context.Background(), []objects.ObjectHash{c})
	require.Error(t, e)
	assert.True(t, errors.Is(e, ErrSourceObjectMissing))
	assert.Equal(t, CodeSourceObjectMissing, err.GetCode(e))

	var we *WalkError
	require.True(t, errors.As(e, &we))
	assert.Equal(t, absent, we.Hash)

	_, e = newTestWalker(h.store, store.NewMemoryObjectStore()).Missing(context.Background(), []objects.ObjectHash{absent})
	assert.True(t, errors.Is(e, ErrSourceObjectMissing), "missing root")
}

func TestWalker_CorruptSourceObject(t *testing.T) {
	h := newHistory(t)
	b := h.blob("good\n")
	c := h.commit(h.tree(h.entry(objects.FileModeRegular, "f", b)), "msg")
	require.True(t, h.store.Tamper(b, []byte("evil\n")))

	_, e := newTestWalker(h.store, store.NewMemoryObjectStore()).Missing(context.Background(), []objects.ObjectHash{c})
	require.Error(t, e)
	assert.True(t, errors.Is(e, ErrCorrupt))
	assert.False(t, errors.Is(e, ErrSourceObjectMissing))
}

type failingStore struct {
	store.ObjectStore
	err error
}

func (f failingStore) Has(objects.ObjectHash) (bool, error) {
	return false, f.err
}

func TestWalker_TargetFailureIsAdapterIO(t *testing.T) {
	h := newHistory(t)
	b := h.blob("x\n")
	cause := errors.New("disk on fire")

	_, e := newTestWalker(h.store, failingStore{err: cause}).Missing(context.Background(), []objects.ObjectHash{b})
	require.Error(t, e)
	assert.True(t, errors.Is(e, ErrAdapterIO))
	assert.ErrorIs(t, e, cause)
}

func TestWalker_Cancelled(t *testing.T) {
	h := newHistory(t)
	b := h.blob("x\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, e := newTestWalker(h.store, store.NewMemoryObjectStore()).Missing(ctx, []objects.ObjectHash{b})
	assert.ErrorIs(t, e, context.Canceled)
}

func TestMissingSet_SortedIsDeterministic(t *testing.T) {
	h := newHistory(t)
	var entries []*tree.TreeEntry
	for _, name := range []string{"c", "a", "b", "d"} {
		entries = append(entries, h.entry(objects.FileModeRegular, name, h.blob(name+"\n")))
	}
	tr := h.tree(entries...)

	missing, e := newTestWalker(h.store, store.NewMemoryObjectStore()).Missing(context.Background(), []objects.ObjectHash{tr})
	require.NoError(t, e)
	sorted := missing.Sorted()
	require.Len(t, sorted, 5)
	for i := 1; i < len(sorted); i++ {
		assert.Less(t, sorted[i-1], sorted[i])
	}
	assert.Equal(t, sorted, missing.Sorted())
}

func TestMissingSet_LayersPutChildrenFirst(t *testing.T) {
	h := newHistory(t)
	b1 := h.blob("one\n")
	t1 := h.tree(h.entry(objects.FileModeRegular, "f", b1))
	c1 := h.commit(t1, "first")
	b2 := h.blob("two\n")
	t2 := h.tree(
		h.entry(objects.FileModeRegular, "f", b2),
		h.entry(objects.FileModeDirectory, "sub", t1),
	)
	c2 := h.commit(t2, "second", c1)

	missing, e := newTestWalker(h.store, store.NewMemoryObjectStore()).Missing(context.Background(), []objects.ObjectHash{c2})
	require.NoError(t, e)

	layers := missing.Layers()
	position := make(map[objects.ObjectHash]int)
	count := 0
	for i, layer := range layers {
		for _, id := range layer {
			position[id] = i
			count++
		}
		for j := 1; j < len(layer); j++ {
			assert.Less(t, layer[j-1], layer[j])
		}
	}
	require.Equal(t, missing.Len(), count)

	edges := [][2]objects.ObjectHash{
		{t1, b1}, {c1, t1}, {t2, b2}, {t2, t1}, {c2, t2}, {c2, c1},
	}
	for _, edge := range edges {
		assert.Greater(t, position[edge[0]], position[edge[1]], "%s must follow %s", edge[0], edge[1])
	}
}

func TestMissingSet_LayersIgnorePresentChildren(t *testing.T) {
	h := newHistory(t)
	b1 := h.blob("one\n")
	t1 := h.tree(h.entry(objects.FileModeRegular, "f", b1))
	c1 := h.commit(t1, "first")
	c2 := h.commit(t1, "second", c1)

	target := store.NewMemoryObjectStore()
	h.copyTo(target, b1, t1, c1)

	missing, e := newTestWalker(h.store, target).Missing(context.Background(), []objects.ObjectHash{c2})
	require.NoError(t, e)
	assert.Equal(t, [][]objects.ObjectHash{{c2}}, missing.Layers())

	empty, e := newTestWalker(h.store, h.store).Missing(context.Background(), []objects.ObjectHash{c2})
	require.NoError(t, e)
	assert.Empty(t, empty.Layers())
}

func TestCheck(t *testing.T) {
	h := newHistory(t)
	b1 := h.blob("one\n")
	b2 := h.blob("two\n")
	absent := objects.NewStoredObject(objects.BlobType, []byte("gone\n")).ID
	tr := h.tree(
		h.entry(objects.FileModeRegular, "one", b1),
		h.entry(objects.FileModeRegular, "two", b2),
		h.entry(objects.FileModeRegular, "gone", absent),
	)
	c := h.commit(tr, "msg")

	report, e := Check(context.Background(), h.store, []objects.ObjectHash{c}, logger.Discard())
	require.NoError(t, e)
	assert.False(t, report.OK())
	assert.Equal(t, 5, report.Checked)
	assert.Equal(t, []objects.ObjectHash{absent}, report.Missing)
	assert.Empty(t, report.Corrupt)

	require.True(t, h.store.Tamper(b2, []byte("tampered\n")))
	report, e = Check(context.Background(), h.store, []objects.ObjectHash{c}, logger.Discard())
	require.NoError(t, e)
	assert.Equal(t, []objects.ObjectHash{b2}, report.Corrupt)
	assert.Equal(t, 2, report.Problems())
}

func TestCheck_CleanRepository(t *testing.T) {
	h := newHistory(t)
	c := h.commit(h.tree(h.entry(objects.FileModeRegular, "f", h.blob("f\n"))), "msg")

	report, e := Check(context.Background(), h.store, []objects.ObjectHash{c}, nil)
	require.NoError(t, e)
	assert.True(t, report.OK())
	assert.Equal(t, 3, report.Checked)
}

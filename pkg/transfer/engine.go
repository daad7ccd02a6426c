// Package transfer copies the committed history of one repository into
// another.
//
// A run lists the source references, walks the object graph to find what
// the target lacks, copies those objects on a bounded worker pool with
// each one re-verified and referenced objects stored before the objects
// that point at them, and only then moves the target references. A run
// that fails before the reference stage leaves every target reference
// untouched, so no reference ever points at a missing object.
package transfer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/graph"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/repository/refs"
	"github.com/kinnison/git-sync/pkg/repository/sourcerepo"
	"github.com/kinnison/git-sync/pkg/store"
)

// Engine runs transfers. It keeps no state between runs and may be reused
// concurrently.
type Engine struct {
	cfg config
	log *slog.Logger

	progressMu sync.Mutex
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{cfg: cfg, log: logger.OrDefault(cfg.log)}
}

// Run is shorthand for New(opts...).Transfer(ctx, source, target).
func Run(ctx context.Context, source, target *sourcerepo.Repository, opts ...Option) (*Result, error) {
	return New(opts...).Transfer(ctx, source, target)
}

// Transfer copies every object reachable from the source references that
// the target lacks, then points the target references at the source
// values.
//
// The returned Result is never nil. An error is returned only when the
// run aborts; reference conflicts and per-reference failures end in
// StatePartialSuccess with a nil error and are listed in the Result.
func (e *Engine) Transfer(ctx context.Context, source, target *sourcerepo.Repository) (*Result, error) {
	start := time.Now()
	res := &Result{State: StateStart}
	finish := func(state State) {
		res.State = state
		res.Duration = time.Since(start)
	}
	abort := func(stage State, cause error) (*Result, error) {
		res.AbortedIn = stage
		finish(StateAborted)
		e.log.Error("transfer aborted", "stage", stage, "error", cause)
		return res, cause
	}

	e.enter(res, StateEnumeratingReferences)
	sourceRefs, err := e.enumerate(source)
	if err != nil {
		return abort(StateEnumeratingReferences, err)
	}
	e.progress(StateEnumeratingReferences, len(sourceRefs), len(sourceRefs))
	if len(sourceRefs) == 0 {
		e.log.Info("no references to transfer")
		finish(StateSuccess)
		return res, nil
	}

	e.enter(res, StateWalking)
	roots := make([]objects.ObjectHash, len(sourceRefs))
	for i, r := range sourceRefs {
		roots[i] = r.Target
	}
	walkOpts := []graph.Option{graph.WithLogger(e.log)}
	if e.cfg.fullWalk {
		walkOpts = append(walkOpts, graph.WithFullWalk())
	}
	missing, err := graph.NewWalker(source.Objects, target.Objects, walkOpts...).Missing(ctx, roots)
	if err != nil {
		return abort(StateWalking, err)
	}
	res.ObjectsVisited = missing.Visited()
	res.ObjectsMissing = missing.Len()
	e.progress(StateWalking, missing.Visited(), missing.Visited())

	e.enter(res, StateTransferringObjects)
	copied, skipped, err := e.copyObjects(ctx, source.Objects, target.Objects, missing.Layers(), missing.Len())
	res.ObjectsTransferred = copied
	res.ObjectsSkipped = skipped
	if err != nil {
		return abort(StateTransferringObjects, err)
	}
	if err := checkBarrier(target.Objects, sourceRefs); err != nil {
		return abort(StateTransferringObjects, err)
	}

	e.enter(res, StateUpdatingReferences)
	e.updateReferences(res, target.Refs, sourceRefs)

	if len(res.Failed()) > 0 {
		finish(StatePartialSuccess)
		e.log.Warn("transfer finished with reference failures",
			"updated", res.ReferencesUpdated,
			"conflicts", len(res.Conflicts),
			"failed", len(res.Failed()))
		return res, nil
	}
	finish(StateSuccess)
	e.log.Info("transfer complete",
		"objects", res.ObjectsTransferred,
		"references", res.ReferencesUpdated,
		"duration", res.Duration)
	return res, nil
}

func (e *Engine) enter(res *Result, state State) {
	res.State = state
	e.log.Info("transfer stage", "stage", state)
	e.progress(state, 0, -1)
}

func (e *Engine) progress(stage State, done, total int) {
	if e.cfg.onProgress == nil {
		return
	}
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	e.cfg.onProgress(stage, done, total)
}

// enumerate lists the transferable source references that pass the
// configured patterns.
func (e *Engine) enumerate(source *sourcerepo.Repository) ([]refs.Reference, error) {
	all, err := source.Refs.List()
	if err != nil {
		return nil, NewAdapterIOError("list_references", "", "", err)
	}

	out := make([]refs.Reference, 0, len(all))
	for _, r := range refs.Filter(all, e.cfg.refPatterns) {
		if !r.Name.IsTransferable() {
			continue
		}
		out = append(out, r)
	}
	e.log.Debug("references enumerated", "listed", len(all), "selected", len(out))
	return out, nil
}

// copyObjects moves the layered ids from src to dst. Each layer runs on
// at most cfg.workers goroutines and only starts once the previous one is
// fully stored, so dst never holds an object whose references it lacks.
// The first failure cancels the remaining copies.
func (e *Engine) copyObjects(ctx context.Context, src, dst store.ObjectStore, layers [][]objects.ObjectHash, total int) (int, int, error) {
	var copied, skipped, done atomic.Int64

	for depth, layer := range layers {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.workers)
		for _, id := range layer {
			id := id
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				wrote, err := e.copyObject(gctx, src, dst, id)
				if err != nil {
					return err
				}
				if wrote {
					copied.Add(1)
				} else {
					skipped.Add(1)
				}
				e.progress(StateTransferringObjects, int(done.Add(1)), total)
				return nil
			})
		}
		err := g.Wait()
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			return int(copied.Load()), int(skipped.Load()), err
		}
		e.log.Debug("object layer stored", "layer", depth, "objects", len(layer))
	}
	return int(copied.Load()), int(skipped.Load()), nil
}

// copyObject reads id from src, re-checks its hash and stores it in dst.
// It reports false when dst already had the object.
func (e *Engine) copyObject(ctx context.Context, src, dst store.ObjectStore, id objects.ObjectHash) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	obj, err := src.Get(id)
	if err != nil {
		return false, classifyObjectError("get", id, err)
	}
	if obj.ID != id {
		return false, NewCorruptError("verify", id, objects.NewCorruptError(id, obj.ID))
	}
	if err := objects.Verify(obj); err != nil {
		return false, NewCorruptError("verify", id, err)
	}

	present, err := dst.Has(id)
	if err != nil {
		return false, NewAdapterIOError("has", id, "", err)
	}
	if present {
		e.log.Debug("object already present", "hash", id)
		return false, nil
	}
	if err := dst.Put(obj); err != nil {
		return false, classifyObjectError("put", id, err)
	}
	e.log.Debug("object copied", "hash", id, "type", obj.Type, "size", obj.Size())
	return true, nil
}

// checkBarrier confirms every reference target is in dst before any
// reference is moved.
func checkBarrier(dst store.ObjectStore, sourceRefs []refs.Reference) error {
	for _, r := range sourceRefs {
		ok, err := dst.Has(r.Target)
		if err != nil {
			return NewAdapterIOError("has", r.Target, r.Name, err)
		}
		if !ok {
			return NewIncompleteTransferError(r.Target, r.Name)
		}
	}
	return nil
}

// updateReferences moves each target reference with its own
// compare-and-set. Failures are recorded per reference and never stop the
// loop.
func (e *Engine) updateReferences(res *Result, dst refs.RefStore, sourceRefs []refs.Reference) {
	for i, r := range sourceRefs {
		outcome := e.updateReference(dst, r)
		res.References = append(res.References, outcome)

		switch {
		case outcome.Status.OK():
			res.ReferencesUpdated++
		case outcome.Status == RefConflict:
			res.Conflicts = append(res.Conflicts, r.Name)
			e.log.Warn("reference conflict", "ref", r.Name, "expected", outcome.Old, "new", r.Target)
		default:
			e.log.Warn("reference update failed", "ref", r.Name, "error", outcome.Err)
		}
		e.progress(StateUpdatingReferences, i+1, len(sourceRefs))
	}
}

func (e *Engine) updateReference(dst refs.RefStore, r refs.Reference) RefOutcome {
	outcome := RefOutcome{Name: r.Name, New: r.Target}

	current, exists, err := dst.Get(r.Name)
	if err != nil {
		outcome.Status = RefFailed
		outcome.Err = NewAdapterIOError("get_reference", "", r.Name, err)
		return outcome
	}
	if exists {
		outcome.Old = current
	}

	ok, err := dst.CompareAndSet(r.Name, current, exists, r.Target)
	switch {
	case err != nil:
		outcome.Status = RefFailed
		outcome.Err = NewAdapterIOError("compare_and_set", "", r.Name, err)
	case !ok:
		outcome.Status = RefConflict
		outcome.Err = NewReferenceConflictError(r.Name)
	case !exists:
		outcome.Status = RefCreated
	case current == r.Target:
		outcome.Status = RefUnchanged
	default:
		outcome.Status = RefUpdated
	}
	if outcome.Status.OK() {
		e.log.Debug("reference updated", "ref", r.Name, "status", outcome.Status, "target", r.Target)
	}
	return outcome
}

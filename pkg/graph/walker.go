// Package graph computes which objects a target store lacks by walking the
// object graph of a source store.
package graph

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/store"
)

// MissingSet is the result of a walk: the objects reachable from the roots
// that the target does not have, with the references between them.
type MissingSet struct {
	missing  map[objects.ObjectHash]struct{}
	children map[objects.ObjectHash][]objects.ObjectHash
	visited  int
}

func newMissingSet() *MissingSet {
	return &MissingSet{
		missing:  make(map[objects.ObjectHash]struct{}),
		children: make(map[objects.ObjectHash][]objects.ObjectHash),
	}
}

// Len returns the number of missing objects.
func (m *MissingSet) Len() int {
	return len(m.missing)
}

// Contains reports whether hash is missing from the target.
func (m *MissingSet) Contains(hash objects.ObjectHash) bool {
	_, ok := m.missing[hash]
	return ok
}

// Sorted returns the missing ids in ascending order.
func (m *MissingSet) Sorted() []objects.ObjectHash {
	out := make([]objects.ObjectHash, 0, len(m.missing))
	for h := range m.missing {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Layers groups the missing ids so that every object comes after the
// missing objects it references. Ids within a layer do not reference each
// other and are sorted. Writing the layers in order keeps the target
// closed: an object is only stored once everything below it is.
func (m *MissingSet) Layers() [][]objects.ObjectHash {
	pending := make(map[objects.ObjectHash]int, len(m.missing))
	parents := make(map[objects.ObjectHash][]objects.ObjectHash)
	var layer []objects.ObjectHash
	for id := range m.missing {
		seen := make(map[objects.ObjectHash]struct{})
		for _, child := range m.children[id] {
			if _, ok := m.missing[child]; !ok || child == id {
				continue
			}
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			pending[id]++
			parents[child] = append(parents[child], id)
		}
		if pending[id] == 0 {
			layer = append(layer, id)
		}
	}

	var out [][]objects.ObjectHash
	placed := 0
	for len(layer) > 0 {
		sort.Slice(layer, func(i, j int) bool { return layer[i] < layer[j] })
		out = append(out, layer)
		placed += len(layer)

		var next []objects.ObjectHash
		for _, id := range layer {
			for _, parent := range parents[id] {
				pending[parent]--
				if pending[parent] == 0 {
					next = append(next, parent)
				}
			}
		}
		layer = next
	}

	// Only a reference cycle leaves ids behind. Keep them all.
	if placed < len(m.missing) {
		var rest []objects.ObjectHash
		for id := range m.missing {
			if pending[id] > 0 {
				rest = append(rest, id)
			}
		}
		sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
		out = append(out, rest)
	}
	return out
}

// Visited returns how many distinct objects the walk examined.
func (m *MissingSet) Visited() int {
	return m.visited
}

// Walker finds the objects reachable from a set of roots in source that
// are absent from target.
//
// By default an object already present in target is assumed to have its
// whole subgraph present too, and the walk stops there. WithFullWalk
// drops that assumption.
type Walker struct {
	source   store.ObjectStore
	target   store.ObjectStore
	fullWalk bool
	log      *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithFullWalk expands objects the target already has. They are never
// reported missing, but their descendants may be.
func WithFullWalk() Option {
	return func(w *Walker) { w.fullWalk = true }
}

// WithLogger sets the logger. Nil keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(w *Walker) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWalker creates a walker from source to target.
func NewWalker(source, target store.ObjectStore, opts ...Option) *Walker {
	w := &Walker{source: source, target: target, log: logger.Default}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Missing walks depth-first from roots and returns the set of objects the
// target lacks. Zero and empty roots are ignored.
//
// A reachable object the source cannot supply aborts the walk with a
// SOURCE_OBJECT_MISSING error; a corrupt one keeps its CORRUPT code. The
// context is checked between objects.
func (w *Walker) Missing(ctx context.Context, roots []objects.ObjectHash) (*MissingSet, error) {
	result := newMissingSet()
	visited := make(map[objects.ObjectHash]struct{})

	stack := make([]objects.ObjectHash, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i] != "" && !roots[i].IsZero() {
			stack = append(stack, roots[i])
		}
	}

	for len(stack) > 0 {
		if e := ctx.Err(); e != nil {
			return nil, e
		}

		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		present, e := w.target.Has(id)
		if e != nil {
			return nil, NewAdapterIOError("has", id, e)
		}
		if present && !w.fullWalk {
			continue
		}

		obj, e := w.load(id, present)
		if e != nil {
			return nil, e
		}
		children, e := store.References(obj)
		if e != nil {
			return nil, classify("references", id, e)
		}
		if !present {
			result.missing[id] = struct{}{}
			result.children[id] = children
		}
		for i := len(children) - 1; i >= 0; i-- {
			if _, seen := visited[children[i]]; !seen {
				stack = append(stack, children[i])
			}
		}
	}

	result.visited = len(visited)
	w.log.Debug("walk complete",
		"roots", len(roots),
		"visited", result.visited,
		"missing", result.Len(),
		"full_walk", w.fullWalk)
	return result, nil
}

// load reads id from the source. During a full walk an object the target
// holds may be read from the target when the source lacks it.
func (w *Walker) load(id objects.ObjectHash, presentInTarget bool) (*objects.StoredObject, error) {
	obj, e := w.source.Get(id)
	if e == nil {
		return obj, nil
	}
	if presentInTarget && err.IsCode(e, err.CodeNotFound) {
		obj, te := w.target.Get(id)
		if te != nil {
			return nil, NewAdapterIOError("get", id, te)
		}
		return obj, nil
	}
	return nil, classify("get", id, e)
}

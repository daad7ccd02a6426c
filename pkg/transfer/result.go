package transfer

import (
	"fmt"
	"time"

	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/repository/refs"
)

// State is a stage of a transfer run.
type State string

const (
	StateStart                 State = "start"
	StateEnumeratingReferences State = "enumerating_references"
	StateWalking               State = "walking"
	StateTransferringObjects   State = "transferring_objects"
	StateUpdatingReferences    State = "updating_references"

	StateSuccess        State = "success"
	StatePartialSuccess State = "partial_success"
	StateAborted        State = "aborted"
)

// IsTerminal reports whether s ends a run.
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StatePartialSuccess || s == StateAborted
}

func (s State) String() string {
	return string(s)
}

// RefStatus is the outcome of updating one reference.
type RefStatus string

const (
	RefCreated   RefStatus = "created"
	RefUpdated   RefStatus = "updated"
	RefUnchanged RefStatus = "unchanged"
	RefConflict  RefStatus = "conflict"
	RefFailed    RefStatus = "failed"
)

// OK reports whether the reference now holds the source value.
func (s RefStatus) OK() bool {
	return s == RefCreated || s == RefUpdated || s == RefUnchanged
}

// RefOutcome records what happened to one reference.
type RefOutcome struct {
	Name   refs.RefPath
	Old    objects.ObjectHash // empty when the reference did not exist
	New    objects.ObjectHash
	Status RefStatus
	Err    error
}

// Result summarises a run.
//
// ReferencesUpdated counts every reference that ends up holding the
// source value, including ones that already did.
type Result struct {
	State State

	// AbortedIn is the stage that failed when State is StateAborted.
	AbortedIn State

	ObjectsTransferred int
	// ObjectsSkipped counts missing objects another writer stored first.
	ObjectsSkipped int
	ObjectsVisited int
	ObjectsMissing int

	ReferencesUpdated int
	References        []RefOutcome
	Conflicts         []refs.RefPath

	Duration time.Duration
}

// Failed returns the outcomes of references that were not updated.
func (r *Result) Failed() []RefOutcome {
	var out []RefOutcome
	for _, o := range r.References {
		if !o.Status.OK() {
			out = append(out, o)
		}
	}
	return out
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: %d objects transferred, %d references updated, %d conflicts in %s",
		r.State, r.ObjectsTransferred, r.ReferencesUpdated, len(r.Conflicts), r.Duration.Round(time.Millisecond))
}

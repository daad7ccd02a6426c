package refs

import (
	"sort"

	"github.com/kinnison/git-sync/pkg/objects"
)

// Reference is a named pointer to an object.
type Reference struct {
	Name   RefPath
	Target objects.ObjectHash
}

// RefStore is a repository's reference namespace.
//
// CompareAndSet is the only way to change a reference. It is atomic per
// name: when the current value differs from expectedOld (hasOld=false means
// "must not exist") it returns false and changes nothing. Setting a
// reference to the value it already holds succeeds without writing.
type RefStore interface {
	List() ([]Reference, error)
	Get(name RefPath) (objects.ObjectHash, bool, error)
	CompareAndSet(name RefPath, expectedOld objects.ObjectHash, hasOld bool, newHash objects.ObjectHash) (bool, error)
}

// HeadStore is implemented by stores that keep a HEAD file.
type HeadStore interface {
	// SymbolicHead returns the reference HEAD points to, or false when HEAD
	// is missing or detached.
	SymbolicHead() (RefPath, bool, error)

	// SetSymbolicHead points HEAD at target.
	SetSymbolicHead(target RefPath) error
}

// SortReferences orders refs by name.
func SortReferences(refs []Reference) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
}

// Filter keeps the references whose name matches any pattern. No patterns
// keeps everything.
func Filter(refs []Reference, patterns []string) []Reference {
	if len(patterns) == 0 {
		return refs
	}
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		for _, p := range patterns {
			if r.Name.Matches(p) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

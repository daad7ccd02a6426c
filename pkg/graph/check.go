package graph

import (
	"context"
	"log/slog"

	"github.com/kinnison/git-sync/pkg/common/err"
	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/store"
)

// CheckReport lists what a Check found wrong. Slices are in discovery
// order.
type CheckReport struct {
	Checked   int
	Missing   []objects.ObjectHash
	Corrupt   []objects.ObjectHash
	Malformed []objects.ObjectHash
}

// OK reports whether every reachable object was present and intact.
func (r *CheckReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Corrupt) == 0 && len(r.Malformed) == 0
}

// Problems returns the number of bad objects found.
func (r *CheckReport) Problems() int {
	return len(r.Missing) + len(r.Corrupt) + len(r.Malformed)
}

// Check reads every object reachable from roots in s, letting the store
// re-hash each one. Missing, corrupt and unparseable objects are recorded
// and not expanded; only other store failures stop the walk.
func Check(ctx context.Context, s store.ObjectStore, roots []objects.ObjectHash, log *slog.Logger) (*CheckReport, error) {
	log = logger.OrDefault(log)
	report := &CheckReport{}
	visited := make(map[objects.ObjectHash]struct{})

	stack := append([]objects.ObjectHash(nil), roots...)
	for len(stack) > 0 {
		if e := ctx.Err(); e != nil {
			return nil, e
		}

		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen || id == "" {
			continue
		}
		visited[id] = struct{}{}
		report.Checked++

		obj, e := s.Get(id)
		switch {
		case e == nil:
		case err.IsCode(e, err.CodeNotFound):
			log.Warn("object missing", "hash", id)
			report.Missing = append(report.Missing, id)
			continue
		case err.IsCode(e, err.CodeCorrupt):
			log.Warn("object corrupt", "hash", id)
			report.Corrupt = append(report.Corrupt, id)
			continue
		case err.IsCode(e, err.CodeInvalidFormat):
			log.Warn("object malformed", "hash", id, "error", e)
			report.Malformed = append(report.Malformed, id)
			continue
		default:
			return nil, NewAdapterIOError("get", id, e)
		}

		children, e := store.References(obj)
		if e != nil {
			log.Warn("object malformed", "hash", id, "error", e)
			report.Malformed = append(report.Malformed, id)
			continue
		}
		stack = append(stack, children...)
	}

	log.Debug("check complete", "checked", report.Checked, "problems", report.Problems())
	return report, nil
}

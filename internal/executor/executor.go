// Package executor performs the filesystem mutations a MovePlan
// describes and records one JournalEntry per attempted node. It is the
// only package in this module that touches the filesystem outside of
// existence/permission probes, built on pkg/fileutil (SafeRename,
// CopyDir, EnsureDir) and pkg/filelock for guarding concurrent
// destination-directory creation.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/xuanyiying/filemover-cli/internal/journal"
	"github.com/xuanyiying/filemover-cli/internal/progress"
	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/pkg/fileutil"
	"github.com/xuanyiying/filemover-cli/pkg/filelock"
)

// ErrCancelled is returned when the context is done before every
// executable node has been attempted. Nodes already journaled stay
// journaled; Apply never rewrites or rolls back a completed entry.
var ErrCancelled = context.Canceled

// NodeOutcome records what happened when one node was applied.
type NodeOutcome struct {
	NodeID uuid.UUID
	Result types.JournalResult
	Err    error
}

// Result summarizes one Apply call.
type Result struct {
	Attempted int
	Succeeded int
	Failed    int
	Outcomes  []NodeOutcome
}

// Executor applies plan nodes to disk. Construct it with New: the zero
// value has no lock manager and cannot Apply. locks guards concurrent MkdirAll calls onto the same destination parent
// when a future caller parallelizes Apply across independent subtrees.
type Executor struct {
	locks *filelock.LockManager
}

// New returns an Executor ready to apply plans.
func New() *Executor {
	return &Executor{locks: filelock.NewLockManager()}
}

// Apply walks plan in parent-before-child order and, for every
// executable node, performs its operation, appends a JournalEntry, and
// advances bar (if non-nil) by one. It is best-effort: a failed node is
// journaled as Failed and execution continues with its siblings, but a
// failed parent's children are skipped outright since their recorded
// PathBefore no longer exists once the parent move is abandoned
// mid-tree. Apply returns ErrCancelled, wrapped, the first time ctx is
// done, after journaling whatever was already in flight.
func (e *Executor) Apply(ctx context.Context, plan *types.MovePlan, jw *journal.Writer, bar *progress.Bar) (Result, error) {
	order := preOrder(plan)
	remap := make(map[string]string, len(order))
	abandoned := make(map[uuid.UUID]bool, len(order))

	var result Result
	for _, node := range order {
		if !node.Kind.Executable() {
			continue
		}
		if abandoned[node.ID] {
			continue
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("executor: %w", ErrCancelled)
		default:
		}

		result.Attempted++
		source := resolveSource(node.PathBefore, remap)

		err := e.applyNode(node, source)
		entry := types.JournalEntry{
			WhenUTC: time.Now().UTC(),
			Source:  source,
			Dest:    node.PathAfter,
			Op:      node.Kind,
			Result:  types.ResultOk,
		}
		if err != nil {
			entry.Result = types.ResultFailed
			entry.Message = err.Error()
			result.Failed++
			abandonSubtree(plan, node, abandoned)
		} else {
			result.Succeeded++
			remap[node.PathBefore] = node.PathAfter
		}
		result.Outcomes = append(result.Outcomes, NodeOutcome{NodeID: node.ID, Result: entry.Result, Err: err})

		if jw != nil {
			if werr := jw.Append(entry); werr != nil {
				return result, fmt.Errorf("executor: journal append: %w", werr)
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	if bar != nil {
		bar.Finish()
	}
	return result, nil
}

func (e *Executor) applyNode(node *types.PlanNode, source string) error {
	destParent := filepath.Dir(node.PathAfter)
	if err := e.locks.WithLock(destParent, func() error {
		return fileutil.EnsureDir(destParent)
	}); err != nil {
		return err
	}

	switch node.Kind {
	case types.OpMove, types.OpRename:
		return fileutil.SafeRename(source, node.PathAfter)
	case types.OpCopyDelete:
		if err := fileutil.CopyDir(source, node.PathAfter); err != nil {
			return err
		}
		return os.RemoveAll(source)
	default:
		return fmt.Errorf("executor: node %s has non-executable kind %q", node.ID, node.Kind)
	}
}

// resolveSource rewrites path to account for an ancestor that already
// moved earlier in the same Apply call: if some prefix of path was
// remapped from old to new, the node's filesystem location shifted
// along with its parent even though PathBefore still names the
// pre-move location.
func resolveSource(pathBefore string, remap map[string]string) string {
	clean := filepath.Clean(pathBefore)
	for old, next := range remap {
		oldClean := filepath.Clean(old)
		if clean == oldClean {
			return next
		}
		prefix := oldClean + string(filepath.Separator)
		if len(clean) > len(prefix) && clean[:len(prefix)] == prefix {
			return filepath.Join(next, clean[len(prefix):])
		}
	}
	return pathBefore
}

// abandonSubtree marks every descendant of a failed node as abandoned
// so Apply doesn't try to operate on paths that no longer exist in
// their recorded location.
func abandonSubtree(plan *types.MovePlan, node *types.PlanNode, abandoned map[uuid.UUID]bool) {
	for _, childID := range node.Children {
		if abandoned[childID] {
			continue
		}
		abandoned[childID] = true
		if child, ok := plan.Nodes[childID]; ok {
			abandonSubtree(plan, child, abandoned)
		}
	}
}

// preOrder returns every node in the plan in root-to-leaf, deterministic
// order, so a parent is always applied before the children nested
// inside it.
func preOrder(plan *types.MovePlan) []*types.PlanNode {
	roots := append([]uuid.UUID(nil), plan.Roots...)
	sort.Slice(roots, func(i, j int) bool {
		return sortKey(plan, roots[i]) < sortKey(plan, roots[j])
	})

	var order []*types.PlanNode
	var visit func(id uuid.UUID)
	visit = func(id uuid.UUID) {
		node, ok := plan.Nodes[id]
		if !ok {
			return
		}
		order = append(order, node)
		children := append([]uuid.UUID(nil), node.Children...)
		sort.Slice(children, func(i, j int) bool {
			return sortKey(plan, children[i]) < sortKey(plan, children[j])
		})
		for _, c := range children {
			visit(c)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return order
}

func sortKey(plan *types.MovePlan, id uuid.UUID) string {
	if n, ok := plan.Nodes[id]; ok {
		return n.PathBefore
	}
	return ""
}

// IsCancelled reports whether err is (or wraps) ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

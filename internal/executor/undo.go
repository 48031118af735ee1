package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuanyiying/filemover-cli/internal/journal"
	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/internal/undo"
	"github.com/xuanyiying/filemover-cli/pkg/fileutil"
)

// ApplyUndo performs the inverse filesystem operations undo.Analyze
// produced and appends one JournalEntry per attempt to jw, so an undo
// run leaves its own audit trail the way a forward apply does.
func (e *Executor) ApplyUndo(ctx context.Context, actions []undo.Action, jw *journal.Writer) (Result, error) {
	var result Result
	for _, action := range actions {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("executor: %w", ErrCancelled)
		default:
		}

		result.Attempted++
		err := e.applyUndoAction(action)

		entry := types.JournalEntry{
			WhenUTC: time.Now().UTC(),
			Source:  action.Source,
			Dest:    action.Dest,
			Op:      action.Op,
			Result:  types.ResultOk,
		}
		if err != nil {
			entry.Result = types.ResultFailed
			entry.Message = err.Error()
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Outcomes = append(result.Outcomes, NodeOutcome{Result: entry.Result, Err: err})

		if jw != nil {
			if werr := jw.Append(entry); werr != nil {
				return result, fmt.Errorf("executor: journal append: %w", werr)
			}
		}
	}
	return result, nil
}

func (e *Executor) applyUndoAction(action undo.Action) error {
	destParent := filepath.Dir(action.Dest)
	if err := e.locks.WithLock(destParent, func() error {
		return fileutil.EnsureDir(destParent)
	}); err != nil {
		return err
	}

	switch action.Op {
	case types.OpCopyDelete:
		if err := fileutil.CopyDir(action.Source, action.Dest); err != nil {
			return err
		}
		return os.RemoveAll(action.Source)
	default:
		return fileutil.SafeRename(action.Source, action.Dest)
	}
}

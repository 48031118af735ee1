// Package undo reverse-classifies a journal into actions that can be
// safely rolled back and entries that cannot, adapted from
// apps/cli/src/commands/undo.rs's analyze_undo_feasibility /
// execute_single_undo split between analysis and action.
package undo

import (
	"os"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

// Action is one inverse operation the Executor should perform to roll
// an entry back.
type Action struct {
	Entry  types.JournalEntry
	Op     types.OpKind
	Source string // current location (the journal's Dest)
	Dest   string // where it should return to (the journal's Source)
}

// Blocked is a journal entry that cannot be undone, with the reason.
type Blocked struct {
	Entry types.JournalEntry
	Issue string
}

const (
	issueDestGone       = "destination no longer exists"
	issueSourceExists   = "source already exists"
	issueDidNotComplete = "operation did not complete successfully"
)

// Analyze walks entries in reverse order (undo happens last-operation-
// first) and splits them into undoable actions and blocked entries. An
// entry is undoable iff it recorded Ok, its Dest currently exists, and
// its Source does not.
func Analyze(entries []types.JournalEntry) ([]Action, []Blocked) {
	var actions []Action
	var blocked []Blocked

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Result != types.ResultOk {
			blocked = append(blocked, Blocked{Entry: e, Issue: issueDidNotComplete})
			continue
		}

		destExists := pathExists(e.Dest)
		sourceExists := pathExists(e.Source)

		switch {
		case destExists && !sourceExists:
			actions = append(actions, inverseOf(e))
		case !destExists:
			blocked = append(blocked, Blocked{Entry: e, Issue: issueDestGone})
		case sourceExists:
			blocked = append(blocked, Blocked{Entry: e, Issue: issueSourceExists})
		}
	}

	return actions, blocked
}

// inverseOf builds the reverse action for a single undoable entry:
// Move(s->d) becomes Move(d->s); CopyDelete(s->d) becomes copying
// d->s then deleting d (the Executor's OpCopyDelete handler already
// implements that two-step sequence, so it is reused for both
// directions); Rename becomes renaming back.
func inverseOf(e types.JournalEntry) Action {
	op := e.Op
	if op == types.OpNone || op == types.OpSkip {
		op = types.OpMove
	}
	return Action{Entry: e, Op: op, Source: e.Dest, Dest: e.Source}
}

func pathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

package planner

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

func singleNodePlan(t *testing.T) (*Session, *types.PlanNode) {
	t.Helper()
	dir := t.TempDir()
	rule := newTestRule(filepath.Join(dir, "archive"), "{name}", 0)
	hits := []types.FolderHit{hitFor(filepath.Join(dir, "Downloads"), "Downloads", rule)}

	sess, err := CreatePlan(hits, []types.Rule{rule}, FixedClock{At: time.Now()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return sess, sess.Plan.Nodes[sess.Plan.Roots[0]]
}

func TestApplyChangeSetSkipTrueThenFalseRoundTrips(t *testing.T) {
	sess, node := singleNodePlan(t)
	originalKind := node.Kind

	if _, err := ApplyChange(sess.Plan, sess.Resolver, types.SetSkip(node.ID, true)); err != nil {
		t.Fatal(err)
	}
	if node.Kind != types.OpSkip {
		t.Fatalf("expected OpSkip after SetSkip(true), got %q", node.Kind)
	}
	if sess.Plan.Summary.CountDirs != 0 {
		t.Errorf("expected CountDirs=0 after skipping the only node, got %d", sess.Plan.Summary.CountDirs)
	}

	if _, err := ApplyChange(sess.Plan, sess.Resolver, types.SetSkip(node.ID, false)); err != nil {
		t.Fatal(err)
	}
	if node.Kind != originalKind {
		t.Errorf("expected kind restored to %q, got %q", originalKind, node.Kind)
	}
	if sess.Plan.Summary.CountDirs != 1 {
		t.Errorf("expected CountDirs=1 after un-skipping, got %d", sess.Plan.Summary.CountDirs)
	}
}

func TestApplyChangeExcludeNodeCascadesToChildren(t *testing.T) {
	dir := t.TempDir()
	rule := newTestRule(filepath.Join(dir, "archive"), "{name}", 0)
	parentPath := filepath.Join(dir, "src", "Projects")
	childPath := filepath.Join(parentPath, "Nested")

	hits := []types.FolderHit{
		hitFor(parentPath, "Projects", rule),
		hitFor(childPath, "Nested", rule),
	}
	sess, err := CreatePlan(hits, []types.Rule{rule}, FixedClock{At: time.Now()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	rootID := sess.Plan.Roots[0]
	root := sess.Plan.Nodes[rootID]
	childID := root.Children[0]

	if _, err := ApplyChange(sess.Plan, sess.Resolver, types.ExcludeNode(rootID)); err != nil {
		t.Fatal(err)
	}
	if root.Kind != types.OpNone {
		t.Errorf("expected root kind None after exclude, got %q", root.Kind)
	}
	if sess.Plan.Nodes[childID].Kind != types.OpNone {
		t.Errorf("expected exclude to cascade to child, got %q", sess.Plan.Nodes[childID].Kind)
	}
}

func TestApplyChangeRenameNodeUpdatesPathAfter(t *testing.T) {
	sess, node := singleNodePlan(t)
	oldPath := node.PathAfter

	if _, err := ApplyChange(sess.Plan, sess.Resolver, types.RenameNode(node.ID, "Renamed")); err != nil {
		t.Fatal(err)
	}
	if node.PathAfter == oldPath {
		t.Errorf("expected path_after to change after rename")
	}
	if filepath.Base(node.PathAfter) != "Renamed" {
		t.Errorf("expected new name Renamed, got %q", filepath.Base(node.PathAfter))
	}
}

func TestApplyChangeSetConflictPolicySwitchesResolution(t *testing.T) {
	dir := t.TempDir()
	rule := newTestRule(filepath.Join(dir, "archive"), "{name}", 0)
	rule.Policy = types.PolicySkip
	hits := []types.FolderHit{hitFor(filepath.Join(dir, "Downloads"), "Downloads", rule)}

	sess, err := CreatePlan(hits, []types.Rule{rule}, FixedClock{At: time.Now()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	node := sess.Plan.Nodes[sess.Plan.Roots[0]]
	if _, err := ApplyChange(sess.Plan, sess.Resolver, types.SetConflictPolicy(node.ID, types.PolicyAutoRename)); err != nil {
		t.Fatal(err)
	}
	if node.Policy != types.PolicyAutoRename {
		t.Errorf("expected policy updated to auto_rename, got %q", node.Policy)
	}
}

func TestConflictKeyDistinguishesNoSpaceConflictsByByteFigures(t *testing.T) {
	a := types.NoSpace(1000, 500)
	b := types.NoSpace(2000, 500)
	if conflictKey(a) == conflictKey(b) {
		t.Fatalf("expected distinct NoSpace conflicts with different required bytes to have distinct keys, got equal keys %q", conflictKey(a))
	}

	added, removed := diffConflictSets([]types.Conflict{a}, []types.Conflict{b})
	if len(added) != 1 || len(removed) != 1 {
		t.Fatalf("expected replacing a with b to register as one added and one removed conflict, got added=%+v removed=%+v", added, removed)
	}
}

func TestValidateRecomputesSummaryFromScratch(t *testing.T) {
	sess, node := singleNodePlan(t)
	sess.Plan.Summary.CountDirs = 999 // corrupt it

	delta, err := Validate(sess.Plan)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Plan.Summary.CountDirs != 1 {
		t.Errorf("expected Validate to recompute CountDirs=1, got %d", sess.Plan.Summary.CountDirs)
	}
	_ = node
	_ = delta
}

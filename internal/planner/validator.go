package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/pkg/ferrors"
)

// contribution is a node's effect on PlanSummary while it is
// executable; a Skip or None node contributes the zero value.
type contribution struct {
	Dirs        int
	CrossVolume int
	Conflicts   int
	Warnings    int
	Bytes       int64
	HasBytes    bool
}

func contributionOf(n *types.PlanNode) contribution {
	if !n.Kind.Executable() {
		return contribution{}
	}
	c := contribution{Dirs: 1, Conflicts: len(n.Conflicts), Warnings: len(n.Warnings)}
	if n.SizeBytes != nil {
		c.Bytes = *n.SizeBytes
		c.HasBytes = true
	}
	if n.Kind == types.OpCopyDelete {
		c.CrossVolume = 1
	}
	return c
}

func diffContribution(before, after contribution) types.PlanSummaryDiff {
	return types.PlanSummaryDiff{
		CountDirsDelta:   after.Dirs - before.Dirs,
		TotalBytesDelta:  after.Bytes - before.Bytes,
		CrossVolumeDelta: after.CrossVolume - before.CrossVolume,
		ConflictsDelta:   after.Conflicts - before.Conflicts,
		WarningsDelta:    after.Warnings - before.Warnings,
	}
}

func negateDiff(c contribution) types.PlanSummaryDiff {
	return diffContribution(c, contribution{})
}

func addDiff(a, b types.PlanSummaryDiff) types.PlanSummaryDiff {
	return types.PlanSummaryDiff{
		CountDirsDelta:   a.CountDirsDelta + b.CountDirsDelta,
		CountFilesDelta:  a.CountFilesDelta + b.CountFilesDelta,
		TotalBytesDelta:  a.TotalBytesDelta + b.TotalBytesDelta,
		CrossVolumeDelta: a.CrossVolumeDelta + b.CrossVolumeDelta,
		ConflictsDelta:   a.ConflictsDelta + b.ConflictsDelta,
		WarningsDelta:    a.WarningsDelta + b.WarningsDelta,
	}
}

func applyDiff(s types.PlanSummary, d types.PlanSummaryDiff) types.PlanSummary {
	s.CountDirs += d.CountDirsDelta
	s.CountFiles += d.CountFilesDelta
	s.CrossVolume += d.CrossVolumeDelta
	s.Conflicts += d.ConflictsDelta
	s.Warnings += d.WarningsDelta
	if d.TotalBytesDelta != 0 {
		var base int64
		if s.TotalBytes != nil {
			base = *s.TotalBytes
		}
		total := base + d.TotalBytesDelta
		s.TotalBytes = &total
	}
	return s
}

// computeSummary recomputes PlanSummary from scratch over every node
// currently in the plan, the whole-plan counterpart of the incremental
// diffs applied elsewhere.
func computeSummary(plan *types.MovePlan) types.PlanSummary {
	var s types.PlanSummary
	var total int64
	var hasBytes bool
	for _, n := range plan.Nodes {
		c := contributionOf(n)
		s.CountDirs += c.Dirs
		s.CrossVolume += c.CrossVolume
		s.Conflicts += c.Conflicts
		s.Warnings += c.Warnings
		if c.HasBytes {
			total += c.Bytes
			hasBytes = true
		}
	}
	if hasBytes {
		s.TotalBytes = &total
	}
	return s
}

func conflictKey(c types.Conflict) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", c.Kind, c.ExistingPath, c.Required, c.RequiredBytes, c.AvailableBytes)
}

// diffConflictSets reports which conflicts were added and which were
// removed between two conflict snapshots of the same node.
func diffConflictSets(old, new []types.Conflict) (added, removed []types.Conflict) {
	oldSet := make(map[string]types.Conflict, len(old))
	for _, c := range old {
		oldSet[conflictKey(c)] = c
	}
	newSet := make(map[string]types.Conflict, len(new))
	for _, c := range new {
		newSet[conflictKey(c)] = c
	}
	for k, c := range newSet {
		if _, ok := oldSet[k]; !ok {
			added = append(added, c)
		}
	}
	for k, c := range oldSet {
		if _, ok := newSet[k]; !ok {
			removed = append(removed, c)
		}
	}
	return added, removed
}

// checkTreeAcyclic walks the Children forest from Roots with a
// recursion stack, guarding the structural invariant that the plan's
// parent/child edges never loop back on themselves.
func checkTreeAcyclic(plan *types.MovePlan) error {
	state := make(map[uuid.UUID]int) // 0 unvisited, 1 in-progress, 2 done
	var visit func(id uuid.UUID) error
	visit = func(id uuid.UUID) error {
		switch state[id] {
		case 1:
			return ferrors.New(ferrors.KindPlanValidation, "plan tree contains a cycle at node %s", id)
		case 2:
			return nil
		}
		state[id] = 1
		node, ok := plan.Nodes[id]
		if ok {
			for _, child := range node.Children {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		state[id] = 2
		return nil
	}
	for _, root := range plan.Roots {
		if err := visit(root); err != nil {
			return err
		}
	}
	return nil
}

// syncDestInsideSource recomputes the DestInsideSource structural
// check for a single node and reconciles its Conflicts slice to
// match, returning the resulting added/removed conflict (if any).
func syncDestInsideSource(node *types.PlanNode) (added, removed *types.Conflict) {
	actual := isDestInsideSource(node.PathAfter, node.PathBefore)
	has := false
	idx := -1
	for i, c := range node.Conflicts {
		if c.Kind == types.ConflictDestInsideSource {
			has = true
			idx = i
			break
		}
	}
	switch {
	case actual && !has:
		c := types.DestInsideSourceConflict()
		node.Conflicts = append(node.Conflicts, c)
		return &c, nil
	case !actual && has:
		c := node.Conflicts[idx]
		node.Conflicts = append(node.Conflicts[:idx], node.Conflicts[idx+1:]...)
		return nil, &c
	default:
		return nil, nil
	}
}

// Validate runs the whole-plan pass: structural tree-cycle check,
// per-node DestInsideSource recheck, summary recomputation from
// scratch, and a report of which nodes' conflict sets changed.
func Validate(plan *types.MovePlan) (types.ValidationDelta, error) {
	if err := checkTreeAcyclic(plan); err != nil {
		return types.ValidationDelta{}, err
	}

	var affected []uuid.UUID
	var newConflicts, resolvedConflicts []types.Conflict
	for id, node := range plan.Nodes {
		if !node.Kind.Executable() {
			continue
		}
		added, removed := syncDestInsideSource(node)
		if added != nil || removed != nil {
			affected = append(affected, id)
			if added != nil {
				newConflicts = append(newConflicts, *added)
			}
			if removed != nil {
				resolvedConflicts = append(resolvedConflicts, *removed)
			}
		}
	}

	before := plan.Summary
	after := computeSummary(plan)
	plan.Summary = after

	diff := types.PlanSummaryDiff{
		CountDirsDelta:   after.CountDirs - before.CountDirs,
		CountFilesDelta:  after.CountFiles - before.CountFiles,
		CrossVolumeDelta: after.CrossVolume - before.CrossVolume,
		ConflictsDelta:   after.Conflicts - before.Conflicts,
		WarningsDelta:    after.Warnings - before.Warnings,
	}
	if after.TotalBytes != nil || before.TotalBytes != nil {
		var a, b int64
		if after.TotalBytes != nil {
			a = *after.TotalBytes
		}
		if before.TotalBytes != nil {
			b = *before.TotalBytes
		}
		diff.TotalBytesDelta = a - b
	}

	return types.ValidationDelta{AffectedNodes: affected, NewConflicts: newConflicts, ResolvedConflicts: resolvedConflicts, SummaryDiff: diff}, nil
}

// ApplyChange implements the incremental NodeChange effect table,
// serialized by the caller's plan-wide mutex.
func ApplyChange(plan *types.MovePlan, resolver *Resolver, change types.NodeChange) (types.ValidationDelta, error) {
	node, ok := plan.Nodes[change.NodeID]
	if !ok {
		return types.ValidationDelta{}, ferrors.New(ferrors.KindPlanValidation, "apply_change: unknown node %s", change.NodeID)
	}

	switch change.Kind {
	case types.ChangeSetSkip:
		if change.Skip {
			return applySetSkipTrue(plan, resolver, node)
		}
		return applySetSkipFalse(plan, resolver, node)
	case types.ChangeSetConflictPolicy:
		return applySetConflictPolicy(plan, resolver, node, change.Policy)
	case types.ChangeRenameNode:
		return applyRenameNode(plan, resolver, node, change.NewName)
	case types.ChangeExcludeNode:
		return applyExcludeNode(plan, resolver, node)
	default:
		return types.ValidationDelta{}, ferrors.New(ferrors.KindPlanValidation, "apply_change: unknown change kind %q", change.Kind)
	}
}

func applySetSkipTrue(plan *types.MovePlan, resolver *Resolver, node *types.PlanNode) (types.ValidationDelta, error) {
	if node.Kind == types.OpSkip {
		return types.ValidationDelta{}, nil
	}
	before := contributionOf(node)
	node.PriorKind = node.Kind
	node.Kind = types.OpSkip
	resolved := append([]types.Conflict(nil), node.Conflicts...)
	node.Conflicts = nil
	resolver.Free(node.PathAfter)

	diff := negateDiff(before)
	affected := []uuid.UUID{node.ID}

	for id, other := range plan.Nodes {
		if id == node.ID || !other.Kind.Executable() {
			continue
		}
		var kept []types.Conflict
		changed := false
		for _, c := range other.Conflicts {
			if c.Kind == types.ConflictNameExists && c.ExistingPath == node.PathAfter {
				resolved = append(resolved, c)
				changed = true
				continue
			}
			kept = append(kept, c)
		}
		if changed {
			diff.ConflictsDelta -= len(other.Conflicts) - len(kept)
			other.Conflicts = kept
			affected = append(affected, id)
		}
	}

	plan.Summary = applyDiff(plan.Summary, diff)
	return types.ValidationDelta{AffectedNodes: affected, ResolvedConflicts: resolved, SummaryDiff: diff}, nil
}

func applySetSkipFalse(plan *types.MovePlan, resolver *Resolver, node *types.PlanNode) (types.ValidationDelta, error) {
	if node.Kind != types.OpSkip {
		return types.ValidationDelta{}, nil
	}
	restored := node.PriorKind
	if restored == "" {
		restored = types.OpMove
	}
	node.Kind = restored
	node.PriorKind = ""

	final, conflicts, err := resolver.Resolve(node.DesiredPath, node.PathBefore, node.Policy, node.SizeBytes)
	if err != nil {
		return types.ValidationDelta{}, err
	}
	node.PathAfter = final
	node.NameAfter = filepath.Base(final)
	node.Conflicts = conflicts

	diff := diffContribution(contribution{}, contributionOf(node))
	plan.Summary = applyDiff(plan.Summary, diff)
	return types.ValidationDelta{AffectedNodes: []uuid.UUID{node.ID}, NewConflicts: conflicts, SummaryDiff: diff}, nil
}

func applySetConflictPolicy(plan *types.MovePlan, resolver *Resolver, node *types.PlanNode, policy types.ConflictPolicy) (types.ValidationDelta, error) {
	before := contributionOf(node)
	resolver.Free(node.PathAfter)
	node.Policy = policy

	final, conflicts, err := resolver.Resolve(node.DesiredPath, node.PathBefore, policy, node.SizeBytes)
	if err != nil {
		return types.ValidationDelta{}, err
	}
	oldConflicts := node.Conflicts
	node.PathAfter = final
	node.NameAfter = filepath.Base(final)
	node.Conflicts = conflicts

	diff := diffContribution(before, contributionOf(node))
	plan.Summary = applyDiff(plan.Summary, diff)

	added, removed := diffConflictSets(oldConflicts, conflicts)
	return types.ValidationDelta{AffectedNodes: []uuid.UUID{node.ID}, NewConflicts: added, ResolvedConflicts: removed, SummaryDiff: diff}, nil
}

func applyRenameNode(plan *types.MovePlan, resolver *Resolver, node *types.PlanNode, newName string) (types.ValidationDelta, error) {
	before := contributionOf(node)
	resolver.Free(node.PathAfter)
	oldPathAfter := node.PathAfter
	node.DesiredPath = filepath.Join(filepath.Dir(node.PathAfter), newName)

	final, conflicts, err := resolver.Resolve(node.DesiredPath, node.PathBefore, node.Policy, node.SizeBytes)
	if err != nil {
		return types.ValidationDelta{}, err
	}
	oldConflicts := node.Conflicts
	node.PathAfter = final
	node.NameAfter = filepath.Base(final)
	node.Conflicts = conflicts

	diff := diffContribution(before, contributionOf(node))
	affected := []uuid.UUID{node.ID}
	cascadeRename(plan, node.ID, oldPathAfter, final, &affected)
	plan.Summary = applyDiff(plan.Summary, diff)

	added, removed := diffConflictSets(oldConflicts, conflicts)
	return types.ValidationDelta{AffectedNodes: affected, NewConflicts: added, ResolvedConflicts: removed, SummaryDiff: diff}, nil
}

func cascadeRename(plan *types.MovePlan, parentID uuid.UUID, oldPrefix, newPrefix string, affected *[]uuid.UUID) {
	parent, ok := plan.Nodes[parentID]
	if !ok {
		return
	}
	for _, childID := range parent.Children {
		child, ok := plan.Nodes[childID]
		if !ok || !strings.HasPrefix(child.PathAfter, oldPrefix) {
			continue
		}
		child.PathAfter = newPrefix + strings.TrimPrefix(child.PathAfter, oldPrefix)
		child.NameAfter = filepath.Base(child.PathAfter)
		*affected = append(*affected, child.ID)
		cascadeRename(plan, child.ID, oldPrefix, newPrefix, affected)
	}
}

func applyExcludeNode(plan *types.MovePlan, resolver *Resolver, node *types.PlanNode) (types.ValidationDelta, error) {
	if node.Kind == types.OpNone {
		return types.ValidationDelta{}, nil
	}
	before := contributionOf(node)
	node.PriorKind = node.Kind
	node.Kind = types.OpNone
	resolved := append([]types.Conflict(nil), node.Conflicts...)
	node.Conflicts = nil
	resolver.Free(node.PathAfter)

	diff := negateDiff(before)
	affected := []uuid.UUID{node.ID}
	cascadeExclude(plan, node.ID, resolver, &affected, &diff, &resolved)

	plan.Summary = applyDiff(plan.Summary, diff)
	return types.ValidationDelta{AffectedNodes: affected, ResolvedConflicts: resolved, SummaryDiff: diff}, nil
}

func cascadeExclude(plan *types.MovePlan, parentID uuid.UUID, resolver *Resolver, affected *[]uuid.UUID, diff *types.PlanSummaryDiff, resolved *[]types.Conflict) {
	parent, ok := plan.Nodes[parentID]
	if !ok {
		return
	}
	for _, childID := range parent.Children {
		child, ok := plan.Nodes[childID]
		if !ok || child.Kind == types.OpNone {
			continue
		}
		before := contributionOf(child)
		child.PriorKind = child.Kind
		child.Kind = types.OpNone
		*resolved = append(*resolved, child.Conflicts...)
		child.Conflicts = nil
		resolver.Free(child.PathAfter)
		*diff = addDiff(*diff, negateDiff(before))
		*affected = append(*affected, child.ID)
		cascadeExclude(plan, child.ID, resolver, affected, diff, resolved)
	}
}

package planner

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/pkg/template"
)

// Clock supplies the single timestamp a create_plan call threads
// through every template expansion in that batch, so date variables
// are stable across the whole plan regardless of wall-clock drift
// while the plan is being built.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant, for deterministic tests.
type FixedClock struct{ At time.Time }

func (c FixedClock) Now() time.Time { return c.At }

// Session owns one MovePlan and the Resolver that produced it.
// Incremental edits are serialized by Mu, matching the single-mutex
// guard a concurrent caller must hold around the MovePlan instance.
type Session struct {
	Mu       sync.Mutex
	Plan     *types.MovePlan
	Resolver *Resolver
	Rules    map[uuid.UUID]types.Rule
	Now      time.Time
}

// CreatePlan builds a MovePlan from scanned hits and the rule set that
// produced them, following the fixed six-step algorithm: fix the
// clock, build nodes, resolve conflicts in priority order, link the
// parent/child forest, detect plan-wide rename cycles, and run
// whole-plan validation.
func CreatePlan(hits []types.FolderHit, rules []types.Rule, clock Clock, freeSpace FreeSpaceHook) (*Session, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	now := clock.Now().UTC()

	ruleByID := make(map[uuid.UUID]types.Rule, len(rules))
	for _, r := range rules {
		ruleByID[r.ID] = r
	}

	nodes, err := buildNodes(hits, ruleByID, now)
	if err != nil {
		return nil, err
	}
	sortNodesDeterministic(nodes, ruleByID)

	resolver := NewResolver(freeSpace)
	for _, node := range nodes {
		if node.Kind == types.OpNone {
			node.PathAfter = node.DesiredPath
			node.NameAfter = filepath.Base(node.PathAfter)
			continue
		}
		final, conflicts, err := resolver.Resolve(node.DesiredPath, node.PathBefore, node.Policy, node.SizeBytes)
		if err != nil {
			return nil, err
		}
		node.PathAfter = final
		node.NameAfter = filepath.Base(final)
		node.Conflicts = conflicts
	}

	markRenameCycles(nodes)
	roots := linkParentChild(nodes)

	plan := types.NewMovePlan()
	for _, n := range nodes {
		plan.Nodes[n.ID] = n
	}
	plan.Roots = roots

	if _, err := Validate(plan); err != nil {
		return nil, err
	}

	return &Session{Plan: plan, Resolver: resolver, Rules: ruleByID, Now: now}, nil
}

func buildNodes(hits []types.FolderHit, ruleByID map[uuid.UUID]types.Rule, now time.Time) ([]*types.PlanNode, error) {
	var nodes []*types.PlanNode
	for _, hit := range hits {
		if hit.MatchedRule == nil {
			continue
		}
		rule, ok := ruleByID[*hit.MatchedRule]
		if !ok {
			continue
		}
		desired, err := template.Expand(rule, hit.Path, now)
		if err != nil {
			return nil, err
		}

		kind := types.OpMove
		switch {
		case filepath.Clean(hit.Path) == filepath.Clean(desired):
			kind = types.OpNone
		case DifferentVolumes(hit.Path, desired):
			kind = types.OpCopyDelete
		}

		ruleID := *hit.MatchedRule
		nodes = append(nodes, &types.PlanNode{
			ID:          uuid.New(),
			IsDir:       true,
			NameBefore:  hit.Name,
			PathBefore:  hit.Path,
			DesiredPath: desired,
			Policy:      rule.Policy,
			Kind:        kind,
			SizeBytes:   hit.SizeBytes,
			Warnings:    hit.Warnings,
			RuleID:      &ruleID,
		})
	}
	return nodes, nil
}

// sortNodesDeterministic orders nodes by ascending rule priority, then
// source path lexicographically, fixing the destination-assignment
// order the Conflict Resolver depends on.
func sortNodesDeterministic(nodes []*types.PlanNode, ruleByID map[uuid.UUID]types.Rule) {
	sort.SliceStable(nodes, func(i, j int) bool {
		pi := priorityOf(nodes[i], ruleByID)
		pj := priorityOf(nodes[j], ruleByID)
		if pi != pj {
			return pi < pj
		}
		return nodes[i].PathBefore < nodes[j].PathBefore
	})
}

func priorityOf(n *types.PlanNode, ruleByID map[uuid.UUID]types.Rule) uint32 {
	if n.RuleID == nil {
		return 0
	}
	return ruleByID[*n.RuleID].Priority
}

// markRenameCycles appends a CycleDetected conflict to every node
// whose chain of destinations (path_after -> next node's path_before)
// loops back on itself.
func markRenameCycles(nodes []*types.PlanNode) {
	bySource := make(map[string]*types.PlanNode, len(nodes))
	for _, n := range nodes {
		bySource[filepath.Clean(n.PathBefore)] = n
	}

	for _, n := range nodes {
		if !n.Kind.Executable() {
			continue
		}
		visited := map[string]bool{filepath.Clean(n.PathBefore): true}
		cur := n
		for {
			next, ok := bySource[filepath.Clean(cur.PathAfter)]
			if !ok || !next.Kind.Executable() {
				break
			}
			if next.ID == n.ID {
				n.Conflicts = append(n.Conflicts, types.CycleDetectedConflict())
				break
			}
			key := filepath.Clean(next.PathBefore)
			if visited[key] {
				break
			}
			visited[key] = true
			cur = next
		}
	}
}

// linkParentChild assigns each node to the deepest other node whose
// source path strictly contains it, returning the ids with no such
// parent.
func linkParentChild(nodes []*types.PlanNode) []uuid.UUID {
	var roots []uuid.UUID
	for _, n := range nodes {
		var parent *types.PlanNode
		for _, m := range nodes {
			if m.ID == n.ID {
				continue
			}
			if !isStrictAncestor(m.PathBefore, n.PathBefore) {
				continue
			}
			if parent == nil || len(m.PathBefore) > len(parent.PathBefore) {
				parent = m
			}
		}
		if parent != nil {
			parent.Children = append(parent.Children, n.ID)
		} else {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

func isStrictAncestor(ancestor, path string) bool {
	a := filepath.Clean(ancestor)
	p := filepath.Clean(path)
	if a == p {
		return false
	}
	return strings.HasPrefix(p, a+string(filepath.Separator))
}

// SimulatePlan reports a dry-run estimate without mutating the plan or
// touching the filesystem. The duration estimate is monotonic in both
// directory count and cross-volume byte volume, as required, but is
// otherwise a coarse approximation.
func SimulatePlan(plan *types.MovePlan) types.SimulationReport {
	var report types.SimulationReport
	var crossVolumeBytes int64

	for _, n := range plan.Nodes {
		switch {
		case n.Kind == types.OpSkip || n.Kind == types.OpNone:
			report.SkippedCount++
		case len(n.Conflicts) > 0:
			report.ConflictsRemaining++
		default:
			report.SuccessEstimate++
		}
		if n.Kind == types.OpCopyDelete && n.SizeBytes != nil {
			crossVolumeBytes += *n.SizeBytes
		}
	}

	const perDirSecs = 2.0
	const bytesPerSec = 50 * 1024 * 1024 // 50MB/s, a conservative cross-volume copy estimate
	report.EstimatedDurationSecs = perDirSecs*float64(plan.Summary.CountDirs) + float64(crossVolumeBytes)/bytesPerSec
	return report
}

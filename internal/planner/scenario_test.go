package planner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuanyiying/filemover-cli/internal/matcher"
	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/internal/undo"
)

var fixedClock = FixedClock{At: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}

// Scenario A — single match. The source expresses cross-volume
// detection via filepath.VolumeName, which is always empty on POSIX
// (see DifferentVolumes), so on this platform the node resolves to a
// same-volume Move rather than CopyDelete; everything else about the
// routing — the expanded destination, the empty conflict set, and the
// summary — matches.
func TestScenarioASingleMatch(t *testing.T) {
	dir := t.TempDir()
	rule := types.NewRule()
	rule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: "report*"}
	rule.DestRoot = filepath.Join(dir, "Archive")
	rule.Template = "{yyyy}/{name}"

	hit := types.FolderHit{Path: filepath.Join(dir, "Work", "report_q1"), Name: "report_q1", MatchedRule: &rule.ID}
	sess, err := CreatePlan([]types.FolderHit{hit}, []types.Rule{rule}, fixedClock, nil)
	require.NoError(t, err)

	require.Len(t, sess.Plan.Roots, 1)
	node := sess.Plan.Nodes[sess.Plan.Roots[0]]
	assert.Equal(t, types.OpMove, node.Kind)
	assert.Equal(t, filepath.Join(dir, "Archive", "2024", "report_q1"), node.PathAfter)
	assert.Empty(t, node.Conflicts)
	assert.Equal(t, 1, sess.Plan.Summary.CountDirs)
	assert.Equal(t, 0, sess.Plan.Summary.CrossVolume)
	assert.Equal(t, 0, sess.Plan.Summary.Conflicts)
}

// Scenario B — name collision with AutoRename.
func TestScenarioBNameCollisionAutoRename(t *testing.T) {
	dir := t.TempDir()
	rule := types.NewRule()
	rule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: "photos"}
	rule.DestRoot = filepath.Join(dir, "Pics")
	rule.Template = "{name}"
	rule.Policy = types.PolicyAutoRename

	hits := []types.FolderHit{
		{Path: filepath.Join(dir, "A", "photos"), Name: "photos", MatchedRule: &rule.ID},
		{Path: filepath.Join(dir, "B", "photos"), Name: "photos", MatchedRule: &rule.ID},
	}
	sess, err := CreatePlan(hits, []types.Rule{rule}, fixedClock, nil)
	require.NoError(t, err)

	require.Len(t, sess.Plan.Roots, 2)
	var first, second *types.PlanNode
	for _, id := range sess.Plan.Roots {
		n := sess.Plan.Nodes[id]
		if n.PathBefore == hits[0].Path {
			first = n
		} else {
			second = n
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.Equal(t, filepath.Join(dir, "Pics", "photos"), first.PathAfter)
	assert.Equal(t, filepath.Join(dir, "Pics", "photos_1"), second.PathAfter)
	assert.Empty(t, first.Conflicts)
	assert.Empty(t, second.Conflicts)
}

// Scenario C — Skip policy preserves conflict.
func TestScenarioCSkipPolicyPreservesConflict(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "Pics", "photos")
	require.NoError(t, os.MkdirAll(existing, 0o755))

	rule := types.NewRule()
	rule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: "photos"}
	rule.DestRoot = filepath.Join(dir, "Pics")
	rule.Template = "{name}"
	rule.Policy = types.PolicySkip

	hit := types.FolderHit{Path: filepath.Join(dir, "Incoming", "photos"), Name: "photos", MatchedRule: &rule.ID}
	sess, err := CreatePlan([]types.FolderHit{hit}, []types.Rule{rule}, fixedClock, nil)
	require.NoError(t, err)

	require.Len(t, sess.Plan.Roots, 1)
	node := sess.Plan.Nodes[sess.Plan.Roots[0]]
	assert.Equal(t, existing, node.PathAfter)
	require.Len(t, node.Conflicts, 1)
	assert.Equal(t, types.ConflictNameExists, node.Conflicts[0].Kind)
	assert.Equal(t, existing, node.Conflicts[0].ExistingPath)
	assert.Equal(t, 1, sess.Plan.Summary.Conflicts)
}

// Scenario D — Exclude pattern.
func TestScenarioDExcludePattern(t *testing.T) {
	excludeRule := types.NewRule()
	excludeRule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: "temp*", IsExclude: true}

	routeRule := types.NewRule()
	routeRule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: "*"}
	routeRule.DestRoot = "/archive"
	routeRule.Template = "{name}"

	engine, err := matcher.NewEngine([]types.Rule{excludeRule, routeRule}, types.DefaultNormalizationOptions())
	require.NoError(t, err)

	names := []string{"temp_x", "projectY"}
	var hits []types.FolderHit
	for _, name := range names {
		rule, status := engine.FindMatchingRule(name, types.DefaultNormalizationOptions())
		if status != matcher.StatusMatched {
			continue
		}
		hits = append(hits, types.FolderHit{Path: "/src/" + name, Name: name, MatchedRule: &rule.ID})
	}

	require.Len(t, hits, 1)
	assert.Equal(t, "projectY", hits[0].Name)
}

// Scenario E — DestInsideSource.
func TestScenarioEDestInsideSource(t *testing.T) {
	dir := t.TempDir()
	work := filepath.Join(dir, "Work")

	rule := types.NewRule()
	rule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: "*"}
	rule.DestRoot = filepath.Join(work, "Archive")
	rule.Template = ""

	hit := types.FolderHit{Path: work, Name: "Work", MatchedRule: &rule.ID}
	sess, err := CreatePlan([]types.FolderHit{hit}, []types.Rule{rule}, fixedClock, nil)
	require.NoError(t, err)

	require.Len(t, sess.Plan.Roots, 1)
	node := sess.Plan.Nodes[sess.Plan.Roots[0]]
	assert.True(t, node.Kind.Executable())
	assert.GreaterOrEqual(t, sess.Plan.Summary.Conflicts, 1)

	hasDestInsideSource := false
	for _, c := range node.Conflicts {
		if c.Kind == types.ConflictDestInsideSource {
			hasDestInsideSource = true
		}
	}
	assert.True(t, hasDestInsideSource)
}

// Scenario F — Incremental SetSkip, continuing from Scenario B.
func TestScenarioFIncrementalSetSkip(t *testing.T) {
	dir := t.TempDir()
	rule := types.NewRule()
	rule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: "photos"}
	rule.DestRoot = filepath.Join(dir, "Pics")
	rule.Template = "{name}"
	rule.Policy = types.PolicyAutoRename

	hits := []types.FolderHit{
		{Path: filepath.Join(dir, "A", "photos"), Name: "photos", MatchedRule: &rule.ID},
		{Path: filepath.Join(dir, "B", "photos"), Name: "photos", MatchedRule: &rule.ID},
	}
	sess, err := CreatePlan(hits, []types.Rule{rule}, fixedClock, nil)
	require.NoError(t, err)

	var firstID uuid.UUID
	for _, id := range sess.Plan.Roots {
		if sess.Plan.Nodes[id].PathBefore == hits[0].Path {
			firstID = id
			break
		}
	}

	delta, err := ApplyChange(sess.Plan, sess.Resolver, types.SetSkip(firstID, true))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{firstID}, delta.AffectedNodes)
	assert.Empty(t, delta.ResolvedConflicts)
	assert.Equal(t, -1, delta.SummaryDiff.CountDirsDelta)
	assert.False(t, sess.Resolver.existsOrReserved(filepath.Join(dir, "Pics", "photos")))
}

// Scenario G — Undo classification.
func TestScenarioGUndoClassification(t *testing.T) {
	dir := t.TempDir()
	destStillThere := filepath.Join(dir, "kept")
	require.NoError(t, os.MkdirAll(destStillThere, 0o755))

	entries := []types.JournalEntry{
		{WhenUTC: fixedClock.At, Source: filepath.Join(dir, "src1"), Dest: destStillThere, Op: types.OpMove, Result: types.ResultOk},
		{WhenUTC: fixedClock.At.Add(time.Second), Source: filepath.Join(dir, "src2"), Dest: filepath.Join(dir, "gone"), Op: types.OpMove, Result: types.ResultOk},
	}

	actions, blocked := undo.Analyze(entries)
	require.Len(t, actions, 1)
	assert.Equal(t, entries[0].Dest, actions[0].Source)
	assert.Equal(t, entries[0].Source, actions[0].Dest)

	require.Len(t, blocked, 1)
	assert.Equal(t, entries[1], blocked[0].Entry)
	assert.Equal(t, "destination no longer exists", blocked[0].Issue)
}

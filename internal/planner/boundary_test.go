package planner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuanyiying/filemover-cli/internal/scanner"
	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/pkg/ferrors"
)

// TestAutoRenameExhaustsAtCapWithoutProducingSuffix10000 covers
// boundary 9: AutoRename can reach "_9999" but never "_10000" — once
// every suffix up to the cap is taken, Resolve fails with
// KindPlanValidation instead of continuing the sequence.
func TestAutoRenameExhaustsAtCapWithoutProducingSuffix10000(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dest")
	desired := filepath.Join(dir, "photo")

	resolver := NewResolver(func(string) (int64, bool) { return 0, false })

	final, conflicts, err := resolver.Resolve(desired, "/src/photo", types.PolicyAutoRename, nil)
	require.NoError(t, err)
	assert.Equal(t, desired, final)
	assert.Empty(t, conflicts)

	var last string
	for i := 1; i <= autoRenameCap; i++ {
		final, _, err := resolver.Resolve(desired, "/src/photo", types.PolicyAutoRename, nil)
		require.NoError(t, err)
		last = final
	}
	assert.Equal(t, "photo_9999", strings.TrimSuffix(filepath.Base(last), filepath.Ext(last)))

	_, _, err = resolver.Resolve(desired, "/src/photo", types.PolicyAutoRename, nil)
	require.Error(t, err)
	assert.True(t, ferrors.Is(err, ferrors.KindPlanValidation))
	assert.NotContains(t, err.Error(), "_10000")
}

// TestSelfRouteProducesOpNoneAndZeroContribution covers boundary 10: a
// source whose destination normalizes to itself yields OpKind::None
// and contributes nothing to the summary.
func TestSelfRouteProducesOpNoneAndZeroContribution(t *testing.T) {
	dir := t.TempDir()
	stay := filepath.Join(dir, "stay")

	rule := types.NewRule()
	rule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: "*"}
	rule.DestRoot = dir
	rule.Template = "{name}"

	hit := types.FolderHit{Path: stay, Name: "stay", MatchedRule: &rule.ID}
	sess, err := CreatePlan([]types.FolderHit{hit}, []types.Rule{rule},
		FixedClock{At: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)}, nil)
	require.NoError(t, err)

	require.Len(t, sess.Plan.Roots, 1)
	node := sess.Plan.Nodes[sess.Plan.Roots[0]]
	assert.Equal(t, types.OpNone, node.Kind)
	assert.Equal(t, 0, sess.Plan.Summary.CountDirs)
	assert.Equal(t, 0, sess.Plan.Summary.Conflicts)
}

// TestLongPathWarningThresholdIsExclusive covers boundary 11: a path
// exactly 260 characters yields no LongPath warning; 261 does.
func TestLongPathWarningThresholdIsExclusive(t *testing.T) {
	base := t.TempDir()
	const stem = "target"

	name260 := stem + strings.Repeat("a", 260-len(base)-1-len(stem))
	name261 := name260 + "a"

	path260 := filepath.Join(base, name260)
	path261 := filepath.Join(base, name261)
	require.Len(t, path260, 260)
	require.Len(t, path261, 261)

	require.NoError(t, os.MkdirAll(path260, 0o755))
	require.NoError(t, os.MkdirAll(path261, 0o755))

	rule := types.NewRule()
	rule.Pattern = types.PatternSpec{Kind: types.PatternGlob, Value: stem + "*"}
	rule.DestRoot = filepath.Join(base, "archive")
	rule.Template = "{name}"

	hits, err := scanner.ScanRoots(context.Background(), []string{base}, []types.Rule{rule},
		types.ScanOptions{Normalization: types.DefaultNormalizationOptions()}, time.Now().UTC(), nil)
	require.NoError(t, err)

	var hit260, hit261 *types.FolderHit
	for i := range hits {
		switch hits[i].Path {
		case path260:
			hit260 = &hits[i]
		case path261:
			hit261 = &hits[i]
		}
	}
	require.NotNil(t, hit260, "260-char path must be scanned")
	require.NotNil(t, hit261, "261-char path must be scanned")

	assert.False(t, hasWarning(hit260.Warnings, types.WarningLongPath))
	assert.True(t, hasWarning(hit261.Warnings, types.WarningLongPath))
}

func hasWarning(warnings []types.Warning, kind types.WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xuanyiying/filemover-cli/internal/planner"
	"github.com/xuanyiying/filemover-cli/internal/types"
)

func newTestSession(t *testing.T) *planner.Session {
	t.Helper()
	dir := t.TempDir()
	rule := types.NewRule()
	rule.DestRoot = filepath.Join(dir, "archive")
	rule.Template = "{name}"

	hit := types.FolderHit{Path: filepath.Join(dir, "Downloads"), Name: "Downloads", MatchedRule: &rule.ID}
	sess, err := planner.CreatePlan([]types.FolderHit{hit}, []types.Rule{rule},
		planner.FixedClock{At: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, nil)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	return sess
}

func sendKey(m *Model, key tea.KeyMsg) *Model {
	next, _ := m.Update(key)
	return next.(*Model)
}

func TestTogglingSkipFlipsNodeKind(t *testing.T) {
	sess := newTestSession(t)
	m := New(sess)

	rootID := sess.Plan.Roots[0]
	before := sess.Plan.Nodes[rootID].Kind

	m = sendKey(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	after := sess.Plan.Nodes[rootID].Kind
	if after != types.OpSkip {
		t.Fatalf("expected OpSkip after toggling, got %q", after)
	}

	m = sendKey(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	restored := sess.Plan.Nodes[rootID].Kind
	if restored != before {
		t.Fatalf("expected restore to %q, got %q", before, restored)
	}
}

func TestEnterSetsAcceptedAndQuits(t *testing.T) {
	sess := newTestSession(t)
	m := New(sess)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	fm := next.(*Model)
	if !fm.result.Accepted {
		t.Fatal("expected result.Accepted to be true after enter")
	}
	if cmd == nil {
		t.Fatal("expected a quit command after enter")
	}
}

func TestQuitDoesNotAccept(t *testing.T) {
	sess := newTestSession(t)
	m := New(sess)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	fm := next.(*Model)
	if fm.result.Accepted {
		t.Fatal("expected result.Accepted to be false after q")
	}
	if cmd == nil {
		t.Fatal("expected a quit command after q")
	}
}

func TestRenameModeAppliesOnEnter(t *testing.T) {
	sess := newTestSession(t)
	m := New(sess)
	rootID := sess.Plan.Roots[0]

	m = sendKey(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.mode != modeRename {
		t.Fatal("expected rename mode after 'r'")
	}
	for _, r := range "Archived" {
		m = sendKey(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m = sendKey(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeBrowse {
		t.Fatal("expected to return to browse mode after confirming rename")
	}
	if sess.Plan.Nodes[rootID].NameAfter != "Archived" {
		t.Fatalf("expected renamed NameAfter, got %q", sess.Plan.Nodes[rootID].NameAfter)
	}
}

func TestRenameModeRejectsIllegalFilename(t *testing.T) {
	sess := newTestSession(t)
	m := New(sess)
	rootID := sess.Plan.Roots[0]
	before := sess.Plan.Nodes[rootID].NameAfter

	m = sendKey(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	for _, r := range "bad/name" {
		m = sendKey(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m = sendKey(m, tea.KeyMsg{Type: tea.KeyEnter})

	if sess.Plan.Nodes[rootID].NameAfter != before {
		t.Fatalf("expected NameAfter to stay %q, got %q", before, sess.Plan.Nodes[rootID].NameAfter)
	}
	if m.status == "" {
		t.Fatal("expected a status message after rejecting an illegal filename")
	}
}

func TestExcludeRequiresConfirmation(t *testing.T) {
	sess := newTestSession(t)
	m := New(sess)
	rootID := sess.Plan.Roots[0]

	m = sendKey(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.mode != modeConfirmExclude {
		t.Fatal("expected confirm-exclude mode after 'x'")
	}

	m = sendKey(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.mode != modeBrowse {
		t.Fatal("expected to return to browse mode after declining")
	}
	if _, ok := sess.Plan.Nodes[rootID]; !ok {
		t.Fatal("node should still exist after declining exclude")
	}
}

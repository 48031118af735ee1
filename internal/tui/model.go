// Package tui implements the interactive plan reviewer: a bubbletea
// program that walks a MovePlan's forest and routes keypresses to
// NodeChange edits applied through the Validator, so a user can
// accept, skip, rename, or re-policy individual nodes before apply.
package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/xuanyiying/filemover-cli/internal/output"
	"github.com/xuanyiying/filemover-cli/internal/planner"
	"github.com/xuanyiying/filemover-cli/internal/types"
	"github.com/xuanyiying/filemover-cli/pkg/validator"
)

// mode discriminates the model's input handling.
type mode int

const (
	modeBrowse mode = iota
	modeRename
	modeConfirmExclude
)

// Result is what Run returns once the program quits.
type Result struct {
	Accepted bool // true if the user pressed enter to proceed to apply
}

// Model is the bubbletea model for plan review.
type Model struct {
	session *planner.Session
	styler  *output.Styler

	rows   []uuid.UUID // flattened pre-order node ids, recomputed after each edit
	depths map[uuid.UUID]int
	cursor int

	mode       mode
	renameText string
	status     string

	result Result
	done   bool
}

// New builds a plan-review model over sess.
func New(sess *planner.Session) *Model {
	m := &Model{
		session: sess,
		styler:  output.NewStyler(true),
	}
	m.refreshRows()
	return m
}

// Run starts the bubbletea program and blocks until the user quits.
func Run(sess *planner.Session) (Result, error) {
	m := New(sess)
	program := tea.NewProgram(m)
	final, err := program.Run()
	if err != nil {
		return Result{}, fmt.Errorf("tui: run: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return Result{}, fmt.Errorf("tui: unexpected final model type %T", final)
	}
	return fm.result, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.mode {
	case modeRename:
		return m.updateRename(keyMsg)
	case modeConfirmExclude:
		return m.updateConfirmExclude(keyMsg)
	default:
		return m.updateBrowse(keyMsg)
	}
}

func (m *Model) updateBrowse(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "q":
		m.result = Result{Accepted: false}
		m.done = true
		return m, tea.Quit
	case "enter", "a":
		m.result = Result{Accepted: true}
		m.done = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "s":
		m.toggleSkip()
	case "p":
		m.cyclePolicy()
	case "r":
		m.mode = modeRename
		m.renameText = ""
	case "x":
		m.mode = modeConfirmExclude
	}
	return m, nil
}

func (m *Model) updateRename(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		m.applyRename()
		m.mode = modeBrowse
	case tea.KeyEsc:
		m.mode = modeBrowse
	case tea.KeyBackspace:
		if len(m.renameText) > 0 {
			m.renameText = m.renameText[:len(m.renameText)-1]
		}
	case tea.KeyRunes:
		m.renameText += string(key.Runes)
	}
	return m, nil
}

func (m *Model) updateConfirmExclude(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "y":
		m.applyExclude()
		m.mode = modeBrowse
	default:
		m.mode = modeBrowse
	}
	return m, nil
}

func (m *Model) currentID() (uuid.UUID, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return uuid.UUID{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) toggleSkip() {
	id, ok := m.currentID()
	if !ok {
		return
	}
	m.session.Mu.Lock()
	defer m.session.Mu.Unlock()

	node := m.session.Plan.Nodes[id]
	if node == nil {
		return
	}
	next := node.Kind != types.OpSkip
	if _, err := planner.ApplyChange(m.session.Plan, m.session.Resolver, types.SetSkip(id, next)); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *Model) cyclePolicy() {
	id, ok := m.currentID()
	if !ok {
		return
	}
	m.session.Mu.Lock()
	defer m.session.Mu.Unlock()

	node := m.session.Plan.Nodes[id]
	if node == nil {
		return
	}
	next := nextPolicy(node.Policy)
	if _, err := planner.ApplyChange(m.session.Plan, m.session.Resolver, types.SetConflictPolicy(id, next)); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func nextPolicy(p types.ConflictPolicy) types.ConflictPolicy {
	switch p {
	case types.PolicyAutoRename:
		return types.PolicySkip
	case types.PolicySkip:
		return types.PolicyOverwrite
	default:
		return types.PolicyAutoRename
	}
}

func (m *Model) applyRename() {
	id, ok := m.currentID()
	if !ok || strings.TrimSpace(m.renameText) == "" {
		return
	}
	if err := validator.ValidateFilename(m.renameText); err != nil {
		m.status = err.Error()
		return
	}

	m.session.Mu.Lock()
	defer m.session.Mu.Unlock()

	if _, err := planner.ApplyChange(m.session.Plan, m.session.Resolver, types.RenameNode(id, m.renameText)); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *Model) applyExclude() {
	id, ok := m.currentID()
	if !ok {
		return
	}
	m.session.Mu.Lock()
	defer m.session.Mu.Unlock()

	if _, err := planner.ApplyChange(m.session.Plan, m.session.Resolver, types.ExcludeNode(id)); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
	m.refreshRows()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// refreshRows recomputes the flattened pre-order node list. Edits like
// ExcludeNode can remove nodes from a subtree's reachable set, so this
// runs after every mutating edit rather than once at construction.
func (m *Model) refreshRows() {
	m.session.Mu.Lock()
	defer m.session.Mu.Unlock()

	plan := m.session.Plan
	m.rows = nil
	m.depths = make(map[uuid.UUID]int)

	roots := append([]uuid.UUID(nil), plan.Roots...)
	sort.Slice(roots, func(i, j int) bool {
		return plan.Nodes[roots[i]].PathBefore < plan.Nodes[roots[j]].PathBefore
	})

	var visit func(id uuid.UUID, depth int)
	visit = func(id uuid.UUID, depth int) {
		node, ok := plan.Nodes[id]
		if !ok {
			return
		}
		m.rows = append(m.rows, id)
		m.depths[id] = depth

		children := append([]uuid.UUID(nil), node.Children...)
		sort.Slice(children, func(i, j int) bool {
			ni, nj := plan.Nodes[children[i]], plan.Nodes[children[j]]
			if ni == nil || nj == nil {
				return false
			}
			return ni.PathBefore < nj.PathBefore
		})
		for _, c := range children {
			visit(c, depth+1)
		}
	}
	for _, r := range roots {
		visit(r, 0)
	}
}

func (m *Model) View() string {
	if m.done {
		return ""
	}

	m.session.Mu.Lock()
	plan := m.session.Plan
	summary := plan.Summary
	m.session.Mu.Unlock()

	var b strings.Builder
	b.WriteString(m.styler.Bold(fmt.Sprintf("Plan review — %d dirs, %d files, %d conflicts, %d warnings\n",
		summary.CountDirs, summary.CountFiles, summary.Conflicts, summary.Warnings)))
	b.WriteString("\n")

	m.session.Mu.Lock()
	for i, id := range m.rows {
		node := plan.Nodes[id]
		if node == nil {
			continue
		}
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		indent := strings.Repeat("  ", m.depths[id])
		line := fmt.Sprintf("%s%s%s %s", prefix, indent, opLabel(node.Kind), node.NameBefore)
		if node.Kind == types.OpMove || node.Kind == types.OpRename || node.Kind == types.OpCopyDelete {
			line += " -> " + node.NameAfter
		}
		if n := len(node.Conflicts); n > 0 {
			line += m.styler.Red(fmt.Sprintf(" [%d conflict(s): %s]", n, node.Policy))
		}
		if i == m.cursor {
			line = m.styler.Bold(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	m.session.Mu.Unlock()

	b.WriteString("\n")
	switch m.mode {
	case modeRename:
		b.WriteString(fmt.Sprintf("Rename to: %s_\n", m.renameText))
		b.WriteString("(enter to confirm, esc to cancel)\n")
	case modeConfirmExclude:
		b.WriteString(m.styler.Yellow("Exclude this node and its subtree? (y/n)\n"))
	default:
		b.WriteString("j/k move  s skip  p policy  r rename  x exclude  enter apply  q quit\n")
	}
	if m.status != "" {
		b.WriteString(m.styler.Red(m.status) + "\n")
	}
	return b.String()
}

func opLabel(kind types.OpKind) string {
	switch kind {
	case types.OpMove:
		return "[MOVE]"
	case types.OpRename:
		return "[RENAME]"
	case types.OpCopyDelete:
		return "[COPY]"
	case types.OpSkip:
		return "[SKIP]"
	default:
		return "[NONE]"
	}
}

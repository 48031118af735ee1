package visualizer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/xuanyiying/filemover-cli/internal/output"
	"github.com/xuanyiying/filemover-cli/internal/types"
)

// PlanRenderer renders a MovePlan's forest using the same branch-drawing
// character set a filesystem tree view would, annotated with each
// node's operation kind, conflicts, and warnings.
type PlanRenderer struct {
	console *output.Console
	styler  *output.Styler
	options *TreeOptions
}

// NewPlanRenderer creates a plan renderer. A nil options falls back to
// unicode branches, color, and a three-space indent.
func NewPlanRenderer(console *output.Console, options *TreeOptions) *PlanRenderer {
	if options == nil {
		options = &TreeOptions{UseColor: true, UseUnicode: true, IndentSize: 3}
	}
	return &PlanRenderer{
		console: console,
		styler:  output.NewStyler(options.UseColor),
		options: options,
	}
}

// RenderPlanTree writes every root's subtree to w, one line per node,
// coloring the operation symbol by OpKind and appending a conflict or
// warning count when the node carries any.
func (r *PlanRenderer) RenderPlanTree(plan *types.MovePlan, w io.Writer) error {
	var b strings.Builder
	roots := append([]uuid.UUID(nil), plan.Roots...)
	sort.Slice(roots, func(i, j int) bool {
		return plan.Nodes[roots[i]].PathBefore < plan.Nodes[roots[j]].PathBefore
	})
	for i, id := range roots {
		r.renderNode(plan, id, "", i == len(roots)-1, &b)
	}
	_, err := w.Write([]byte(b.String()))
	return err
}

func (r *PlanRenderer) renderNode(plan *types.MovePlan, id uuid.UUID, prefix string, isLast bool, b *strings.Builder) {
	node, ok := plan.Nodes[id]
	if !ok {
		return
	}

	vertical, horizontal, corner, tee := BranchVertical, BranchHorizontal, BranchCorner, BranchTee
	if !r.options.UseUnicode {
		vertical, horizontal, corner, tee = BranchVerticalASCII, BranchHorizontalASCII, BranchCornerASCII, BranchTeeASCII
	}

	b.WriteString(prefix)
	if prefix != "" {
		if isLast {
			b.WriteString(corner + horizontal + " ")
		} else {
			b.WriteString(tee + horizontal + " ")
		}
	}

	b.WriteString(r.opSymbol(node.Kind))
	b.WriteString(" ")
	b.WriteString(node.NameBefore)
	if node.Kind == types.OpMove || node.Kind == types.OpRename || node.Kind == types.OpCopyDelete {
		b.WriteString(" " + SymbolMoved + " ")
		b.WriteString(node.NameAfter)
	}

	if n := len(node.Conflicts); n > 0 {
		b.WriteString(" " + r.styler.Red(fmt.Sprintf("[%d conflict%s]", n, plural(n))))
	}
	if n := len(node.Warnings); n > 0 {
		b.WriteString(" " + r.styler.Yellow(fmt.Sprintf("[%d warning%s]", n, plural(n))))
	}
	b.WriteString("\n")

	children := append([]uuid.UUID(nil), node.Children...)
	sort.Slice(children, func(i, j int) bool {
		ni, nj := plan.Nodes[children[i]], plan.Nodes[children[j]]
		if ni == nil || nj == nil {
			return false
		}
		return ni.PathBefore < nj.PathBefore
	})

	var childPrefix string
	if isLast {
		childPrefix = prefix + strings.Repeat(" ", r.options.IndentSize)
	} else {
		childPrefix = prefix + vertical + strings.Repeat(" ", r.options.IndentSize-1)
	}
	for i, c := range children {
		r.renderNode(plan, c, childPrefix, i == len(children)-1, b)
	}
}

func (r *PlanRenderer) opSymbol(kind types.OpKind) string {
	switch kind {
	case types.OpMove:
		return r.color(r.styler.Blue, "MOVE")
	case types.OpRename:
		return r.color(r.styler.Yellow, "RENAME")
	case types.OpCopyDelete:
		return r.color(r.styler.Yellow, "COPY")
	case types.OpSkip:
		return r.styler.Dim("SKIP")
	default:
		return r.styler.Dim("NONE")
	}
}

func (r *PlanRenderer) color(f func(string) string, s string) string {
	if !r.options.UseColor {
		return s
	}
	return f(s)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

package visualizer

// TreeOptions configures tree rendering, shared by every renderer in
// this package.
type TreeOptions struct {
	MaxDepth   int  // Maximum depth to display (0 = unlimited)
	ShowSize   bool // Show file sizes
	ShowHidden bool // Show hidden files
	UseColor   bool // Use ANSI colors
	UseUnicode bool // Use Unicode box characters
	IndentSize int  // Spaces per indent level
}

// Branch characters for tree rendering
const (
	BranchVertical   = "│"
	BranchHorizontal = "──"
	BranchCorner     = "└"
	BranchTee        = "├"
	BranchEmpty      = "   "

	// ASCII fallback
	BranchVerticalASCII   = "|"
	BranchHorizontalASCII = "--"
	BranchCornerASCII     = "`"
	BranchTeeASCII        = "+"
)

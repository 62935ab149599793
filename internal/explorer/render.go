package explorer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"xsd-navigator/internal/tree"
)

// RenderOptions controls text rendering of a snapshot's tree.
type RenderOptions struct {
	// MaxDepth bounds expansion; 0 means roots only, negative means no bound.
	MaxDepth int
	// Decorations toggles occurrence badges and nillable hints.
	Decorations bool
	// Styled enables lipgloss styling. Keep false for snapshot files and
	// tests; styled output embeds terminal escapes.
	Styled bool
}

// hardDepthLimit caps unbounded expansion of recursive type references.
const hardDepthLimit = 32

var (
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	nillableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	typeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// glyphs maps icon categories to stable single-character markers used in the
// rendered text.
var glyphs = map[tree.Kind]string{
	tree.KindTypeDefinition:   "T",
	tree.KindEnumerationKind:  "E",
	tree.KindField:            "f",
	tree.KindElement:          "e",
	tree.KindChoiceGroup:      "?",
	tree.KindAttribute:        "a",
	tree.KindEnumerationValue: "v",
	tree.KindDefault:          "-",
}

// Render produces a deterministic indented text rendering of the tree,
// expanding nodes depth-first up to the configured depth.
func Render(s *Snapshot, opt RenderOptions) string {
	var b strings.Builder
	for _, n := range s.Roots() {
		renderNode(&b, s, n, 0, opt)
	}
	return b.String()
}

func renderNode(b *strings.Builder, s *Snapshot, n *tree.Node, depth int, opt RenderOptions) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("[")
	b.WriteString(glyphs[n.Kind])
	b.WriteString("] ")
	b.WriteString(n.Name)

	if td := n.TypeDescription(); td != "" {
		b.WriteString(" : ")
		b.WriteString(style(typeStyle, td, opt.Styled))
	}
	if opt.Decorations {
		if d, ok := s.dec.Get(n.ID); ok {
			if d.Badge != "" {
				b.WriteString(" ")
				b.WriteString(style(badgeStyle, "["+d.Badge+"]", opt.Styled))
			}
			if d.Nillable {
				b.WriteString(" ")
				b.WriteString(style(nillableStyle, "nillable", opt.Styled))
			}
		}
	}
	b.WriteString("\n")

	if !n.HasChildren {
		return
	}
	if opt.MaxDepth >= 0 && depth >= opt.MaxDepth {
		return
	}
	// Recursive type references would otherwise unwind forever.
	if depth >= hardDepthLimit {
		return
	}
	for _, child := range s.Children(n) {
		renderNode(b, s, child, depth+1, opt)
	}
}

func style(st lipgloss.Style, text string, styled bool) string {
	if !styled {
		return text
	}
	return st.Render(text)
}

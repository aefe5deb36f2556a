package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/muurk/fwscope/internal/dwarftree"
)

// TreeOptions controls DwarfTree output.
type TreeOptions struct {
	// MaxDepth limits the levels shown below each compilation unit.
	// Zero shows everything.
	MaxDepth int

	// Attributes lists every DWARF attribute under its symbol
	Attributes bool
}

// SymbolLabel is the one-line description of a tree node: name, kind and
// whatever of address, size and type is known.
func SymbolLabel(s *dwarftree.Symbol) string {
	parts := []string{TagStyle(s.Tag).Render(s.Name), StepPendingStyle.Render(s.Tag.String())}
	if s.Address != nil {
		parts = append(parts, FormatAddress(*s.Address))
	}
	if s.Size != nil {
		parts = append(parts, fmt.Sprintf("(%s)", FormatSize(*s.Size)))
	}
	if s.TypeName != nil {
		parts = append(parts, StepNoteStyle.Render(": "+*s.TypeName))
	}
	return strings.Join(parts, " ")
}

// DwarfTree renders the debug info tree, one block per compilation unit.
func DwarfTree(info *dwarftree.Info, opts TreeOptions) string {
	if info == nil || !info.Present {
		return StepPendingStyle.Render("No debug info")
	}

	blocks := make([]string, 0, len(info.CompileUnits))
	for _, cu := range info.CompileUnits {
		blocks = append(blocks, symbolTree(cu, 0, opts).String())
	}
	return strings.Join(blocks, "\n\n")
}

func symbolTree(s *dwarftree.Symbol, depth int, opts TreeOptions) *tree.Tree {
	t := tree.Root(SymbolLabel(s)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(TableBorderStyle)

	if opts.Attributes {
		for _, a := range s.Attributes {
			t.Child(AttributeKeyStyle.Render(a.Name+" = ") + a.Value)
		}
	}

	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		if n := len(s.Children); n > 0 {
			t.Child(StepNoteStyle.Render(fmt.Sprintf("… %d more", n)))
		}
		return t
	}
	for _, c := range s.Children {
		t.Child(symbolTree(c, depth+1, opts))
	}
	return t
}

// SymbolDetail renders everything known about one node. ancestors runs from
// the compilation unit down to the node's parent and may be empty.
func SymbolDetail(s *dwarftree.Symbol, ancestors []*dwarftree.Symbol) string {
	var b strings.Builder
	kv := func(key, value string) {
		b.WriteString(ResultKeyStyle.Render(key+":") + " " + ResultValueStyle.Render(value) + "\n")
	}

	b.WriteString(TagStyle(s.Tag).Bold(true).Render(s.Name))
	b.WriteString("\n\n")

	kv("Kind", s.Tag.String())
	kv("ID", fmt.Sprintf("%d", s.ID))
	if s.Address != nil {
		kv("Address", FormatAddress(*s.Address))
	}
	if s.Size != nil {
		kv("Size", fmt.Sprintf("%s (%s)", FormatHex(*s.Size), FormatSize(*s.Size)))
	}
	if loc := s.Location(); loc != "" {
		kv("Location", loc)
	}
	if s.TypeName != nil {
		kv("Type", *s.TypeName)
	}
	if len(ancestors) > 0 {
		names := make([]string, len(ancestors))
		for i, a := range ancestors {
			names[i] = a.Name
		}
		kv("Parent", strings.Join(names, " › "))
	}
	kv("Children", fmt.Sprintf("%d", len(s.Children)))

	if len(s.Attributes) > 0 {
		b.WriteString("\n")
		b.WriteString(SectionTitleStyle.Render("Attributes"))
		b.WriteString("\n")
		width := 0
		for _, a := range s.Attributes {
			if len(a.Name) > width {
				width = len(a.Name)
			}
		}
		for _, a := range s.Attributes {
			b.WriteString("  " + AttributeKeyStyle.Render(a.Name+strings.Repeat(" ", width-len(a.Name))) + "  " + a.Value + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

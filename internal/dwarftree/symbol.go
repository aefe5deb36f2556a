package dwarftree

import (
	"debug/dwarf"
	"fmt"
	"strings"
)

// Tag is the category of a tree node.
type Tag int

const (
	TagCompileUnit Tag = iota
	TagSubprogram
	TagVariable
	TagFormalParameter
	TagLexicalBlock
	TagInlinedSubroutine
	TagStructureType
	TagUnionType
	TagEnumerationType
	TagMember
	TagTypedef
	TagNamespace
	// TagOther covers every DIE tag outside the categories above.
	TagOther
)

var tagNames = [...]string{
	TagCompileUnit:       "CompileUnit",
	TagSubprogram:        "Subprogram",
	TagVariable:          "Variable",
	TagFormalParameter:   "FormalParameter",
	TagLexicalBlock:      "LexicalBlock",
	TagInlinedSubroutine: "InlinedSubroutine",
	TagStructureType:     "StructureType",
	TagUnionType:         "UnionType",
	TagEnumerationType:   "EnumerationType",
	TagMember:            "Member",
	TagTypedef:           "Typedef",
	TagNamespace:         "Namespace",
	TagOther:             "Other",
}

func (t Tag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// MarshalText renders the tag by name in JSON output.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names MarshalText produces.
func (t *Tag) UnmarshalText(text []byte) error {
	for i, name := range tagNames {
		if strings.EqualFold(name, string(text)) {
			*t = Tag(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tag %q", text)
}

// classify maps a DIE tag onto a node category. Tags that do not produce a
// node report false.
func classify(tag dwarf.Tag) (Tag, bool) {
	switch tag {
	case dwarf.TagSubprogram:
		return TagSubprogram, true
	case dwarf.TagVariable:
		return TagVariable, true
	case dwarf.TagFormalParameter:
		return TagFormalParameter, true
	case dwarf.TagLexDwarfBlock:
		return TagLexicalBlock, true
	case dwarf.TagInlinedSubroutine:
		return TagInlinedSubroutine, true
	case dwarf.TagStructType:
		return TagStructureType, true
	case dwarf.TagUnionType:
		return TagUnionType, true
	case dwarf.TagEnumerationType:
		return TagEnumerationType, true
	case dwarf.TagMember, dwarf.TagEnumerator:
		return TagMember, true
	case dwarf.TagTypedef:
		return TagTypedef, true
	case dwarf.TagNamespace:
		return TagNamespace, true
	default:
		return TagOther, false
	}
}

// Attribute is one DIE attribute with its value rendered as text.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Symbol is a node of the debug info tree. A node owns its children; there
// are no parent links. Use an Index to find a node and its ancestry by ID.
type Symbol struct {
	// ID is unique across one build, assigned in pre-order
	ID int `json:"id"`

	Name string `json:"name"`
	Tag  Tag    `json:"tag"`

	Address *uint64 `json:"address,omitempty"`
	Size    *uint64 `json:"size,omitempty"`

	File   *string `json:"file,omitempty"`
	Line   *uint32 `json:"line,omitempty"`
	Column *uint32 `json:"column,omitempty"`

	// TypeName is the name of the DIE referenced by DW_AT_type
	TypeName *string `json:"type_name,omitempty"`

	Children []*Symbol `json:"children"`

	// Attributes lists every attribute of the DIE in entry order
	Attributes []Attribute `json:"attributes"`
}

// Location returns "file:line:column" with whatever parts are known.
func (s *Symbol) Location() string {
	if s.File == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(*s.File)
	if s.Line != nil {
		fmt.Fprintf(&b, ":%d", *s.Line)
		if s.Column != nil {
			fmt.Fprintf(&b, ":%d", *s.Column)
		}
	}
	return b.String()
}

// Info is the debug info tree of one image.
type Info struct {
	// Present is true when at least one compilation unit was found
	Present bool `json:"present"`

	CompileUnits []*Symbol `json:"compile_units"`

	// TotalSymbols counts every node, unit roots included
	TotalSymbols int `json:"total_symbols"`
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's children.
func (info *Info) Walk(fn func(s *Symbol, depth int) bool) {
	for _, cu := range info.CompileUnits {
		walk(cu, 0, fn)
	}
}

func walk(s *Symbol, depth int, fn func(*Symbol, int) bool) {
	if !fn(s, depth) {
		return
	}
	for _, child := range s.Children {
		walk(child, depth+1, fn)
	}
}

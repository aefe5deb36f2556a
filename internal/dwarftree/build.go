package dwarftree

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/fwscope/internal/elfimage"
	"github.com/muurk/fwscope/internal/logging"
)

// SkippedPolicy decides what happens to the descendants of a DIE whose tag
// does not produce a node.
type SkippedPolicy int

const (
	// DiscardSkipped drops the whole subtree of a skipped DIE.
	DiscardSkipped SkippedPolicy = iota
	// HoistSkipped attaches kept descendants of a skipped DIE to the nearest
	// kept ancestor.
	HoistSkipped
)

func (p SkippedPolicy) String() string {
	if p == HoistSkipped {
		return "hoist"
	}
	return "discard"
}

// ParseSkippedPolicy parses "discard" or "hoist". Empty means discard.
func ParseSkippedPolicy(s string) (SkippedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard":
		return DiscardSkipped, nil
	case "hoist":
		return HoistSkipped, nil
	default:
		return DiscardSkipped, fmt.Errorf("unknown skipped DIE policy %q (valid: discard, hoist)", s)
	}
}

type options struct {
	skipped SkippedPolicy
}

// Option configures a build.
type Option func(*options)

// WithSkippedPolicy sets the policy for descendants of skipped DIEs.
func WithSkippedPolicy(p SkippedPolicy) Option {
	return func(o *options) {
		o.skipped = p
	}
}

// Build parses the debug info of an ELF image. An image without .debug_info
// yields Present=false.
func Build(data []byte, opts ...Option) (*Info, error) {
	f, err := elfimage.Open(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !hasDebugInfo(f) {
		logging.Debug("No debug info sections")
		return &Info{CompileUnits: []*Symbol{}}, nil
	}

	d, err := f.DWARF()
	if err != nil {
		return nil, &DwarfError{Op: "load debug sections", Err: err}
	}

	return BuildFromDWARF(d, opts...)
}

func hasDebugInfo(f *elf.File) bool {
	for _, s := range f.Sections {
		if s.Name == ".debug_info" || s.Name == ".zdebug_info" {
			return s.Size > 0
		}
	}
	return false
}

// BuildFromDWARF builds the tree from already loaded debug data.
func BuildFromDWARF(d *dwarf.Data, opts ...Option) (*Info, error) {
	o := options{skipped: DiscardSkipped}
	for _, opt := range opts {
		opt(&o)
	}

	units, err := readUnits(d)
	if err != nil {
		return nil, err
	}

	b := &builder{opts: o}
	info := &Info{CompileUnits: make([]*Symbol, 0, len(units))}
	for _, u := range units {
		before := len(b.store)
		cu := b.buildUnit(u)
		info.CompileUnits = append(info.CompileUnits, cu)
		info.TotalSymbols += len(b.store) - before
	}
	info.Present = len(info.CompileUnits) > 0

	logging.Debug("Built debug info tree",
		zap.Int("units", len(info.CompileUnits)),
		zap.Int("symbols", info.TotalSymbols),
		zap.Stringer("skipped_policy", o.skipped),
	)

	return info, nil
}

// builder turns raw entries into Symbols. Every node is appended to store
// and its ID is the store length at that moment, so IDs follow pre-order
// across all units.
type builder struct {
	opts  options
	store []*Symbol
}

func (b *builder) alloc(s *Symbol) *Symbol {
	s.ID = len(b.store)
	b.store = append(b.store, s)
	return s
}

func (b *builder) buildUnit(u *unit) *Symbol {
	name := stringAttr(u.entry, dwarf.AttrName)
	if name == "" {
		name = "<unknown>"
	}
	file := name
	if dir := stringAttr(u.entry, dwarf.AttrCompDir); dir != "" {
		file = dir + "/" + name
	}

	root := b.alloc(&Symbol{
		Name:       name,
		Tag:        TagCompileUnit,
		File:       &file,
		Attributes: []Attribute{},
	})
	root.Children = b.buildChildren(u, u.children)
	return root
}

func (b *builder) buildChildren(u *unit, dies []*die) []*Symbol {
	children := []*Symbol{}
	b.collect(u, dies, &children)
	sortSymbols(children)
	return children
}

// collect appends a node for every kept DIE in dies. What happens below a
// skipped DIE is decided here and nowhere else.
func (b *builder) collect(u *unit, dies []*die, out *[]*Symbol) {
	for _, d := range dies {
		tag, ok := classify(d.entry.Tag)
		if ok {
			*out = append(*out, b.buildSymbol(u, d, tag))
			continue
		}

		switch b.opts.skipped {
		case HoistSkipped:
			b.collect(u, d.children, out)
		case DiscardSkipped:
		}
	}
}

func (b *builder) buildSymbol(u *unit, d *die, tag Tag) *Symbol {
	e := d.entry
	s := b.alloc(&Symbol{
		Name: symbolName(e, tag),
		Tag:  tag,
	})

	if addr, ok := uintAttr(e, dwarf.AttrLowpc); ok {
		s.Address = &addr
	}
	if size, ok := symbolSize(e); ok {
		s.Size = &size
	}
	if idx, ok := e.Val(dwarf.AttrDeclFile).(int64); ok {
		if name, ok := u.fileName(idx); ok {
			s.File = &name
		}
	}
	if line, ok := uint32Attr(e, dwarf.AttrDeclLine); ok {
		s.Line = &line
	}
	if col, ok := uint32Attr(e, dwarf.AttrDeclColumn); ok {
		s.Column = &col
	}
	if name, ok := u.typeName(e); ok {
		s.TypeName = &name
	}
	s.Attributes = u.attributes(e)

	s.Children = b.buildChildren(u, d.children)
	return s
}

// symbolName prefers the linkage name, demangled, over the plain name.
func symbolName(e *dwarf.Entry, tag Tag) string {
	for _, attr := range []dwarf.Attr{dwarf.AttrLinkageName, attrMIPSLinkageName, dwarf.AttrName} {
		if name := stringAttr(e, attr); name != "" {
			return Demangle(name)
		}
	}

	switch tag {
	case TagLexicalBlock:
		return "<block>"
	case TagInlinedSubroutine:
		return "<inlined>"
	default:
		return "<anonymous>"
	}
}

// symbolSize reads DW_AT_byte_size, falling back to the extent of
// low_pc/high_pc. high_pc is an address or, as a constant, an offset from
// low_pc.
func symbolSize(e *dwarf.Entry) (uint64, bool) {
	// debug/dwarf returns data8 constants as int64; the bits are unsigned.
	if size, ok := e.Val(dwarf.AttrByteSize).(int64); ok {
		return uint64(size), true
	}

	low, ok := uintAttr(e, dwarf.AttrLowpc)
	if !ok {
		return 0, false
	}
	high := e.AttrField(dwarf.AttrHighpc)
	if high == nil {
		return 0, false
	}

	switch high.Class {
	case dwarf.ClassAddress:
		if v, ok := high.Val.(uint64); ok && v >= low {
			return v - low, true
		}
	case dwarf.ClassConstant:
		if v, ok := high.Val.(int64); ok && v >= 0 {
			return uint64(v), true
		}
	}
	return 0, false
}

// typeName follows DW_AT_type within the unit and returns the target's plain
// name.
func (u *unit) typeName(e *dwarf.Entry) (string, bool) {
	off, ok := e.Val(dwarf.AttrType).(dwarf.Offset)
	if !ok {
		return "", false
	}
	target, ok := u.index[off]
	if !ok {
		return "", false
	}
	name := stringAttr(target, dwarf.AttrName)
	return name, name != ""
}

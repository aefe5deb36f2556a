package dwarftree

import (
	"bytes"
	"debug/dwarf"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muurk/fwscope/internal/elfimage/elftest"
)

// Attribute forms used by the fixtures.
const (
	formAddr        = 0x01
	formData2       = 0x05
	formData4       = 0x06
	formData8       = 0x07
	formString      = 0x08
	formBlock1      = 0x0a
	formData1       = 0x0b
	formFlag        = 0x0c
	formSdata       = 0x0d
	formStrp        = 0x0e
	formUdata       = 0x0f
	formRef4        = 0x13
	formSecOffset   = 0x17
	formExprloc     = 0x18
	formFlagPresent = 0x19
)

// attr is one attribute of a fixture DIE. val is uint64 for numeric forms,
// string for strings, []byte for blocks, bool for flags and *node for
// references.
type attr struct {
	at   dwarf.Attr
	form uint8
	val  interface{}
}

// node is one DIE of a fixture unit.
type node struct {
	tag      dwarf.Tag
	attrs    []attr
	children []*node
}

func n(tag dwarf.Tag, attrs []attr, children ...*node) *node {
	return &node{tag: tag, attrs: attrs, children: children}
}

func name(s string) attr       { return attr{dwarf.AttrName, formString, s} }
func lowPC(v uint64) attr      { return attr{dwarf.AttrLowpc, formAddr, v} }
func highOffset(v uint64) attr { return attr{dwarf.AttrHighpc, formData4, v} }
func byteSize(v uint64) attr   { return attr{dwarf.AttrByteSize, formData1, v} }
func typeRef(to *node) attr    { return attr{dwarf.AttrType, formRef4, to} }

// cu describes one compilation unit and its line table file list.
type cu struct {
	root *node

	// files are added to the line table in order, numbered from 1, all in
	// the compilation directory
	files []string

	// noTerminators leaves out the null entries closing the unit's child
	// lists
	noTerminators bool
}

// sections holds hand-assembled DWARF v4 sections for a 32-bit
// little-endian target.
type sections struct {
	abbrev, info, line, str []byte
}

type asm struct {
	order  binary.ByteOrder
	abbrev bytes.Buffer
	info   bytes.Buffer
	line   bytes.Buffer
	str    bytes.Buffer
	code   uint64
	refs   []fixup
	offs   map[*node]uint32
	strs   map[string]uint32
}

type fixup struct {
	pos      int
	unitBase int
	target   *node
}

func assemble(t *testing.T, units ...cu) sections {
	t.Helper()
	a := &asm{
		order: binary.LittleEndian,
		offs:  map[*node]uint32{},
		strs:  map[string]uint32{},
	}
	for _, u := range units {
		a.unit(t, u)
	}
	a.abbrev.WriteByte(0)

	info := a.info.Bytes()
	for _, f := range a.refs {
		off, ok := a.offs[f.target]
		require.True(t, ok, "reference to a node outside the fixture")
		a.order.PutUint32(info[f.pos:], off-uint32(f.unitBase))
	}

	return sections{
		abbrev: a.abbrev.Bytes(),
		info:   info,
		line:   a.line.Bytes(),
		str:    a.str.Bytes(),
	}
}

func (a *asm) unit(t *testing.T, u cu) {
	root := *u.root
	if len(u.files) > 0 {
		root.attrs = append(append([]attr{}, root.attrs...),
			attr{dwarf.AttrStmtList, formSecOffset, uint64(a.line.Len())})
		a.lineTable(u.files)
	}

	base := a.info.Len()
	a.info.Write([]byte{0, 0, 0, 0}) // unit_length, patched below
	a.u16(4)
	a.u32(0) // abbrev offset: one shared table
	a.info.WriteByte(4)

	a.die(t, &root, base, !u.noTerminators)
	a.offs[u.root] = a.offs[&root]

	a.order.PutUint32(a.info.Bytes()[base:], uint32(a.info.Len()-base-4))
}

func (a *asm) die(t *testing.T, nd *node, unitBase int, terminate bool) {
	a.offs[nd] = uint32(a.info.Len())

	a.code++
	uleb(&a.abbrev, a.code)
	uleb(&a.abbrev, uint64(nd.tag))
	if len(nd.children) > 0 {
		a.abbrev.WriteByte(1)
	} else {
		a.abbrev.WriteByte(0)
	}
	for _, at := range nd.attrs {
		uleb(&a.abbrev, uint64(at.at))
		uleb(&a.abbrev, uint64(at.form))
	}
	a.abbrev.Write([]byte{0, 0})

	uleb(&a.info, a.code)
	for _, at := range nd.attrs {
		a.value(t, at, unitBase)
	}

	if len(nd.children) == 0 {
		return
	}
	for _, c := range nd.children {
		a.die(t, c, unitBase, terminate)
	}
	if terminate {
		a.info.WriteByte(0)
	}
}

func (a *asm) value(t *testing.T, at attr, unitBase int) {
	switch at.form {
	case formAddr, formData4, formSecOffset:
		a.u32(uint32(at.val.(uint64)))
	case formData8:
		var b [8]byte
		a.order.PutUint64(b[:], at.val.(uint64))
		a.info.Write(b[:])
	case formData2:
		a.u16(uint16(at.val.(uint64)))
	case formData1:
		a.info.WriteByte(byte(at.val.(uint64)))
	case formUdata:
		uleb(&a.info, at.val.(uint64))
	case formSdata:
		sleb(&a.info, int64(at.val.(uint64)))
	case formString:
		a.info.WriteString(at.val.(string))
		a.info.WriteByte(0)
	case formStrp:
		a.u32(a.strOffset(at.val.(string)))
	case formBlock1:
		b := at.val.([]byte)
		a.info.WriteByte(byte(len(b)))
		a.info.Write(b)
	case formExprloc:
		b := at.val.([]byte)
		uleb(&a.info, uint64(len(b)))
		a.info.Write(b)
	case formFlag:
		if at.val.(bool) {
			a.info.WriteByte(1)
		} else {
			a.info.WriteByte(0)
		}
	case formFlagPresent:
	case formRef4:
		a.refs = append(a.refs, fixup{pos: a.info.Len(), unitBase: unitBase, target: at.val.(*node)})
		a.u32(0)
	default:
		t.Fatalf("unsupported form 0x%x", at.form)
	}
}

func (a *asm) strOffset(s string) uint32 {
	if off, ok := a.strs[s]; ok {
		return off
	}
	off := uint32(a.str.Len())
	a.str.WriteString(s)
	a.str.WriteByte(0)
	a.strs[s] = off
	return off
}

// lineTable writes a version 2 line table header with an empty program.
func (a *asm) lineTable(files []string) {
	var hdr bytes.Buffer
	hdr.WriteByte(1)    // minimum_instruction_length
	hdr.WriteByte(1)    // default_is_stmt
	hdr.WriteByte(0xfb) // line_base -5
	hdr.WriteByte(14)   // line_range
	hdr.WriteByte(1)    // opcode_base: no standard opcode lengths
	hdr.WriteByte(0)    // no include directories
	for _, f := range files {
		hdr.WriteString(f)
		hdr.WriteByte(0)
		hdr.Write([]byte{0, 0, 0}) // directory, mtime, length
	}
	hdr.WriteByte(0)

	var unit bytes.Buffer
	var b4 [4]byte
	binary.LittleEndian.PutUint16(b4[:2], 2)
	unit.Write(b4[:2])
	binary.LittleEndian.PutUint32(b4[:], uint32(hdr.Len()))
	unit.Write(b4[:])
	unit.Write(hdr.Bytes())

	binary.LittleEndian.PutUint32(b4[:], uint32(unit.Len()))
	a.line.Write(b4[:])
	a.line.Write(unit.Bytes())
}

func (a *asm) u16(v uint16) {
	var b [2]byte
	a.order.PutUint16(b[:], v)
	a.info.Write(b[:])
}

func (a *asm) u32(v uint32) {
	var b [4]byte
	a.order.PutUint32(b[:], v)
	a.info.Write(b[:])
}

func uleb(w *bytes.Buffer, v uint64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		w.WriteByte(c)
		if v == 0 {
			return
		}
	}
}

func sleb(w *bytes.Buffer, v int64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0)
		if !done {
			c |= 0x80
		}
		w.WriteByte(c)
		if done {
			return
		}
	}
}

func (s sections) data(t *testing.T) *dwarf.Data {
	t.Helper()
	d, err := dwarf.New(s.abbrev, nil, nil, s.info, s.line, nil, nil, s.str)
	require.NoError(t, err)
	return d
}

func (s sections) build(t *testing.T, opts ...Option) *Info {
	t.Helper()
	info, err := BuildFromDWARF(s.data(t), opts...)
	require.NoError(t, err)
	return info
}

// image wraps the sections in an ELF file next to a code section.
func (s sections) image() []byte {
	img := elftest.New().
		AddProgbits(".text", 0x08000000, elf.SHF_EXECINSTR, make([]byte, 16))
	for _, sec := range []struct {
		name string
		data []byte
	}{
		{".debug_abbrev", s.abbrev},
		{".debug_info", s.info},
		{".debug_line", s.line},
		{".debug_str", s.str},
	} {
		if len(sec.data) == 0 {
			continue
		}
		img.AddSection(elftest.Section{Name: sec.name, Type: elf.SHT_PROGBITS, Data: sec.data})
	}
	return img.Bytes()
}

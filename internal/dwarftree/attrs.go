package dwarftree

import (
	"debug/dwarf"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// maxDumpBytes is the longest block shown in full.
	maxDumpBytes = 16
	// dumpPrefix is how many bytes a truncated block shows.
	dumpPrefix = 8
)

// sectionPtrPrefix names the section a *Ptr class offset points into.
var sectionPtrPrefix = map[dwarf.Class]string{
	dwarf.ClassLinePtr:       ".debug_line",
	dwarf.ClassLocListPtr:    ".debug_loc",
	dwarf.ClassMacPtr:        ".debug_macinfo",
	dwarf.ClassRangeListPtr:  ".debug_ranges",
	dwarf.ClassAddrPtr:       ".debug_addr",
	dwarf.ClassStrOffsetsPtr: ".debug_str_offsets",
	dwarf.ClassRngListsPtr:   ".debug_rnglists",
	dwarf.ClassReferenceAlt:  ".debug_info.sup",
	dwarf.ClassStringAlt:     ".debug_str.sup",
}

// attributes renders every field of e in entry order.
func (u *unit) attributes(e *dwarf.Entry) []Attribute {
	attrs := make([]Attribute, 0, len(e.Field))
	for _, f := range e.Field {
		attrs = append(attrs, Attribute{
			Name:  AttrName(f.Attr),
			Value: u.formatValue(f),
		})
	}
	return attrs
}

// formatValue renders one attribute value. Values whose Go type does not
// match their class fall through to the generic form.
func (u *unit) formatValue(f dwarf.Field) string {
	switch f.Class {
	case dwarf.ClassAddress:
		if v, ok := f.Val.(uint64); ok {
			return fmt.Sprintf("0x%08x", v)
		}

	case dwarf.ClassConstant:
		switch v := f.Val.(type) {
		case int64:
			return u.formatConstant(f.Attr, v)
		case []byte:
			return dumpBytes("", v)
		}

	case dwarf.ClassBlock:
		if v, ok := f.Val.([]byte); ok {
			return dumpBytes("", v)
		}

	case dwarf.ClassExprLoc:
		if v, ok := f.Val.([]byte); ok {
			if len(v) == 0 {
				return "<empty expr>"
			}
			return dumpBytes("expr", v)
		}

	case dwarf.ClassFlag:
		if v, ok := f.Val.(bool); ok {
			return strconv.FormatBool(v)
		}

	case dwarf.ClassString:
		if v, ok := f.Val.(string); ok {
			return v
		}

	case dwarf.ClassReference:
		if v, ok := f.Val.(dwarf.Offset); ok {
			return u.formatReference(v)
		}

	case dwarf.ClassReferenceSig:
		if v, ok := f.Val.(uint64); ok {
			return fmt.Sprintf("type_sig 0x%016x", v)
		}

	case dwarf.ClassLocList:
		if v, ok := asUint64(f.Val); ok {
			return fmt.Sprintf("loclist[%d]", v)
		}

	case dwarf.ClassRngList:
		if v, ok := asUint64(f.Val); ok {
			return fmt.Sprintf("rnglist[%d]", v)
		}

	case dwarf.ClassLinePtr, dwarf.ClassLocListPtr, dwarf.ClassMacPtr,
		dwarf.ClassRangeListPtr, dwarf.ClassAddrPtr, dwarf.ClassStrOffsetsPtr,
		dwarf.ClassRngListsPtr, dwarf.ClassReferenceAlt, dwarf.ClassStringAlt:
		if v, ok := asUint64(f.Val); ok {
			return fmt.Sprintf("%s+0x%x", sectionPtrPrefix[f.Class], v)
		}
	}

	return fmt.Sprintf("%v", f.Val)
}

func (u *unit) formatConstant(attr dwarf.Attr, v int64) string {
	switch attr {
	case dwarf.AttrDeclFile, dwarf.AttrCallFile:
		if name, ok := u.fileName(v); ok {
			return name
		}
		return fmt.Sprintf("file[%d]", v)
	case dwarf.AttrAddrClass:
		return fmt.Sprintf("addr_class(%d)", v)
	}

	if names, ok := enumeratedAttrs[attr]; ok {
		if name, ok := names[v]; ok {
			return name
		}
	}
	return strconv.FormatInt(v, 10)
}

// formatReference renders a reference as the target's name, or its tag and
// offset when it has none. Targets outside the unit show the raw offset.
func (u *unit) formatReference(off dwarf.Offset) string {
	target, ok := u.index[off]
	if !ok {
		return fmt.Sprintf("ref 0x%x", uint32(off))
	}
	if name := stringAttr(target, dwarf.AttrName); name != "" {
		return Demangle(name)
	}
	return fmt.Sprintf("<%s> @ 0x%x", DIETagName(target.Tag), uint32(off))
}

// fileName resolves a line table file index. Index 0 means no file.
func (u *unit) fileName(idx int64) (string, bool) {
	if idx <= 0 || idx >= int64(len(u.files)) {
		return "", false
	}
	f := u.files[idx]
	if f == nil {
		return "", false
	}
	return f.Name, true
}

// dumpBytes renders bytes as space separated hex, keeping only the first
// bytes of long blocks.
func dumpBytes(prefix string, b []byte) string {
	shown := b
	if len(b) > maxDumpBytes {
		shown = b[:dumpPrefix]
	}

	parts := make([]string, len(shown))
	for i, c := range shown {
		parts[i] = fmt.Sprintf("%02x", c)
	}
	hex := strings.Join(parts, " ")

	if len(b) > maxDumpBytes {
		return fmt.Sprintf("%s[%s ... (%d bytes)]", prefix, hex, len(b))
	}
	return fmt.Sprintf("%s[%s]", prefix, hex)
}

func asUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	case dwarf.Offset:
		return uint64(n), true
	}
	return 0, false
}

func stringAttr(e *dwarf.Entry, attr dwarf.Attr) string {
	s, _ := e.Val(attr).(string)
	return s
}

// uintAttr reads a non-negative constant or address attribute.
func uintAttr(e *dwarf.Entry, attr dwarf.Attr) (uint64, bool) {
	return asUint64(e.Val(attr))
}

// uint32Attr reads a constant attribute that fits in 32 bits.
func uint32Attr(e *dwarf.Entry, attr dwarf.Attr) (uint32, bool) {
	v, ok := uintAttr(e, attr)
	if !ok || v > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

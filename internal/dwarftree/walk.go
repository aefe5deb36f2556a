package dwarftree

import (
	"debug/dwarf"

	"go.uber.org/zap"

	"github.com/muurk/fwscope/internal/logging"
)

// die is one raw debug info entry with its children in DIE order.
type die struct {
	entry    *dwarf.Entry
	children []*die
}

// unit is a compilation unit read from .debug_info.
type unit struct {
	entry    *dwarf.Entry
	children []*die

	// index resolves intra-unit references
	index map[dwarf.Offset]*dwarf.Entry

	// files is the line table file list; entry 0 may be nil
	files []*dwarf.LineFile
}

func isUnitTag(tag dwarf.Tag) bool {
	switch tag {
	case dwarf.TagCompileUnit, dwarf.TagPartialUnit, dwarf.TagTypeUnit, dwarf.TagSkeletonUnit:
		return true
	}
	return false
}

// readUnits reads every compilation unit into a raw entry tree. Partial,
// type and skeleton units are skipped.
func readUnits(d *dwarf.Data) ([]*unit, error) {
	r := d.Reader()
	var units []*unit

	e, err := r.Next()
	for e != nil && err == nil {
		if !isUnitTag(e.Tag) {
			// Stray top-level entry; nothing owns it.
			e, err = r.Next()
			continue
		}

		if e.Tag != dwarf.TagCompileUnit {
			r.SkipChildren()
			e, err = r.Next()
			continue
		}

		u := &unit{
			entry: e,
			index: map[dwarf.Offset]*dwarf.Entry{e.Offset: e},
			files: lineFiles(d, e),
		}
		units = append(units, u)

		var next *dwarf.Entry
		if e.Children {
			u.children, next, err = readChildren(r, u.index)
			if err != nil {
				return nil, &DwarfError{Op: "read debug info entries", Err: err}
			}
		}
		if next != nil {
			e = next
			continue
		}
		e, err = r.Next()
	}
	if err != nil {
		return nil, &DwarfError{Op: "read debug info entries", Err: err}
	}

	return units, nil
}

// readChildren reads sibling entries until the terminating null entry. When
// a unit ends without its terminators the next unit's root entry is returned
// so the caller can continue from it.
func readChildren(r *dwarf.Reader, index map[dwarf.Offset]*dwarf.Entry) ([]*die, *dwarf.Entry, error) {
	var children []*die
	for {
		e, err := r.Next()
		if err != nil {
			return nil, nil, err
		}
		if e == nil || e.Tag == 0 {
			return children, nil, nil
		}
		if isUnitTag(e.Tag) {
			return children, e, nil
		}

		d := &die{entry: e}
		index[e.Offset] = e
		children = append(children, d)

		if e.Children {
			var next *dwarf.Entry
			d.children, next, err = readChildren(r, index)
			if err != nil || next != nil {
				return children, next, err
			}
		}
	}
}

func lineFiles(d *dwarf.Data, cu *dwarf.Entry) []*dwarf.LineFile {
	lr, err := d.LineReader(cu)
	if err != nil {
		logging.Warn("Unreadable line table",
			zap.String("unit", stringAttr(cu, dwarf.AttrName)),
			zap.Error(err),
		)
		return nil
	}
	if lr == nil {
		return nil
	}
	return lr.Files()
}

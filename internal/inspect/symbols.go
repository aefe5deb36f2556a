package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muurk/fwscope/internal/dwarftree"
	"github.com/muurk/fwscope/internal/elfimage"
)

// SymbolSort is the ordering of a symbol listing.
type SymbolSort int

const (
	SortByAddress SymbolSort = iota
	SortByName
	SortBySize
)

func (s SymbolSort) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortBySize:
		return "size"
	default:
		return "address"
	}
}

// ParseSymbolSort parses "address", "name" or "size".
func ParseSymbolSort(s string) (SymbolSort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "address", "addr":
		return SortByAddress, nil
	case "name":
		return SortByName, nil
	case "size":
		return SortBySize, nil
	default:
		return SortByAddress, fmt.Errorf("unknown sort key %q (valid: address, name, size)", s)
	}
}

// SymbolQuery selects and orders symbols for display.
type SymbolQuery struct {
	// Filter keeps names containing it, ignoring case. It matches the
	// demangled name.
	Filter     string
	Sort       SymbolSort
	Descending bool
	// Limit caps the result; 0 means no limit.
	Limit int
}

// QuerySymbols demangles, filters, sorts and truncates a symbol list. The
// input is not modified.
func QuerySymbols(symbols []elfimage.Symbol, q SymbolQuery) []elfimage.Symbol {
	filter := strings.ToLower(q.Filter)

	out := make([]elfimage.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		sym.Name = dwarftree.Demangle(sym.Name)
		if filter != "" && !strings.Contains(strings.ToLower(sym.Name), filter) {
			continue
		}
		out = append(out, sym)
	}

	less := func(a, b elfimage.Symbol) bool {
		switch q.Sort {
		case SortByName:
			return a.Name < b.Name
		case SortBySize:
			return a.Size < b.Size
		default:
			return a.Address < b.Address
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

package dwarftree

import "sort"

func rank(t Tag) int {
	switch t {
	case TagSubprogram:
		return 0
	case TagVariable:
		return 1
	case TagStructureType, TagUnionType, TagEnumerationType:
		return 2
	case TagTypedef:
		return 3
	case TagNamespace:
		return 4
	default:
		return 5
	}
}

// less orders functions, variables, aggregate types, typedefs, namespaces and
// then everything else. Ties go by address, addressed nodes first, then by
// name.
func less(a, b *Symbol) bool {
	if ra, rb := rank(a.Tag), rank(b.Tag); ra != rb {
		return ra < rb
	}

	switch {
	case a.Address != nil && b.Address != nil:
		return *a.Address < *b.Address
	case a.Address != nil:
		return true
	case b.Address != nil:
		return false
	default:
		return a.Name < b.Name
	}
}

func sortSymbols(symbols []*Symbol) {
	sort.SliceStable(symbols, func(i, j int) bool {
		return less(symbols[i], symbols[j])
	})
}

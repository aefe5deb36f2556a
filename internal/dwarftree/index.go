package dwarftree

// Index maps node IDs to their position in the tree.
type Index struct {
	info  *Info
	paths map[int][]int
}

// NewIndex indexes every node of info. A path is the list of child
// positions from the compilation unit list down to the node, so the first
// element selects the unit.
func NewIndex(info *Info) *Index {
	idx := &Index{info: info, paths: make(map[int][]int, info.TotalSymbols)}
	for i, cu := range info.CompileUnits {
		idx.add(cu, []int{i})
	}
	return idx
}

func (idx *Index) add(s *Symbol, path []int) {
	idx.paths[s.ID] = path
	for i, child := range s.Children {
		childPath := make([]int, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = i
		idx.add(child, childPath)
	}
}

// Lookup returns the node with the given ID and its path.
func (idx *Index) Lookup(id int) (*Symbol, []int, bool) {
	path, ok := idx.paths[id]
	if !ok {
		return nil, nil, false
	}
	return idx.At(path), path, true
}

// At returns the node at path, or nil when the path is out of range.
func (idx *Index) At(path []int) *Symbol {
	if len(path) == 0 || path[0] < 0 || path[0] >= len(idx.info.CompileUnits) {
		return nil
	}
	s := idx.info.CompileUnits[path[0]]
	for _, i := range path[1:] {
		if i < 0 || i >= len(s.Children) {
			return nil
		}
		s = s.Children[i]
	}
	return s
}

// Ancestors returns the nodes from the compilation unit down to, but not
// including, the node with the given ID.
func (idx *Index) Ancestors(id int) []*Symbol {
	path, ok := idx.paths[id]
	if !ok {
		return nil
	}
	ancestors := make([]*Symbol, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		ancestors = append(ancestors, idx.At(path[:i]))
	}
	return ancestors
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int {
	return len(idx.paths)
}

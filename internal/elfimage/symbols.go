package elfimage

import (
	"sort"
)

// Symbol is a named address from the ELF symbol table.
type Symbol struct {
	Name    string `json:"name"`
	Address uint64 `json:"address"`
	Size    uint64 `json:"size"`
}

// ExtractSymbols returns every named symbol with a non-zero address, sorted by
// address. Symbol type and binding are not filtered.
func ExtractSymbols(data []byte) ([]Symbol, error) {
	f, err := Open(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := Symbols(f)
	if err != nil {
		return nil, err
	}

	symbols := make([]Symbol, 0, len(raw))
	for _, sym := range raw {
		if sym.Name == "" || sym.Value == 0 {
			continue
		}
		symbols = append(symbols, Symbol{
			Name:    sym.Name,
			Address: sym.Value,
			Size:    sym.Size,
		})
	}

	sort.SliceStable(symbols, func(i, j int) bool {
		return symbols[i].Address < symbols[j].Address
	})

	return symbols, nil
}

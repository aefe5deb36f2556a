package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/fwscope/internal/elfimage"
)

var sampleSymbols = []elfimage.Symbol{
	{Name: "Reset_Handler", Address: 0x08000100, Size: 0x40},
	{Name: "_ZN3foo3barEv", Address: 0x08000200, Size: 0x10},
	{Name: "main", Address: 0x08000300, Size: 0x80},
	{Name: "counter", Address: 0x20000000, Size: 4},
}

func symbolNames(symbols []elfimage.Symbol) []string {
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = s.Name
	}
	return names
}

func TestQuerySymbols(t *testing.T) {
	tests := []struct {
		name  string
		query SymbolQuery
		want  []string
	}{
		{"default keeps address order", SymbolQuery{},
			[]string{"Reset_Handler", "foo::bar()", "main", "counter"}},
		{"by name", SymbolQuery{Sort: SortByName},
			[]string{"Reset_Handler", "counter", "foo::bar()", "main"}},
		{"by size descending", SymbolQuery{Sort: SortBySize, Descending: true},
			[]string{"main", "Reset_Handler", "foo::bar()", "counter"}},
		{"address descending", SymbolQuery{Descending: true},
			[]string{"counter", "main", "foo::bar()", "Reset_Handler"}},
		{"filter ignores case", SymbolQuery{Filter: "HANDLER"},
			[]string{"Reset_Handler"}},
		{"filter matches demangled name", SymbolQuery{Filter: "foo::"},
			[]string{"foo::bar()"}},
		{"limit", SymbolQuery{Sort: SortBySize, Descending: true, Limit: 2},
			[]string{"main", "Reset_Handler"}},
		{"limit above count", SymbolQuery{Limit: 10},
			[]string{"Reset_Handler", "foo::bar()", "main", "counter"}},
		{"no match", SymbolQuery{Filter: "nothing"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbolNames(QuerySymbols(sampleSymbols, tt.query)))
		})
	}
}

func TestQuerySymbolsLeavesInputAlone(t *testing.T) {
	QuerySymbols(sampleSymbols, SymbolQuery{Sort: SortByName, Descending: true})
	assert.Equal(t, "_ZN3foo3barEv", sampleSymbols[1].Name)
	assert.Equal(t, "Reset_Handler", sampleSymbols[0].Name)
}

func TestParseSymbolSort(t *testing.T) {
	for in, want := range map[string]SymbolSort{
		"":        SortByAddress,
		"address": SortByAddress,
		"addr":    SortByAddress,
		"Name":    SortByName,
		" size ":  SortBySize,
	} {
		got, err := ParseSymbolSort(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSymbolSort("weight")
	assert.Error(t, err)

	for _, s := range []SymbolSort{SortByAddress, SortByName, SortBySize} {
		got, err := ParseSymbolSort(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

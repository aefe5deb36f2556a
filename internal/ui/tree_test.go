package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muurk/fwscope/internal/dwarftree"
)

func ptr[T any](v T) *T { return &v }

func sampleTree() (*dwarftree.Info, *dwarftree.Symbol, *dwarftree.Symbol) {
	argc := &dwarftree.Symbol{
		ID:       2,
		Name:     "argc",
		Tag:      dwarftree.TagFormalParameter,
		TypeName: ptr("int"),
		Children: []*dwarftree.Symbol{},
	}
	main := &dwarftree.Symbol{
		ID:       1,
		Name:     "main",
		Tag:      dwarftree.TagSubprogram,
		Address:  ptr(uint64(0x1000)),
		Size:     ptr(uint64(0x40)),
		File:     ptr("/src/main.c"),
		Line:     ptr(uint32(20)),
		Children: []*dwarftree.Symbol{argc},
		Attributes: []dwarftree.Attribute{
			{Name: "DW_AT_name", Value: "main"},
			{Name: "DW_AT_low_pc", Value: "0x00001000"},
		},
	}
	cu := &dwarftree.Symbol{
		ID:         0,
		Name:       "main.c",
		Tag:        dwarftree.TagCompileUnit,
		Children:   []*dwarftree.Symbol{main},
		Attributes: []dwarftree.Attribute{},
	}
	info := &dwarftree.Info{Present: true, CompileUnits: []*dwarftree.Symbol{cu}, TotalSymbols: 3}
	return info, main, argc
}

func TestSymbolLabel(t *testing.T) {
	_, main, argc := sampleTree()

	assert.Equal(t, "main Subprogram 0x00001000 (64 B)", SymbolLabel(main))
	assert.Equal(t, "argc FormalParameter : int", SymbolLabel(argc))
}

func TestDwarfTree(t *testing.T) {
	info, _, _ := sampleTree()

	out := DwarfTree(info, TreeOptions{})
	for _, want := range []string{"main.c", "main Subprogram", "argc", ": int"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "DW_AT_name")
}

func TestDwarfTreeMaxDepth(t *testing.T) {
	info, _, _ := sampleTree()

	out := DwarfTree(info, TreeOptions{MaxDepth: 1})
	assert.Contains(t, out, "main Subprogram")
	assert.Contains(t, out, "… 1 more")
	assert.NotContains(t, out, "argc")
}

func TestDwarfTreeAttributes(t *testing.T) {
	info, _, _ := sampleTree()

	out := DwarfTree(info, TreeOptions{Attributes: true})
	assert.Contains(t, out, "DW_AT_name = main")
	assert.Contains(t, out, "DW_AT_low_pc = 0x00001000")
}

func TestDwarfTreeWithoutDebugInfo(t *testing.T) {
	assert.Equal(t, "No debug info", DwarfTree(&dwarftree.Info{}, TreeOptions{}))
	assert.Equal(t, "No debug info", DwarfTree(nil, TreeOptions{}))
}

func TestSymbolDetail(t *testing.T) {
	info, main, argc := sampleTree()

	out := SymbolDetail(main, info.CompileUnits)
	for _, want := range []string{
		"Subprogram", "0x00001000", "0x40 (64 B)", "/src/main.c:20", "main.c",
		"Attributes", "DW_AT_low_pc", "0x00001000",
	} {
		assert.Contains(t, out, want)
	}

	out = SymbolDetail(argc, []*dwarftree.Symbol{info.CompileUnits[0], main})
	assert.Contains(t, out, "main.c › main")
	assert.Contains(t, out, "int")
	assert.NotContains(t, out, "Attributes")
}

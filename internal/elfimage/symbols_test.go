package elfimage

import (
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/fwscope/internal/elfimage/elftest"
)

func TestExtractSymbols(t *testing.T) {
	img := elftest.New().
		AddProgbits(".text", 0x08000000, elf.SHF_EXECINSTR, make([]byte, 0x100)).
		AddProgbits(".data", 0x20000000, elf.SHF_WRITE, make([]byte, 0x40)).
		AddSymbol("main", 0x08000041, 0x20, ".text").
		AddSymbol("COUNTER", 0x20000000, 4, ".data").
		AddSymbol("Reset", 0x08000001, 0x40, ".text").
		AddSymbol("", 0x08000080, 0, ".text").
		AddSymbol("undefined_weak", 0, 0, "")

	symbols, err := ExtractSymbols(img.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []Symbol{
		{Name: "Reset", Address: 0x08000001, Size: 0x40},
		{Name: "main", Address: 0x08000041, Size: 0x20},
		{Name: "COUNTER", Address: 0x20000000, Size: 4},
	}, symbols)
}

func TestExtractSymbolsKeepsEveryType(t *testing.T) {
	img := elftest.New64(binary.LittleEndian).
		AddProgbits(".text", 0x1000, elf.SHF_EXECINSTR, make([]byte, 0x10))
	img.Symbols = append(img.Symbols,
		elftest.Symbol{Name: "local_label", Value: 0x1004, Section: ".text", Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_NOTYPE)},
		elftest.Symbol{Name: "file.c", Value: 0x1000, Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_FILE)},
	)

	symbols, err := ExtractSymbols(img.Bytes())
	require.NoError(t, err)
	require.Len(t, symbols, 2)
	assert.Equal(t, "file.c", symbols[0].Name)
	assert.Equal(t, "local_label", symbols[1].Name)
}

func TestExtractSymbolsWithoutSymbolTable(t *testing.T) {
	img := elftest.New().AddProgbits(".text", 0x08000000, elf.SHF_EXECINSTR, make([]byte, 4))

	symbols, err := ExtractSymbols(img.Bytes())
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestScanDefmt(t *testing.T) {
	img := elftest.New().
		AddProgbits(".text", 0x08000000, elf.SHF_EXECINSTR, make([]byte, 0x10)).
		AddSection(elftest.Section{Name: ".defmt", Type: elf.SHT_PROGBITS, Data: make([]byte, 0x30)}).
		AddSection(elftest.Section{Name: ".defmt.end", Type: elf.SHT_PROGBITS}).
		AddSection(elftest.Section{Name: ".rodata.defmt_table", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC, Addr: 0x08000010, Data: make([]byte, 0x8)})

	info, err := ScanDefmt(img.Bytes())
	require.NoError(t, err)

	assert.True(t, info.Present)
	assert.Equal(t, []DefmtSection{
		{Name: ".defmt", Size: 0x30},
		{Name: ".rodata.defmt_table", Size: 0x8},
	}, info.Sections)
	assert.Equal(t, uint64(0x38), info.TotalSize())
}

func TestScanDefmtAbsent(t *testing.T) {
	img := elftest.New().AddProgbits(".text", 0x08000000, elf.SHF_EXECINSTR, make([]byte, 0x10))

	info, err := ScanDefmt(img.Bytes())
	require.NoError(t, err)
	assert.False(t, info.Present)
	assert.Empty(t, info.Sections)
	assert.Zero(t, info.TotalSize())
}

func TestScanDefmtMalformed(t *testing.T) {
	_, err := ScanDefmt([]byte{0x7f, 'E', 'L', 'F'})
	assert.Error(t, err)
}

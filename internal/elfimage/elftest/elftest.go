// Package elftest writes minimal ELF images for tests.
//
// Images carry section headers only (no program headers), which is all the
// analyzers in this module read. Symbols, when present, get a .symtab and a
// .strtab placed after the user sections.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// Section describes one section of a test image.
type Section struct {
	Name  string
	Type  elf.SectionType
	Flags elf.SectionFlag
	Addr  uint64

	// Data is the file-backed content. For SHT_NOBITS sections it is ignored
	// and Size gives the in-memory size instead.
	Data []byte
	Size uint64
}

// Symbol describes one .symtab entry.
type Symbol struct {
	Name  string
	Value uint64
	Size  uint64

	// Section is the name of the section the symbol lives in. Empty means
	// SHN_ABS.
	Section string
	Info    byte
}

// Image is an ELF file under construction.
type Image struct {
	Class    elf.Class
	Order    binary.ByteOrder
	Machine  elf.Machine
	Sections []Section
	Symbols  []Symbol
}

// New returns an empty 32-bit little-endian ARM image, the common
// microcontroller layout.
func New() *Image {
	return &Image{
		Class:   elf.ELFCLASS32,
		Order:   binary.LittleEndian,
		Machine: elf.EM_ARM,
	}
}

// New64 returns an empty 64-bit image with the given byte order.
func New64(order binary.ByteOrder) *Image {
	return &Image{
		Class:   elf.ELFCLASS64,
		Order:   order,
		Machine: elf.EM_RISCV,
	}
}

// AddSection appends a section and returns the image for chaining.
func (img *Image) AddSection(s Section) *Image {
	img.Sections = append(img.Sections, s)
	return img
}

// AddProgbits appends an allocated SHT_PROGBITS section.
func (img *Image) AddProgbits(name string, addr uint64, flags elf.SectionFlag, data []byte) *Image {
	return img.AddSection(Section{
		Name:  name,
		Type:  elf.SHT_PROGBITS,
		Flags: elf.SHF_ALLOC | flags,
		Addr:  addr,
		Data:  data,
	})
}

// AddNobits appends an allocated, writable SHT_NOBITS section.
func (img *Image) AddNobits(name string, addr, size uint64) *Image {
	return img.AddSection(Section{
		Name:  name,
		Type:  elf.SHT_NOBITS,
		Flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		Addr:  addr,
		Size:  size,
	})
}

// AddSymbol appends a global object symbol.
func (img *Image) AddSymbol(name string, value, size uint64, section string) *Image {
	img.Symbols = append(img.Symbols, Symbol{
		Name:    name,
		Value:   value,
		Size:    size,
		Section: section,
		Info:    elf.ST_INFO(elf.STB_GLOBAL, elf.STT_OBJECT),
	})
	return img
}

type stringTable struct {
	buf bytes.Buffer
}

func newStringTable() *stringTable {
	st := &stringTable{}
	st.buf.WriteByte(0)
	return st
}

func (st *stringTable) add(s string) uint32 {
	if s == "" {
		return 0
	}
	off := uint32(st.buf.Len())
	st.buf.WriteString(s)
	st.buf.WriteByte(0)
	return off
}

type header struct {
	name      uint32
	typ       elf.SectionType
	flags     elf.SectionFlag
	addr      uint64
	offset    uint64
	size      uint64
	link      uint32
	info      uint32
	addralign uint64
	entsize   uint64
}

// Bytes serializes the image.
func (img *Image) Bytes() []byte {
	is64 := img.Class == elf.ELFCLASS64
	ehsize, shentsize, symsize := 52, 40, 16
	if is64 {
		ehsize, shentsize, symsize = 64, 64, 24
	}

	shstr := newStringTable()
	var body bytes.Buffer
	body.Write(make([]byte, ehsize))

	align := func() {
		for body.Len()%8 != 0 {
			body.WriteByte(0)
		}
	}

	headers := []header{{}}
	index := make(map[string]int)

	for _, s := range img.Sections {
		h := header{
			name:      shstr.add(s.Name),
			typ:       s.Type,
			flags:     s.Flags,
			addr:      s.Addr,
			addralign: 4,
		}
		align()
		h.offset = uint64(body.Len())
		if s.Type == elf.SHT_NOBITS {
			h.size = s.Size
		} else {
			body.Write(s.Data)
			h.size = uint64(len(s.Data))
		}
		index[s.Name] = len(headers)
		headers = append(headers, h)
	}

	if len(img.Symbols) > 0 {
		strtab := newStringTable()
		var symtab bytes.Buffer
		symtab.Write(make([]byte, symsize))
		for _, sym := range img.Symbols {
			shndx := uint16(elf.SHN_ABS)
			if idx, ok := index[sym.Section]; ok {
				shndx = uint16(idx)
			}
			name := strtab.add(sym.Name)
			if is64 {
				binary.Write(&symtab, img.Order, elf.Sym64{
					Name:  name,
					Info:  sym.Info,
					Shndx: shndx,
					Value: sym.Value,
					Size:  sym.Size,
				})
			} else {
				binary.Write(&symtab, img.Order, elf.Sym32{
					Name:  name,
					Value: uint32(sym.Value),
					Size:  uint32(sym.Size),
					Info:  sym.Info,
					Shndx: shndx,
				})
			}
		}

		symtabIndex := len(headers)
		align()
		headers = append(headers, header{
			name:      shstr.add(".symtab"),
			typ:       elf.SHT_SYMTAB,
			offset:    uint64(body.Len()),
			size:      uint64(symtab.Len()),
			link:      uint32(symtabIndex + 1),
			info:      1,
			addralign: 8,
			entsize:   uint64(symsize),
		})
		body.Write(symtab.Bytes())

		align()
		headers = append(headers, header{
			name:      shstr.add(".strtab"),
			typ:       elf.SHT_STRTAB,
			offset:    uint64(body.Len()),
			size:      uint64(strtab.buf.Len()),
			addralign: 1,
		})
		body.Write(strtab.buf.Bytes())
	}

	shstrndx := len(headers)
	shstrName := shstr.add(".shstrtab")
	align()
	headers = append(headers, header{
		name:      shstrName,
		typ:       elf.SHT_STRTAB,
		offset:    uint64(body.Len()),
		size:      uint64(shstr.buf.Len()),
		addralign: 1,
	})
	body.Write(shstr.buf.Bytes())

	align()
	shoff := uint64(body.Len())
	for _, h := range headers {
		if is64 {
			binary.Write(&body, img.Order, elf.Section64{
				Name:      h.name,
				Type:      uint32(h.typ),
				Flags:     uint64(h.flags),
				Addr:      h.addr,
				Off:       h.offset,
				Size:      h.size,
				Link:      h.link,
				Info:      h.info,
				Addralign: h.addralign,
				Entsize:   h.entsize,
			})
		} else {
			binary.Write(&body, img.Order, elf.Section32{
				Name:      h.name,
				Type:      uint32(h.typ),
				Flags:     uint32(h.flags),
				Addr:      uint32(h.addr),
				Off:       uint32(h.offset),
				Size:      uint32(h.size),
				Link:      h.link,
				Info:      h.info,
				Addralign: uint32(h.addralign),
				Entsize:   uint32(h.entsize),
			})
		}
	}

	out := body.Bytes()
	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(img.Class)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	if img.Order == binary.BigEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var hdr bytes.Buffer
	if is64 {
		binary.Write(&hdr, img.Order, elf.Header64{
			Ident:     ident,
			Type:      uint16(elf.ET_EXEC),
			Machine:   uint16(img.Machine),
			Version:   uint32(elf.EV_CURRENT),
			Shoff:     shoff,
			Ehsize:    uint16(ehsize),
			Shentsize: uint16(shentsize),
			Shnum:     uint16(len(headers)),
			Shstrndx:  uint16(shstrndx),
		})
	} else {
		binary.Write(&hdr, img.Order, elf.Header32{
			Ident:     ident,
			Type:      uint16(elf.ET_EXEC),
			Machine:   uint16(img.Machine),
			Version:   uint32(elf.EV_CURRENT),
			Shoff:     uint32(shoff),
			Ehsize:    uint16(ehsize),
			Shentsize: uint16(shentsize),
			Shnum:     uint16(len(headers)),
			Shstrndx:  uint16(shstrndx),
		})
	}
	copy(out, hdr.Bytes())

	return out
}

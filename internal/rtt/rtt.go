package rtt

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/fwscope/internal/elfimage"
	"github.com/muurk/fwscope/internal/logging"
)

const (
	// headerSize covers the 16-byte ID tag plus both buffer counts.
	headerSize = 24

	maxUpOffset   = 16
	maxDownOffset = 20

	// maxBuffers caps the slots decoded per direction.
	maxBuffers = 16
)

// SymbolNames are the control block symbols recognized by exact match.
var SymbolNames = []string{"_SEGGER_RTT", "SEGGER_RTT"}

// BufferDesc is one configured RTT channel.
type BufferDesc struct {
	Name          string `json:"name"`
	BufferAddress uint64 `json:"buffer_address"`
	Size          uint32 `json:"size"`
}

// ControlBlock is the decoded content of a control block.
type ControlBlock struct {
	MaxUpBuffers   *uint32
	MaxDownBuffers *uint32
	UpBuffers      []BufferDesc
	DownBuffers    []BufferDesc
}

// Info describes the RTT control block found in an image.
type Info struct {
	Present bool `json:"present"`

	SymbolName *string `json:"symbol_name,omitempty"`
	Address    *uint64 `json:"address,omitempty"`
	Size       *uint64 `json:"size,omitempty"`

	MaxUpBuffers   *uint32 `json:"max_up_buffers,omitempty"`
	MaxDownBuffers *uint32 `json:"max_down_buffers,omitempty"`

	UpBuffers   []BufferDesc `json:"up_buffers"`
	DownBuffers []BufferDesc `json:"down_buffers"`
}

// Decode locates the RTT control block symbol of an ELF image and decodes the
// block from its initialized data. An image without the symbol yields
// Present=false; a symbol whose bytes are not in the file yields Present=true
// with no counts or buffers.
func Decode(data []byte) (*Info, error) {
	f, err := elfimage.Open(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	symbols, err := elfimage.Symbols(f)
	if err != nil {
		return nil, err
	}

	info := &Info{
		UpBuffers:   []BufferDesc{},
		DownBuffers: []BufferDesc{},
	}

	sym, ok := findControlBlock(symbols)
	if !ok {
		logging.Debug("No RTT control block symbol")
		return info, nil
	}

	name := sym.Name
	address := sym.Value
	info.Present = true
	info.SymbolName = &name
	info.Address = &address
	if sym.Size > 0 {
		size := sym.Size
		info.Size = &size
	}

	block := blockBytes(f, address)
	if block == nil {
		logging.Debug("RTT control block has no initialized data",
			zap.String("symbol", name),
			zap.String("address", fmt.Sprintf("0x%08x", address)),
		)
		return info, nil
	}

	logging.LogRawBytes("RTT control block", block)

	cb := DecodeControlBlock(block, elfimage.PointerSize(f), f.ByteOrder)
	info.MaxUpBuffers = cb.MaxUpBuffers
	info.MaxDownBuffers = cb.MaxDownBuffers
	info.UpBuffers = cb.UpBuffers
	info.DownBuffers = cb.DownBuffers

	return info, nil
}

// IsControlBlockSymbol reports whether name identifies an RTT control block.
func IsControlBlockSymbol(name string) bool {
	for _, known := range SymbolNames {
		if name == known {
			return true
		}
	}
	return strings.Contains(name, SymbolNames[0])
}

func findControlBlock(symbols []elf.Symbol) (elf.Symbol, bool) {
	for _, sym := range symbols {
		if IsControlBlockSymbol(sym.Name) {
			return sym, true
		}
	}
	return elf.Symbol{}, false
}

// blockBytes returns the file bytes starting at address inside the first
// section covering it. Nil means no usable data.
func blockBytes(f *elf.File, address uint64) []byte {
	for _, s := range f.Sections {
		if address < s.Addr || address-s.Addr >= s.Size {
			continue
		}

		data, err := elfimage.FileData(s)
		if err != nil {
			logging.Warn("Unreadable RTT section",
				zap.String("section", s.Name),
				zap.Error(err),
			)
			return nil
		}
		offset := address - s.Addr
		if offset >= uint64(len(data)) {
			return nil
		}
		return data[offset:]
	}
	return nil
}

// DecodeControlBlock decodes a SEGGER RTT control block laid out as:
//
//	char     acID[16]
//	uint32   MaxNumUpBuffers
//	uint32   MaxNumDownBuffers
//	BUFFER   aUp[MaxNumUpBuffers]
//	BUFFER   aDown[MaxNumDownBuffers]
//
// where each BUFFER is a name pointer, a buffer pointer, a uint32 size and
// three uint32 offsets and flags. Blocks shorter than the header decode to
// nothing. At most 16 slots per direction are read, and slots with a null
// buffer or zero size are skipped.
func DecodeControlBlock(block []byte, ptrSize int, order binary.ByteOrder) ControlBlock {
	cb := ControlBlock{
		UpBuffers:   []BufferDesc{},
		DownBuffers: []BufferDesc{},
	}
	if len(block) < headerSize {
		return cb
	}

	maxUp := order.Uint32(block[maxUpOffset:])
	maxDown := order.Uint32(block[maxDownOffset:])
	cb.MaxUpBuffers = &maxUp
	cb.MaxDownBuffers = &maxDown

	descSize := uint64(2*ptrSize + 16)
	r := reader{data: block, ptrSize: ptrSize, order: order}

	cb.UpBuffers = r.buffers("Up", headerSize, maxUp, descSize)

	// The down array follows every declared up slot, not just the decoded ones.
	downStart, ok := mulAdd(uint64(maxUp), descSize, headerSize)
	if ok {
		cb.DownBuffers = r.buffers("Down", downStart, maxDown, descSize)
	}

	return cb
}

type reader struct {
	data    []byte
	ptrSize int
	order   binary.ByteOrder
}

func (r reader) buffers(prefix string, start uint64, count uint32, descSize uint64) []BufferDesc {
	buffers := []BufferDesc{}
	n := count
	if n > maxBuffers {
		n = maxBuffers
	}

	for i := uint32(0); i < n; i++ {
		offset, ok := mulAdd(uint64(i), descSize, start)
		if !ok {
			break
		}
		end, ok := mulAdd(1, descSize, offset)
		if !ok || end > uint64(len(r.data)) {
			break
		}

		slot := r.data[offset:end]
		addr := r.pointer(slot[r.ptrSize:])
		size := r.order.Uint32(slot[2*r.ptrSize:])
		if addr == 0 || size == 0 {
			continue
		}

		buffers = append(buffers, BufferDesc{
			Name:          fmt.Sprintf("%s %d", prefix, i),
			BufferAddress: addr,
			Size:          size,
		})
	}

	return buffers
}

func (r reader) pointer(b []byte) uint64 {
	if r.ptrSize == 8 {
		return r.order.Uint64(b)
	}
	return uint64(r.order.Uint32(b))
}

// mulAdd returns a*b+c, reporting false on overflow.
func mulAdd(a, b, c uint64) (uint64, bool) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, false
	}
	p := a * b
	if p > math.MaxUint64-c {
		return 0, false
	}
	return p + c, true
}

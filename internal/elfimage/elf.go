package elfimage

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
)

// FormatError reports an ELF image that could not be decoded.
type FormatError struct {
	// Op is the operation that failed (e.g., "parse ELF header")
	Op string
	// Err is the underlying decoder error
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed ELF image: failed to %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Open parses data as an ELF image.
func Open(data []byte) (*elf.File, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Op: "parse ELF header", Err: err}
	}
	return f, nil
}

// PointerSize returns the target pointer width in bytes.
func PointerSize(f *elf.File) int {
	if f.Class == elf.ELFCLASS64 {
		return 8
	}
	return 4
}

// FileData returns the file-backed bytes of a section. Sections without file
// backing (SHT_NOBITS) return nil.
func FileData(s *elf.Section) ([]byte, error) {
	if s.Type == elf.SHT_NOBITS {
		return nil, nil
	}
	data, err := s.Data()
	if err != nil {
		return nil, &FormatError{Op: fmt.Sprintf("read section %s", s.Name), Err: err}
	}
	return data, nil
}

// Symbols returns the .symtab entries of f in table order. A binary without a
// symbol table yields an empty result.
func Symbols(f *elf.File) ([]elf.Symbol, error) {
	syms, err := f.Symbols()
	if errors.Is(err, elf.ErrNoSymbols) {
		return nil, nil
	}
	if err != nil {
		return nil, &FormatError{Op: "read symbol table", Err: err}
	}
	return syms, nil
}

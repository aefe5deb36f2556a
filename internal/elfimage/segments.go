package elfimage

import (
	"debug/elf"
	"sort"

	"go.uber.org/zap"

	"github.com/muurk/fwscope/internal/logging"
	"github.com/muurk/fwscope/internal/targets"
)

// UnnamedSection labels sections whose name is empty.
const UnnamedSection = "<unnamed>"

// MemorySegment is an allocated section as it will appear in target memory.
type MemorySegment struct {
	Name    string `json:"name"`
	Address uint64 `json:"address"`
	Size    uint64 `json:"size"`

	// Flags is "R" followed by "W" or "-" and "X" or "-"
	Flags string `json:"flags"`

	// IsLoad is false for zero-initialized sections with no file bytes
	IsLoad bool `json:"is_load"`

	// Conflicts holds overlap and containment diagnostics
	Conflicts []string `json:"conflicts"`
}

// ExtractSegments returns the allocated sections of an ELF image sorted by
// address. When regions is non-nil each segment is checked against the
// memory map and against every other segment; a nil regions slice means no
// target is selected and Conflicts stays empty.
func ExtractSegments(data []byte, regions []targets.MemoryRegion) ([]MemorySegment, error) {
	f, err := Open(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	segments := SegmentsFromFile(f)
	DetectConflicts(segments, regions)

	logging.Debug("Extracted segments",
		zap.Int("segments", len(segments)),
		zap.Bool("target", regions != nil),
	)

	return segments, nil
}

// SegmentsFromFile extracts segments from an already parsed image without
// running conflict detection.
func SegmentsFromFile(f *elf.File) []MemorySegment {
	segments := make([]MemorySegment, 0, len(f.Sections))
	for _, s := range f.Sections {
		if s.Size == 0 || s.Addr == 0 || s.Flags&elf.SHF_ALLOC == 0 {
			continue
		}

		name := s.Name
		if name == "" {
			name = UnnamedSection
		}

		segments = append(segments, MemorySegment{
			Name:      name,
			Address:   s.Addr,
			Size:      s.Size,
			Flags:     sectionFlags(s.Flags),
			IsLoad:    s.Type != elf.SHT_NOBITS && s.FileSize > 0,
			Conflicts: []string{},
		})
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Address < segments[j].Address
	})

	return segments
}

func sectionFlags(flags elf.SectionFlag) string {
	buf := []byte{'R', '-', '-'}
	if flags&elf.SHF_WRITE != 0 {
		buf[1] = 'W'
	}
	if flags&elf.SHF_EXECINSTR != 0 {
		buf[2] = 'X'
	}
	return string(buf)
}

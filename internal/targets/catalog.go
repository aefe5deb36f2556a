package targets

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/fwscope/internal/logging"
)

// MemoryKind is the normalized kind of a memory region.
type MemoryKind int

const (
	// Flash is non-volatile memory
	Flash MemoryKind = iota
	// Ram is volatile memory
	Ram
)

// String returns "Flash" or "RAM".
func (k MemoryKind) String() string {
	if k == Ram {
		return "RAM"
	}
	return "Flash"
}

// MarshalText renders the kind for JSON output.
func (k MemoryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses "Flash" or "RAM", ignoring case.
func (k *MemoryKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "flash":
		*k = Flash
	case "ram":
		*k = Ram
	default:
		return fmt.Errorf("unknown memory kind %q", text)
	}
	return nil
}

// MemoryRegion is a named, kind-tagged address range of a target.
type MemoryRegion struct {
	Name  string     `json:"name"`
	Start uint64     `json:"start"`
	Size  uint64     `json:"size"`
	Kind  MemoryKind `json:"kind"`
}

// End returns one past the last address of the region, saturating at the top
// of the address space.
func (r MemoryRegion) End() uint64 {
	return rangeEnd(r.Start, r.Size)
}

// Contains reports whether [addr, addr+size) lies entirely inside the region.
func (r MemoryRegion) Contains(addr, size uint64) bool {
	return addr >= r.Start && rangeEnd(addr, size) <= r.End()
}

// Overlaps reports whether [addr, addr+size) intersects the region at all.
func (r MemoryRegion) Overlaps(addr, size uint64) bool {
	return RangesOverlap(addr, size, r.Start, r.Size)
}

// RangesOverlap reports whether two half-open ranges intersect.
func RangesOverlap(aStart, aSize, bStart, bSize uint64) bool {
	aEnd := rangeEnd(aStart, aSize)
	bEnd := rangeEnd(bStart, bSize)
	return !(aEnd <= bStart || aStart >= bEnd)
}

func rangeEnd(start, size uint64) uint64 {
	if size > math.MaxUint64-start {
		return math.MaxUint64
	}
	return start + size
}

// Lookup returns the normalized memory regions of a target, sorted ascending
// by start address. Regions with equal starts keep their catalog order, and
// overlapping or duplicate entries are preserved.
func (db *Database) Lookup(name string) ([]MemoryRegion, error) {
	target, ok := db.Get(name)
	if !ok {
		return nil, &TargetNotFoundError{
			Name:        name,
			Suggestions: db.suggest(name),
		}
	}

	if len(target.Memory) == 0 {
		return nil, &EmptyMemoryMapError{Name: target.Name}
	}

	regions := Normalize(target.Memory)

	logging.Debug("Loaded memory map",
		zap.String("target", target.Name),
		zap.Int("regions", len(regions)),
	)

	return regions, nil
}

// Normalize converts raw memory map entries into sorted MemoryRegions.
func Normalize(entries []MemoryMapEntry) []MemoryRegion {
	regions := make([]MemoryRegion, 0, len(entries))
	for _, entry := range entries {
		regions = append(regions, MemoryRegion{
			Name:  entry.displayName(),
			Start: entry.Start,
			Size:  entry.End - entry.Start,
			Kind:  entry.kind(),
		})
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Start < regions[j].Start
	})

	return regions
}

func (e MemoryMapEntry) kind() MemoryKind {
	switch e.Kind {
	case EntryRAM:
		return Ram
	case EntryNVM:
		return Flash
	default:
		if strings.Contains(strings.ToLower(e.Name), "ram") {
			return Ram
		}
		return Flash
	}
}

func (e MemoryMapEntry) displayName() string {
	if e.Name != "" {
		return e.Name
	}
	switch e.Kind {
	case EntryRAM:
		return "RAM"
	case EntryNVM:
		return "FLASH"
	default:
		return "GENERIC"
	}
}

// suggest returns up to five target names sharing a prefix with name.
func (db *Database) suggest(name string) []string {
	if len(name) < 3 {
		return nil
	}
	matches := db.Search(name[:3])
	if len(matches) > 5 {
		matches = matches[:5]
	}
	return matches
}

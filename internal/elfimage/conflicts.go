package elfimage

import (
	"fmt"

	"github.com/muurk/fwscope/internal/targets"
)

// Conflict messages.
const (
	overlapFormat        = "Overlaps with %s"
	partiallyOutside     = "Partially outside %s region"
	NotInAnyMemoryRegion = "Not in any defined memory region"
)

// DetectConflicts annotates each segment with its diagnostics. It is a no-op
// when regions is nil.
//
// Segment-to-segment overlaps come first, in the order the other segments
// appear. Region checks follow in catalog order and stop at the first region
// that fully contains the segment. A region that only partially covers the
// segment adds a "Partially outside" diagnostic and still counts as covering
// it, so such a segment never gets the "Not in any defined memory region"
// diagnostic.
func DetectConflicts(segments []MemorySegment, regions []targets.MemoryRegion) {
	if regions == nil {
		return
	}

	for i := range segments {
		seg := segments[i]
		conflicts := []string{}

		for j, other := range segments {
			if i == j {
				continue
			}
			if targets.RangesOverlap(seg.Address, seg.Size, other.Address, other.Size) {
				conflicts = append(conflicts, fmt.Sprintf(overlapFormat, other.Name))
			}
		}

		covered := false
		for _, region := range regions {
			if region.Contains(seg.Address, seg.Size) {
				covered = true
				break
			}
			if region.Overlaps(seg.Address, seg.Size) {
				conflicts = append(conflicts, fmt.Sprintf(partiallyOutside, region.Name))
				covered = true
			}
		}

		if !covered {
			conflicts = append(conflicts, NotInAnyMemoryRegion)
		}

		segments[i].Conflicts = conflicts
	}
}

// HasConflicts reports whether any segment carries a diagnostic.
func HasConflicts(segments []MemorySegment) bool {
	for _, seg := range segments {
		if len(seg.Conflicts) > 0 {
			return true
		}
	}
	return false
}

package inspect

import "github.com/muurk/fwscope/internal/targets"

// RegionUsage totals the segments that sit entirely inside one region.
type RegionUsage struct {
	Region   targets.MemoryRegion `json:"region"`
	Used     uint64               `json:"used"`
	Segments []string             `json:"segments"`
}

// Percent returns Used as a share of the region size.
func (u RegionUsage) Percent() float64 {
	if u.Region.Size == 0 {
		return 0
	}
	return float64(u.Used) / float64(u.Region.Size) * 100
}

// Usage reports, per region of the current target, the segments it fully
// contains. A segment inside several overlapping regions counts for each.
// Without a target it returns nil.
func (s *Snapshot) Usage() []RegionUsage {
	if len(s.Regions) == 0 {
		return nil
	}

	usage := make([]RegionUsage, len(s.Regions))
	for i, region := range s.Regions {
		usage[i] = RegionUsage{Region: region, Segments: []string{}}
		for _, seg := range s.Segments {
			if region.Contains(seg.Address, seg.Size) {
				usage[i].Used += seg.Size
				usage[i].Segments = append(usage[i].Segments, seg.Name)
			}
		}
	}
	return usage
}

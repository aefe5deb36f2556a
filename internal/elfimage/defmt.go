package elfimage

import "strings"

// DefmtSection is one section holding defmt format strings or metadata.
type DefmtSection struct {
	Name string `json:"name"`
	Size uint64 `json:"size"`
}

// DefmtInfo summarizes the defmt logging sections of an image.
type DefmtInfo struct {
	Present  bool           `json:"present"`
	Sections []DefmtSection `json:"sections"`
}

// TotalSize sums the sizes of all defmt sections.
func (d *DefmtInfo) TotalSize() uint64 {
	var total uint64
	for _, s := range d.Sections {
		total += s.Size
	}
	return total
}

// ScanDefmt lists the non-empty defmt sections in section header order.
func ScanDefmt(data []byte) (*DefmtInfo, error) {
	f, err := Open(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := &DefmtInfo{Sections: []DefmtSection{}}
	for _, s := range f.Sections {
		if !strings.HasPrefix(s.Name, ".defmt") && !strings.Contains(s.Name, "defmt") {
			continue
		}
		if s.Size == 0 {
			continue
		}
		info.Sections = append(info.Sections, DefmtSection{Name: s.Name, Size: s.Size})
	}
	info.Present = len(info.Sections) > 0

	return info, nil
}

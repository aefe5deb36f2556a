package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/fwscope/internal/elfimage"
	"github.com/muurk/fwscope/internal/rtt"
	"github.com/muurk/fwscope/internal/targets"
)

// newTable returns a table in the shared style. highlight marks data rows
// drawn in the conflict color; it may be nil.
func newTable(headers []string, rows [][]string, highlight func(row int) bool) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case highlight != nil && highlight(row):
				return ConflictStyle.Padding(0, 1)
			default:
				return TableCellStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)
}

// SegmentsTable lists memory segments with their diagnostics.
func SegmentsTable(segments []elfimage.MemorySegment) string {
	if len(segments) == 0 {
		return StepPendingStyle.Render("No loadable segments")
	}

	rows := make([][]string, 0, len(segments))
	for _, s := range segments {
		load := "load"
		if !s.IsLoad {
			load = "zero"
		}
		rows = append(rows, []string{
			s.Name,
			FormatAddress(s.Address),
			FormatAddress(s.Address + s.Size),
			FormatSize(s.Size),
			s.Flags,
			load,
			strings.Join(s.Conflicts, "\n"),
		})
	}

	return newTable(
		[]string{"Section", "Start", "End", "Size", "Flags", "Type", "Conflicts"},
		rows,
		func(row int) bool { return row < len(segments) && len(segments[row].Conflicts) > 0 },
	).String()
}

// RegionsTable lists the memory regions of a target.
func RegionsTable(regions []targets.MemoryRegion) string {
	rows := make([][]string, 0, len(regions))
	for _, r := range regions {
		rows = append(rows, []string{r.Name, FormatAddress(r.Start), FormatSize(r.Size), r.Kind.String()})
	}
	return newTable([]string{"Region", "Start", "Size", "Kind"}, rows, nil).String()
}

// SymbolsTable lists ELF symbols in the order given.
func SymbolsTable(symbols []elfimage.Symbol) string {
	if len(symbols) == 0 {
		return StepPendingStyle.Render("No symbols")
	}

	rows := make([][]string, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, []string{FormatAddress(s.Address), strconv.FormatUint(s.Size, 10), s.Name})
	}
	return newTable([]string{"Address", "Size", "Name"}, rows, nil).String()
}

// TargetsTable lists catalog targets with their region counts.
func TargetsTable(list []*targets.Target) string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		rows = append(rows, []string{t.Name, t.Family, t.Core, strconv.Itoa(len(t.Memory))})
	}
	return newTable([]string{"Target", "Family", "Core", "Regions"}, rows, nil).String()
}

// RTTView renders a decoded control block and its channels.
func RTTView(info *rtt.Info) string {
	if info == nil || !info.Present {
		return StepPendingStyle.Render("No RTT control block")
	}

	var b strings.Builder
	kv := func(key, value string) {
		b.WriteString(ResultKeyStyle.Render(key+":") + " " + ResultValueStyle.Render(value) + "\n")
	}

	if info.SymbolName != nil {
		kv("Symbol", *info.SymbolName)
	}
	if info.Address != nil {
		kv("Address", FormatAddress(*info.Address))
	}
	if info.Size != nil {
		kv("Size", FormatSize(*info.Size))
	}
	if info.MaxUpBuffers == nil {
		b.WriteString(StepNoteStyle.Render("(control block is not initialized in the image)"))
		return b.String()
	}
	kv("Up buffers", strconv.FormatUint(uint64(*info.MaxUpBuffers), 10))
	if info.MaxDownBuffers != nil {
		kv("Down buffers", strconv.FormatUint(uint64(*info.MaxDownBuffers), 10))
	}

	var rows [][]string
	for i, buf := range info.UpBuffers {
		rows = append(rows, bufferRow("up", i, buf))
	}
	for i, buf := range info.DownBuffers {
		rows = append(rows, bufferRow("down", i, buf))
	}
	if len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(newTable([]string{"Channel", "Name", "Buffer", "Size"}, rows, nil).String())
	}
	return strings.TrimRight(b.String(), "\n")
}

func bufferRow(dir string, i int, buf rtt.BufferDesc) []string {
	name := buf.Name
	if name == "" {
		name = "-"
	}
	return []string{fmt.Sprintf("%s %d", dir, i), name, FormatAddress(buf.BufferAddress), FormatSize(uint64(buf.Size))}
}

// DefmtView renders the defmt sections of an image.
func DefmtView(info *elfimage.DefmtInfo) string {
	if info == nil || !info.Present {
		return StepPendingStyle.Render("No defmt sections")
	}

	rows := make([][]string, 0, len(info.Sections))
	for _, s := range info.Sections {
		rows = append(rows, []string{s.Name, FormatSize(s.Size)})
	}
	return newTable([]string{"Section", "Size"}, rows, nil).String() + "\n" +
		ResultKeyStyle.Render("Total:") + " " + FormatSize(info.TotalSize())
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/fwscope/internal/inspect"
)

// StepStatus represents the outcome of one analysis pass
type StepStatus int

const (
	StepComplete StepStatus = iota // Produced results
	StepEmpty                      // Ran, nothing found
	StepFailed                     // Could not run
)

// Step is one line of the analysis checklist
type Step struct {
	Name    string     // Pass name (e.g., "RTT control block")
	Status  StepStatus // Outcome
	Message string     // Optional note (e.g., "412 symbols")
}

// RenderSteps renders the checklist with markers aligned in one column.
func RenderSteps(steps []Step) string {
	nameWidth := 0
	for _, s := range steps {
		if w := lipgloss.Width(s.Name); w > nameWidth {
			nameWidth = w
		}
	}

	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		var marker string
		var style lipgloss.Style
		switch s.Status {
		case StepComplete:
			marker, style = StepMarkerComplete, StepCompleteStyle
		case StepFailed:
			marker, style = FailureMarker, ErrorTitleStyle
		default:
			marker, style = StepMarkerPending, StepPendingStyle
		}

		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(style.Render(marker))
		b.WriteString(" ")
		b.WriteString(style.Render(s.Name))
		if s.Message != "" {
			b.WriteString(strings.Repeat(" ", nameWidth-lipgloss.Width(s.Name)+2))
			b.WriteString(StepNoteStyle.Render("(" + s.Message + ")"))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// UsageBars renders one progress bar per region showing how much of it the
// image's segments fill.
func UsageBars(usage []inspect.RegionUsage, width int) string {
	if len(usage) == 0 {
		return StepPendingStyle.Render("No target selected")
	}

	nameWidth := 0
	for _, u := range usage {
		if w := lipgloss.Width(u.Region.Name); w > nameWidth {
			nameWidth = w
		}
	}

	barWidth := width - nameWidth - 40 // Leave room for the size columns
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 50 {
		barWidth = 50
	}
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)

	lines := make([]string, 0, len(usage))
	for _, u := range usage {
		percent := u.Percent()
		fraction := percent / 100
		if fraction > 1 {
			fraction = 1
		}
		name := u.Region.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(u.Region.Name))
		lines = append(lines, fmt.Sprintf("  %s  %s  %6s  %s / %s",
			HeaderParamValueStyle.Render(name),
			bar.ViewAs(fraction),
			FormatPercent(percent),
			FormatSize(u.Used),
			FormatSize(u.Region.Size),
		))
	}
	return strings.Join(lines, "\n")
}

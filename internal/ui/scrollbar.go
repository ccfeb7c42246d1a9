// Package ui holds small rendering helpers shared by browser views.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wilbur182/listexplorer/internal/styles"
)

// Scrollbar describes a vertical scrollbar over a list of rows.
type Scrollbar struct {
	Total   int // rows of content
	Offset  int // first visible row
	Visible int // rows that fit in the viewport
	Height  int // track height in terminal rows
}

// Render returns exactly Height lines, each one cell wide. When everything
// fits, the track is blank so the column width stays reserved.
func (s Scrollbar) Render() string {
	if s.Height < 1 {
		return ""
	}
	lines := make([]string, s.Height)
	if s.Total <= s.Visible {
		for i := range lines {
			lines[i] = " "
		}
		return strings.Join(lines, "\n")
	}

	thumbSize, thumbPos := s.thumb()
	track := lipgloss.NewStyle().Foreground(styles.ScrollbarTrackColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(styles.ScrollbarThumbColor).Render("┃")
	for i := range lines {
		if i >= thumbPos && i < thumbPos+thumbSize {
			lines[i] = thumb
		} else {
			lines[i] = track
		}
	}
	return strings.Join(lines, "\n")
}

// thumb returns the thumb length and its first row within the track.
func (s Scrollbar) thumb() (size, pos int) {
	size = max(1, min(s.Height, s.Visible*s.Height/s.Total))
	maxOffset := max(1, s.Total-s.Visible)
	pos = s.Offset * (s.Height - size) / maxOffset
	pos = max(0, min(s.Height-size, pos))
	return size, pos
}

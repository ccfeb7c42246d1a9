package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wilbur182/listexplorer/internal/styles"
)

// Divider renders a vertical rule of height rows between the list and the
// preview pane.
func Divider(height int) string {
	if height < 1 {
		return ""
	}
	bar := strings.TrimSuffix(strings.Repeat("│\n", height), "\n")
	return lipgloss.NewStyle().Foreground(styles.BorderNormal).Render(bar)
}

// Package styles holds the browser's color palette and shared lipgloss
// styles.
package styles

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Palette is a theme's color set.
type Palette struct {
	Primary       string
	Accent        string
	Success       string
	Warning       string
	Error         string
	TextPrimary   string
	TextSecondary string
	TextMuted     string
	BgSelection   string
	BorderNormal  string
	BorderActive  string
}

var themes = map[string]Palette{
	"default": {
		Primary:       "#7C3AED",
		Accent:        "#F59E0B",
		Success:       "#10B981",
		Warning:       "#F59E0B",
		Error:         "#EF4444",
		TextPrimary:   "#F9FAFB",
		TextSecondary: "#9CA3AF",
		TextMuted:     "#6B7280",
		BgSelection:   "#374151",
		BorderNormal:  "#374151",
		BorderActive:  "#7C3AED",
	},
	"light": {
		Primary:       "#6D28D9",
		Accent:        "#B45309",
		Success:       "#047857",
		Warning:       "#B45309",
		Error:         "#B91C1C",
		TextPrimary:   "#111827",
		TextSecondary: "#374151",
		TextMuted:     "#6B7280",
		BgSelection:   "#E5E7EB",
		BorderNormal:  "#D1D5DB",
		BorderActive:  "#6D28D9",
	},
}

var mu sync.RWMutex

// Colors and styles for the active theme. Apply rebuilds them.
var (
	Primary             lipgloss.Color
	BorderNormal        lipgloss.Color
	BorderActive        lipgloss.Color
	ScrollbarTrackColor lipgloss.Color
	ScrollbarThumbColor lipgloss.Color

	Title        lipgloss.Style
	Muted        lipgloss.Style
	Subtle       lipgloss.Style
	Selected     lipgloss.Style
	Footer       lipgloss.Style
	Fallback     lipgloss.Style
	ErrorText    lipgloss.Style
	StatusOK     lipgloss.Style
	PanelActive  lipgloss.Style
	PanelNormal  lipgloss.Style
	FilterPrompt lipgloss.Style
)

func init() {
	_ = Apply("default")
}

// Names returns the built-in theme names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply makes the named theme active. Not safe to call while rendering.
func Apply(name string) error {
	mu.RLock()
	p, ok := themes[name]
	mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	if err := p.validate(); err != nil {
		return fmt.Errorf("theme %s: %w", name, err)
	}

	Primary = lipgloss.Color(p.Primary)
	BorderNormal = lipgloss.Color(p.BorderNormal)
	BorderActive = lipgloss.Color(p.BorderActive)
	ScrollbarTrackColor = lipgloss.Color(p.BorderNormal)
	ScrollbarThumbColor = lipgloss.Color(p.TextMuted)

	Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.TextPrimary))
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color(p.TextSecondary))
	Subtle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.TextMuted))
	Selected = lipgloss.NewStyle().Background(lipgloss.Color(p.BgSelection)).Foreground(lipgloss.Color(p.TextPrimary))
	Footer = lipgloss.NewStyle().Foreground(lipgloss.Color(p.TextMuted))
	Fallback = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent))
	ErrorText = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error))
	StatusOK = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success))
	PanelActive = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(BorderActive)
	PanelNormal = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(BorderNormal)
	FilterPrompt = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	return nil
}

func (p Palette) validate() error {
	for _, c := range []string{
		p.Primary, p.Accent, p.Success, p.Warning, p.Error,
		p.TextPrimary, p.TextSecondary, p.TextMuted,
		p.BgSelection, p.BorderNormal, p.BorderActive,
	} {
		if !hexColorRegex.MatchString(c) {
			return fmt.Errorf("invalid color %q", c)
		}
	}
	return nil
}

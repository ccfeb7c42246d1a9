// Package keymap defines the browser's key bindings.
package keymap

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the browser reacts to outside filter input.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	ZoomIn        key.Binding
	ZoomOut       key.Binding
	ToggleView    key.Binding
	TogglePreview key.Binding
	Filter        key.Binding
	ClearFilter   key.Binding
	Copy          key.Binding
	Quit          key.Binding
}

// Default returns the standard bindings.
func Default() KeyMap {
	return KeyMap{
		Up:            key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Left:          key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "left")),
		Right:         key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "right")),
		PageUp:        key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:      key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:           key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:        key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		ZoomIn:        key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:       key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		ToggleView:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "list/tiles")),
		TogglePreview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Filter:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		ClearFilter:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		Copy:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.ToggleView, k.Filter, k.Copy, k.TogglePreview, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.ZoomIn, k.ZoomOut, k.ToggleView, k.TogglePreview},
		{k.Filter, k.ClearFilter, k.Copy, k.Quit},
	}
}

package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestDefaultBindings(t *testing.T) {
	km := Default()
	tests := []struct {
		msg     tea.KeyMsg
		binding key.Binding
		name    string
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}}, km.ZoomIn, "zoom in"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}}, km.ZoomOut, "zoom out"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}}, km.ToggleView, "toggle view"},
		{tea.KeyMsg{Type: tea.KeyDown}, km.Down, "down arrow"},
		{tea.KeyMsg{Type: tea.KeyPgDown}, km.PageDown, "page down"},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit, "ctrl+c"},
		{tea.KeyMsg{Type: tea.KeyEsc}, km.ClearFilter, "esc"},
	}
	for _, tt := range tests {
		if !key.Matches(tt.msg, tt.binding) {
			t.Errorf("%s: %q does not match", tt.name, tt.msg.String())
		}
	}
	if key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, km.Quit) {
		t.Error("x matched quit")
	}
}

func TestHelpCoversBindings(t *testing.T) {
	km := Default()
	if len(km.ShortHelp()) == 0 {
		t.Fatal("ShortHelp() is empty")
	}
	n := 0
	for _, col := range km.FullHelp() {
		n += len(col)
	}
	if n != 16 {
		t.Errorf("FullHelp() lists %d bindings, want 16", n)
	}
}

package browser

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/listexplorer/internal/mouse"
	"github.com/wilbur182/listexplorer/internal/pathnorm"
)

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	k := m.keys
	per := m.lay.perRow()
	switch {
	case key.Matches(msg, k.Quit):
		m.saveView()
		m.quitting = true
		return tea.Quit

	case key.Matches(msg, k.Up):
		return m.moveTo(m.cursor - per)
	case key.Matches(msg, k.Down):
		return m.moveTo(m.cursor + per)
	case key.Matches(msg, k.Left):
		if m.lay.tiles() {
			return m.moveTo(m.cursor - 1)
		}
	case key.Matches(msg, k.Right):
		if m.lay.tiles() {
			return m.moveTo(m.cursor + 1)
		}
	case key.Matches(msg, k.PageUp):
		return m.moveTo(m.cursor - m.pageItems())
	case key.Matches(msg, k.PageDown):
		return m.moveTo(m.cursor + m.pageItems())
	case key.Matches(msg, k.Top):
		return m.moveTo(0)
	case key.Matches(msg, k.Bottom):
		return m.moveTo(m.lay.Len() - 1)

	case key.Matches(msg, k.ZoomIn):
		return m.zoom(m.cfg.Thumbnails.ZoomStep)
	case key.Matches(msg, k.ZoomOut):
		return m.zoom(-m.cfg.Thumbnails.ZoomStep)
	case key.Matches(msg, k.ToggleView):
		m.toggleView()

	case key.Matches(msg, k.TogglePreview):
		m.showPreview = !m.showPreview
		m.resize()
		m.thumbs.RequestVisiblePass()
		return m.loadPreview()

	case key.Matches(msg, k.Filter):
		m.filtering = true
		m.input.SetValue(m.query)
		m.input.CursorEnd()
		m.resize()
		return m.input.Focus()
	case key.Matches(msg, k.ClearFilter):
		if m.query != "" {
			return m.setQuery("")
		}

	case key.Matches(msg, k.Copy):
		return m.copySelection()
	}
	return nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.input.Blur()
		m.resize()
		return nil
	case tea.KeyEsc:
		m.filtering = false
		m.input.Blur()
		m.input.SetValue("")
		return m.setQuery("")
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.query {
		return tea.Batch(cmd, m.setQuery(v))
	}
	return cmd
}

// pageItems is the number of items one screen holds.
func (m *Model) pageItems() int {
	return max(1, m.lay.height/m.lay.cellH()) * m.lay.perRow()
}

func (m *Model) copySelection() tea.Cmd {
	it := m.selected()
	if it == nil {
		return nil
	}
	path := pathnorm.Normalize(it.Entry.Path)
	if err := clipboard.WriteAll(path); err != nil {
		m.logger.Debug("clipboard write failed", "path", path, "error", err)
		return m.setStatus("Failed to copy path", true)
	}
	return m.setStatus("Copied: "+path, false)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	act := m.mouse.HandleMouse(msg)
	switch act.Type {
	case mouse.ActionScrollUp, mouse.ActionScrollDown:
		scroll := m.lay.scroll
		m.lay.scroll += act.Delta
		m.lay.clampScroll()
		if m.lay.scroll != scroll {
			m.thumbs.RequestVisiblePass()
		}
	case mouse.ActionClick:
		return m.moveTo(act.Region.Index)
	case mouse.ActionDoubleClick:
		cmd := m.moveTo(act.Region.Index)
		if !m.showPreview {
			m.showPreview = true
			m.resize()
			m.thumbs.RequestVisiblePass()
			return m.loadPreview()
		}
		return cmd
	}
	return nil
}

package browser

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/wilbur182/listexplorer/internal/dispatch"
	"github.com/wilbur182/listexplorer/internal/listing"
	"github.com/wilbur182/listexplorer/internal/mouse"
	"github.com/wilbur182/listexplorer/internal/preview"
	"github.com/wilbur182/listexplorer/internal/styles"
	"github.com/wilbur182/listexplorer/internal/ui"
)

const (
	previewDetailLines = 6 // title and file details around the preview image
	sizeColumn         = 10
)

// Fallback glyphs shown until a thumbnail is applied.
const (
	glyphImage = "▢"
	glyphVideo = "▶"
	glyphOther = "·"
)

// View renders the browser.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.sized {
		return "Loading…"
	}

	parts := []string{m.renderHeader()}
	if m.filtering || m.query != "" {
		parts = append(parts, m.renderFilter())
	}
	parts = append(parts, m.renderBody())
	if m.cfg.UI.ShowFooter {
		parts = append(parts, m.renderFooter())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderHeader() string {
	title := styles.Title.Render("listexplorer")
	src := styles.Muted.Render(" " + sanitize(m.manifest))
	return preview.FitBlock(title+src, m.width, 1)
}

func (m *Model) renderFilter() string {
	if m.filtering {
		return preview.FitBlock(m.input.View(), m.width, 1)
	}
	line := styles.FilterPrompt.Render("/") + m.query +
		styles.Subtle.Render(fmt.Sprintf("  %d of %d  (esc to clear)", m.lay.Len(), m.reg.Len()))
	return preview.FitBlock(line, m.width, 1)
}

func (m *Model) renderBody() string {
	h := m.lay.height
	if h <= 0 {
		return ""
	}
	top := m.height - h
	if m.cfg.UI.ShowFooter {
		top -= footerLines
	}

	cols := []string{
		m.renderItems(top),
		ui.Scrollbar{Total: m.lay.contentHeight(), Offset: m.lay.scroll, Visible: h, Height: h}.Render(),
	}
	if pw := m.previewWidth(); pw > 0 {
		cols = append(cols, ui.Divider(h), m.renderPreview(pw, h))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// renderItems draws the visible items and rebuilds the hit map. top is the
// screen row of the list area.
func (m *Model) renderItems(top int) string {
	l := &m.lay
	m.mouse.HitMap.Clear()
	lines := make([]string, l.height)
	if l.Len() == 0 {
		lines[0] = styles.Subtle.Render("No entries")
		return preview.FitBlock(strings.Join(lines, "\n"), l.width, l.height)
	}

	screen := mouse.Rect{X: 0, Y: top, W: l.width, H: l.height}
	first, last := l.visibleRange()
	for i := first; i < last; i++ {
		r := l.ItemRect(i)
		var block []string
		if l.tiles() {
			block = m.renderTile(i)
		} else {
			block = m.renderRow(i)
		}
		for k, line := range block {
			y := r.Y - l.scroll + k
			if y >= 0 && y < l.height {
				lines[y] += line
			}
		}
		if hit := clip(r.Translate(0, top-l.scroll), screen); !hit.Empty() {
			m.mouse.HitMap.Add("item-"+strconv.Itoa(i), hit, i)
		}
	}
	return preview.FitBlock(strings.Join(lines, "\n"), l.width, l.height)
}

func clip(r, bounds mouse.Rect) mouse.Rect {
	x0, y0 := max(r.X, bounds.X), max(r.Y, bounds.Y)
	x1, y1 := min(r.X+r.W, bounds.X+bounds.W), min(r.Y+r.H, bounds.Y+bounds.H)
	return mouse.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// renderRow draws one list entry: icon on the left, number, name and size
// on the first line, the directory on the second.
func (m *Model) renderRow(i int) []string {
	l := &m.lay
	it := l.item(i)
	icon := m.iconBlock(it)
	textW := max(0, l.width-l.cols-1)

	num := fmt.Sprintf("%5d  ", it.Entry.Index+1)
	size := padLeft(declaredSize(it.Entry.DeclaredSize), sizeColumn)
	nameW := max(0, textW-len(num)-sizeColumn-1)
	first := num + padRight(truncateMiddle(it.Entry.Name, nameW), nameW) + " " + size

	out := make([]string, l.rows)
	for k := range out {
		var text string
		switch k {
		case 0:
			text = padRight(first, textW)
			if i == m.cursor {
				text = styles.Selected.Render(text)
			}
		case 1:
			text = styles.Subtle.Render(padRight(truncateMiddle(dirOf(it.Entry.Path), textW), textW))
		default:
			text = strings.Repeat(" ", textW)
		}
		out[k] = icon[k] + " " + text
	}
	return out
}

// renderTile draws one grid cell: icon, name line, gap.
func (m *Model) renderTile(i int) []string {
	l := &m.lay
	it := l.item(i)
	icon := m.iconBlock(it)
	w := l.cellW()
	padL := tilePadX / 2
	padR := w - l.cols - padL

	out := make([]string, 0, l.cellH())
	for _, line := range icon {
		out = append(out, strings.Repeat(" ", padL)+line+strings.Repeat(" ", padR))
	}
	name := padRight(" "+truncateMiddle(it.Entry.Name, w-2), w)
	if i == m.cursor {
		name = styles.Selected.Render(name)
	}
	out = append(out, name)
	for len(out) < l.cellH() {
		out = append(out, strings.Repeat(" ", w))
	}
	return out
}

// iconBlock returns exactly rows lines of cols cells: the thumbnail when one
// is applied at the active size, otherwise a centered fallback glyph.
func (m *Model) iconBlock(it *dispatch.Item) []string {
	cols, rows := m.lay.cols, m.lay.rows
	if it.HasIcon(m.thumbs.Size()) {
		if s := m.icons.Render(it.Icon, cols, rows); s != "" {
			return strings.Split(s, "\n")
		}
	}

	glyph := glyphOther
	switch it.Entry.Kind {
	case listing.KindImage:
		glyph = glyphImage
	case listing.KindVideo:
		glyph = glyphVideo
	}
	lines := make([]string, rows)
	for k := range lines {
		lines[k] = strings.Repeat(" ", cols)
	}
	left := (cols - 1) / 2
	lines[(rows-1)/2] = strings.Repeat(" ", left) + styles.Fallback.Render(glyph) + strings.Repeat(" ", cols-left-1)
	return lines
}

func (m *Model) renderPreview(w, h int) string {
	it := m.selected()
	if it == nil {
		return preview.FitBlock("", w, h)
	}
	inner := max(0, w-2)
	var b strings.Builder
	b.WriteString(" " + styles.Title.Render(truncateMiddle(it.Entry.Name, inner)) + "\n")

	res := m.previewRes
	switch {
	case !m.previewReady || m.previewPath != it.Entry.Path:
		b.WriteString(" " + styles.Subtle.Render("Loading…"))
	case res.Message != "":
		style := styles.Muted
		if res.Err != nil {
			style = styles.ErrorText
		}
		b.WriteString(" " + style.Render(res.Message) + "\n")
		b.WriteString(previewDetails(it.Entry, res, inner))
	default:
		if res.Content != "" {
			for _, line := range strings.Split(res.Content, "\n") {
				b.WriteString(" " + line + "\n")
			}
		}
		b.WriteString(previewDetails(it.Entry, res, inner))
	}
	return preview.FitBlock(b.String(), w, h)
}

func previewDetails(e listing.Entry, res preview.Result, w int) string {
	var lines []string
	lines = append(lines, "Type: "+e.Kind.String())
	if res.Width > 0 {
		lines = append(lines, fmt.Sprintf("Dimensions: %d × %d", res.Width, res.Height))
	}
	if res.FileSize > 0 || !res.ModTime.IsZero() {
		lines = append(lines, "Size: "+humanize.IBytes(uint64(res.FileSize)))
		lines = append(lines, "Modified: "+humanize.Time(res.ModTime))
	}
	lines = append(lines, truncateMiddle(dirOf(e.Path), w))
	for i, l := range lines {
		lines[i] = " " + styles.Muted.Render(l)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	st := m.thumbs.Stats()
	parts := []string{
		fmt.Sprintf("%s entries", humanize.Comma(int64(m.reg.Len()))),
		fmt.Sprintf("%dpx", m.thumbs.Size()),
		m.lay.mode,
	}
	queued := fmt.Sprintf("queued %s", humanize.Comma(int64(st.Queued)))
	if m.spinning && st.Queued > 0 {
		queued = m.spin.View() + " " + queued
	}
	parts = append(parts,
		queued,
		fmt.Sprintf("generated %s", humanize.Comma(st.Generated)),
		fmt.Sprintf("hits %s", humanize.Comma(st.Hits)),
		fmt.Sprintf("failed %s", humanize.Comma(st.Failed)),
	)
	line := styles.Footer.Render(strings.Join(parts, " · "))
	if m.status != "" {
		style := styles.StatusOK
		if m.statusErr {
			style = styles.ErrorText
		}
		line += "  " + style.Render(m.status)
	}
	helpLine := m.help.ShortHelpView(m.keys.ShortHelp())
	return preview.FitBlock(line, m.width, 1) + "\n" + preview.FitBlock(helpLine, m.width, 1)
}

// declaredSize formats a manifest size column in bytes for display.
func declaredSize(s string) string {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return sanitize(s)
	}
	return humanize.IBytes(uint64(n))
}

// dirOf returns the directory part of a manifest path in either spelling.
func dirOf(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[:i]
	}
	return filepath.Dir(p)
}

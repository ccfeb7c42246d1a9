package browser

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/wilbur182/listexplorer/internal/dispatch"
)

// filterView returns the registry indices whose names match query, best
// match first. An empty query keeps listing order.
func filterView(reg *dispatch.Registry, query string) []int {
	n := reg.Len()
	query = strings.TrimSpace(query)
	if query == "" {
		view := make([]int, n)
		for i := range view {
			view[i] = i
		}
		return view
	}
	matches := fuzzy.FindFrom(query, itemNames(reg.Items()))
	view := make([]int, len(matches))
	for i, m := range matches {
		view[i] = m.Index
	}
	return view
}

// itemNames adapts the registry to fuzzy.Source.
type itemNames []*dispatch.Item

func (s itemNames) String(i int) string { return s[i].Entry.Name }
func (s itemNames) Len() int            { return len(s) }

// sanitize replaces control characters so a manifest cannot inject escape
// sequences into the view.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}

// truncateMiddle shortens s to width cells, keeping both ends.
func truncateMiddle(s string, width int) string {
	s = sanitize(s)
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	avail := width - 1
	left := avail - avail/2
	head := runewidth.Truncate(s, left, "")
	tail := truncateLeft(s, avail/2)
	return head + "…" + tail
}

// truncateLeft keeps the last width cells of s.
func truncateLeft(s string, width int) string {
	rs := []rune(s)
	w := 0
	i := len(rs)
	for i > 0 {
		rw := runewidth.RuneWidth(rs[i-1])
		if w+rw > width {
			break
		}
		w += rw
		i--
	}
	return string(rs[i:])
}

// padRight pads or truncates s to exactly w cells.
func padRight(s string, w int) string {
	if w <= 0 {
		return ""
	}
	sw := runewidth.StringWidth(s)
	switch {
	case sw == w:
		return s
	case sw > w:
		return runewidth.FillRight(runewidth.Truncate(s, w, ""), w)
	}
	return s + strings.Repeat(" ", w-sw)
}

// padLeft right-aligns s in w cells.
func padLeft(s string, w int) string {
	sw := runewidth.StringWidth(s)
	if sw >= w {
		return runewidth.Truncate(s, w, "")
	}
	return strings.Repeat(" ", w-sw) + s
}

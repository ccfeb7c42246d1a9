package browser

import (
	"github.com/wilbur182/listexplorer/internal/config"
	"github.com/wilbur182/listexplorer/internal/dispatch"
	"github.com/wilbur182/listexplorer/internal/listing"
	"github.com/wilbur182/listexplorer/internal/mouse"
	"github.com/wilbur182/listexplorer/internal/scheduler"
)

const (
	tilePadX = 6 // tile width beyond the icon
	tilePadY = 2 // name line plus gap
)

// iconCells converts an icon size in pixels to a cell box. A cell is about
// 8 px wide and 16 px tall.
func iconCells(size int) (cols, rows int) {
	return max(1, size/8), max(1, size/16)
}

// layout arranges the filtered items in content coordinates: X grows right,
// Y grows down from the first row of the first item. The viewport is the
// window of content rows currently on screen.
type layout struct {
	reg  *dispatch.Registry
	view []int // registry indices shown, in order

	mode          string
	width, height int // list area in cells
	cols, rows    int // icon box
	scroll        int // first content row on screen
}

var _ scheduler.Layout = (*layout)(nil)

func (l *layout) Len() int { return len(l.view) }

func (l *layout) Entry(i int) listing.Entry { return l.item(i).Entry }

func (l *layout) item(i int) *dispatch.Item {
	return l.reg.Item(l.view[i])
}

func (l *layout) setSize(size int) {
	l.cols, l.rows = iconCells(size)
}

func (l *layout) tiles() bool { return l.mode == config.ViewTiles }

// cellW and cellH are the extent of one item.
func (l *layout) cellW() int {
	if l.tiles() {
		return l.cols + tilePadX
	}
	return l.width
}

func (l *layout) cellH() int {
	if l.tiles() {
		return l.rows + tilePadY
	}
	return l.rows
}

// perRow is the number of items on one content row.
func (l *layout) perRow() int {
	if !l.tiles() {
		return 1
	}
	return max(1, l.width/l.cellW())
}

func (l *layout) ItemRect(i int) mouse.Rect {
	per := l.perRow()
	return mouse.Rect{
		X: (i % per) * l.cellW(),
		Y: (i / per) * l.cellH(),
		W: l.cellW(),
		H: l.cellH(),
	}
}

func (l *layout) Viewport() mouse.Rect {
	return mouse.Rect{X: 0, Y: l.scroll, W: l.width, H: l.height}
}

// contentHeight is the total height of all items in rows.
func (l *layout) contentHeight() int {
	per := l.perRow()
	lines := (len(l.view) + per - 1) / per
	return lines * l.cellH()
}

func (l *layout) maxScroll() int {
	return max(0, l.contentHeight()-l.height)
}

func (l *layout) clampScroll() {
	l.scroll = max(0, min(l.maxScroll(), l.scroll))
}

// scrollBy moves the viewport by n item lines.
func (l *layout) scrollBy(n int) {
	l.scroll += n * l.cellH()
	l.clampScroll()
}

// ensureVisible scrolls the minimum amount that brings item i fully on
// screen, or its top edge when it is taller than the viewport.
func (l *layout) ensureVisible(i int) {
	if i < 0 || i >= len(l.view) {
		return
	}
	r := l.ItemRect(i)
	switch {
	case r.Y < l.scroll:
		l.scroll = r.Y
	case r.Y+r.H > l.scroll+l.height:
		l.scroll = r.Y + r.H - l.height
		if r.H > l.height {
			l.scroll = r.Y
		}
	}
	l.clampScroll()
}

// visibleRange returns the half-open range of view indices intersecting the
// viewport.
func (l *layout) visibleRange() (first, last int) {
	if len(l.view) == 0 || l.height <= 0 {
		return 0, 0
	}
	per, h := l.perRow(), l.cellH()
	first = (l.scroll / h) * per
	last = ((l.scroll + l.height + h - 1) / h) * per
	return min(first, len(l.view)), min(last, len(l.view))
}

// indexOf returns the view position of registry index reg, or -1.
func (l *layout) indexOf(reg int) int {
	for i, r := range l.view {
		if r == reg {
			return i
		}
	}
	return -1
}

// Package mouse holds screen geometry and click/wheel hit testing for the
// browser view.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const doubleClickWindow = 400 * time.Millisecond

// Rect is a rectangle in cell coordinates. W and H are exclusive extents.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersects reports whether r and o share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Region is a hit region carrying the entry index it represents.
type Region struct {
	ID    string
	Rect  Rect
	Index int
}

// HitMap records the regions drawn in the last frame.
type HitMap struct {
	regions []Region
}

// NewHitMap creates an empty HitMap.
func NewHitMap() *HitMap {
	return &HitMap{regions: make([]Region, 0, 64)}
}

// Clear drops all regions. Call at the start of every render.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// Add registers a region.
func (h *HitMap) Add(id string, rect Rect, index int) {
	h.regions = append(h.regions, Region{ID: id, Rect: rect, Index: index})
}

// Test returns the topmost region containing (x, y), or nil.
func (h *HitMap) Test(x, y int) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			return &h.regions[i]
		}
	}
	return nil
}

// Len returns the number of registered regions.
func (h *HitMap) Len() int { return len(h.regions) }

// ActionType is what a mouse event means to the browser.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionScrollUp
	ActionScrollDown
)

// Action is the decoded result of a tea.MouseMsg.
type Action struct {
	Type   ActionType
	Region *Region
	Delta  int
}

// Handler combines a HitMap with double-click tracking.
type Handler struct {
	HitMap *HitMap

	lastRegion string
	lastClick  time.Time
	now        func() time.Time
}

// NewHandler creates a Handler.
func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap(), now: time.Now}
}

// HandleMouse decodes msg against the current hit map.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	if msg.Action != tea.MouseActionPress {
		return Action{}
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return Action{Type: ActionScrollUp, Region: h.HitMap.Test(msg.X, msg.Y), Delta: -3}
	case tea.MouseButtonWheelDown:
		return Action{Type: ActionScrollDown, Region: h.HitMap.Test(msg.X, msg.Y), Delta: 3}
	case tea.MouseButtonLeft:
		return h.click(msg.X, msg.Y)
	}
	return Action{}
}

func (h *Handler) click(x, y int) Action {
	region := h.HitMap.Test(x, y)
	if region == nil {
		return Action{}
	}
	now := h.now()
	if region.ID == h.lastRegion && now.Sub(h.lastClick) < doubleClickWindow {
		// Reset so a third click starts a new pair.
		h.lastRegion = ""
		h.lastClick = time.Time{}
		return Action{Type: ActionDoubleClick, Region: region}
	}
	h.lastRegion = region.ID
	h.lastClick = now
	return Action{Type: ActionClick, Region: region}
}

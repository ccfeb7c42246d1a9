package dispatch

import (
	"github.com/wilbur182/listexplorer/internal/listing"
)

// Item is one displayed entry and the icon currently applied to it.
type Item struct {
	Entry listing.Entry
	Icon  *Icon // nil while the fallback glyph is shown
}

// HasIcon reports whether an icon for size is applied.
func (it *Item) HasIcon(size int) bool {
	return it.Icon != nil && it.Icon.Size == size
}

// Registry maps source paths to the items displaying them. It belongs to the
// presentation goroutine and is not safe for concurrent use.
type Registry struct {
	items  []*Item
	byPath map[string][]*Item
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string][]*Item)}
}

// Reset replaces every item. Items from the previous listing are dropped, so
// completions that arrive for them later find nothing.
func (r *Registry) Reset(entries []listing.Entry) {
	r.items = make([]*Item, len(entries))
	r.byPath = make(map[string][]*Item, len(entries))
	for i, e := range entries {
		it := &Item{Entry: e}
		r.items[i] = it
		r.byPath[e.Path] = append(r.byPath[e.Path], it)
	}
}

// Lookup returns every item displaying path. A manifest may list a path more
// than once.
func (r *Registry) Lookup(path string) []*Item {
	return r.byPath[path]
}

// Item returns the i-th item in listing order, or nil.
func (r *Registry) Item(i int) *Item {
	if i < 0 || i >= len(r.items) {
		return nil
	}
	return r.items[i]
}

// Items returns the items in listing order. Callers must not modify the
// slice.
func (r *Registry) Items() []*Item { return r.items }

// Len returns the number of items.
func (r *Registry) Len() int { return len(r.items) }

// ClearIcons drops every applied icon whose size differs from keep.
func (r *Registry) ClearIcons(keep int) {
	for _, it := range r.items {
		if it.Icon != nil && it.Icon.Size != keep {
			it.Icon = nil
		}
	}
}

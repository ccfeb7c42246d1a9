// Package scheduler decides which listing entries need a thumbnail at the
// current icon size and queues them.
//
// A Scheduler is driven from the presentation goroutine only. It reads the
// layout synchronously; the only I/O it performs is one stat per visible
// image entry.
package scheduler

import (
	"github.com/wilbur182/listexplorer/internal/listing"
	"github.com/wilbur182/listexplorer/internal/mouse"
	"github.com/wilbur182/listexplorer/internal/thumbkey"
	"github.com/wilbur182/listexplorer/internal/worker"
)

// Layout is the presentation layer's current arrangement of entries.
// ItemRect and Viewport share one coordinate space.
type Layout interface {
	Len() int
	Entry(i int) listing.Entry
	ItemRect(i int) mouse.Rect
	Viewport() mouse.Rect
}

// Store reports artifact existence.
type Store interface {
	Exists(key string) bool
}

// EnqueueFunc hands a request to the work queue. It must not block.
type EnqueueFunc func(worker.Request) bool

// PassStats summarizes one scheduling pass.
type PassStats struct {
	Size     int
	Visible  int   // entries intersecting the viewport
	Images   int   // visible image-like entries
	Enqueued int   // requests queued this pass
	Cached   []int // indices of visible entries whose artifact already exists
}

// Scheduler runs visibility passes and icon-size pre-warming.
type Scheduler struct {
	store   Store
	enqueue EnqueueFunc
	size    int
}

// New creates a Scheduler at the given icon size.
func New(store Store, enqueue EnqueueFunc, size int) *Scheduler {
	return &Scheduler{store: store, enqueue: enqueue, size: size}
}

// Size returns the active icon size.
func (s *Scheduler) Size() int { return s.size }

// SetSize changes the active icon size for later passes.
func (s *Scheduler) SetSize(n int) { s.size = n }

// RunPass enqueues every visible image-like entry that has no artifact at
// the active size. Off-screen entries are never enqueued here.
func (s *Scheduler) RunPass(layout Layout) PassStats {
	st := PassStats{Size: s.size}
	if layout == nil || s.size <= 0 {
		return st
	}
	view := layout.Viewport()
	if view.Empty() {
		return st
	}

	n := layout.Len()
	for i := 0; i < n; i++ {
		if !layout.ItemRect(i).Intersects(view) {
			continue
		}
		st.Visible++
		e := layout.Entry(i)
		if !e.IsImage() {
			continue
		}
		st.Images++
		if s.store.Exists(thumbkey.ForSource(e.Path, s.size)) {
			st.Cached = append(st.Cached, i)
			continue
		}
		if s.enqueue(worker.Request{SourcePath: e.Path, Size: s.size}) {
			st.Enqueued++
		}
	}
	return st
}

// PreWarm enqueues every image-like entry lacking an artifact at size,
// regardless of visibility. It returns the number of requests queued.
func (s *Scheduler) PreWarm(layout Layout, size int) int {
	if layout == nil || size <= 0 {
		return 0
	}
	queued := 0
	n := layout.Len()
	for i := 0; i < n; i++ {
		e := layout.Entry(i)
		if !e.IsImage() || s.store.Exists(thumbkey.ForSource(e.Path, size)) {
			continue
		}
		if s.enqueue(worker.Request{SourcePath: e.Path, Size: size}) {
			queued++
		}
	}
	return queued
}

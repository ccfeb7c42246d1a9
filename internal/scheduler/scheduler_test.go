package scheduler

import (
	"fmt"
	"testing"

	"github.com/wilbur182/listexplorer/internal/listing"
	"github.com/wilbur182/listexplorer/internal/mouse"
	"github.com/wilbur182/listexplorer/internal/thumbkey"
	"github.com/wilbur182/listexplorer/internal/worker"
)

// rowLayout places entry i on row i, one row tall, and shows rows
// [top, top+height).
type rowLayout struct {
	entries     []listing.Entry
	top, height int
}

func (l *rowLayout) Len() int                  { return len(l.entries) }
func (l *rowLayout) Entry(i int) listing.Entry { return l.entries[i] }
func (l *rowLayout) ItemRect(i int) mouse.Rect { return mouse.Rect{X: 0, Y: i, W: 40, H: 1} }
func (l *rowLayout) Viewport() mouse.Rect {
	return mouse.Rect{X: 0, Y: l.top, W: 40, H: l.height}
}

type fakeStore map[string]bool

func (f fakeStore) Exists(key string) bool { return f[key] }

type recorder struct{ reqs []worker.Request }

func (r *recorder) enqueue(req worker.Request) bool {
	r.reqs = append(r.reqs, req)
	return true
}

func newLayout(n int, ext string) *rowLayout {
	l := &rowLayout{height: 10}
	for i := 0; i < n; i++ {
		l.entries = append(l.entries, listing.NewEntry(i, fmt.Sprintf("/pics/img%03d%s", i, ext), ""))
	}
	return l
}

func TestRunPass_OnlyVisibleMissing(t *testing.T) {
	// 1000 image entries, viewport shows 10 of them, one already cached.
	layout := newLayout(1000, ".png")
	layout.top = 500
	store := fakeStore{thumbkey.ForSource("/pics/img503.png", 64): true}
	rec := &recorder{}
	s := New(store, rec.enqueue, 64)

	st := s.RunPass(layout)

	if st.Visible != 10 || st.Images != 10 {
		t.Errorf("Visible=%d Images=%d, want 10, 10", st.Visible, st.Images)
	}
	if st.Enqueued != 9 || len(rec.reqs) != 9 {
		t.Fatalf("Enqueued=%d (recorded %d), want 9", st.Enqueued, len(rec.reqs))
	}
	if len(st.Cached) != 1 || st.Cached[0] != 503 {
		t.Errorf("Cached = %v, want [503]", st.Cached)
	}
	for _, req := range rec.reqs {
		var idx int
		if _, err := fmt.Sscanf(req.SourcePath, "/pics/img%03d.png", &idx); err != nil {
			t.Fatalf("unexpected request path %q", req.SourcePath)
		}
		if idx < 500 || idx >= 510 || idx == 503 {
			t.Errorf("enqueued off-screen or cached entry %d", idx)
		}
		if req.Size != 64 {
			t.Errorf("request size = %d, want 64", req.Size)
		}
	}
}

func TestRunPass_SkipsNonImages(t *testing.T) {
	layout := &rowLayout{height: 10, entries: []listing.Entry{
		listing.NewEntry(0, "/v/clip.mp4", ""),
		listing.NewEntry(1, "/d/readme.txt", ""),
		listing.NewEntry(2, "/p/a.JPG", ""),
	}}
	rec := &recorder{}
	st := New(fakeStore{}, rec.enqueue, 32).RunPass(layout)
	if st.Visible != 3 || st.Images != 1 || len(rec.reqs) != 1 || rec.reqs[0].SourcePath != "/p/a.JPG" {
		t.Errorf("stats = %+v, requests = %+v", st, rec.reqs)
	}
}

func TestRunPass_EmptyViewportOrNoLayout(t *testing.T) {
	rec := &recorder{}
	s := New(fakeStore{}, rec.enqueue, 64)
	layout := newLayout(5, ".png")
	layout.height = 0
	s.RunPass(layout)
	s.RunPass(nil)
	if len(rec.reqs) != 0 {
		t.Errorf("enqueued %d requests, want 0", len(rec.reqs))
	}
}

func TestRunPass_FollowsSize(t *testing.T) {
	layout := newLayout(3, ".png")
	store := fakeStore{}
	for _, e := range layout.entries {
		store[thumbkey.ForSource(e.Path, 64)] = true
	}
	rec := &recorder{}
	s := New(store, rec.enqueue, 64)
	if st := s.RunPass(layout); st.Enqueued != 0 {
		t.Fatalf("Enqueued = %d at a fully cached size", st.Enqueued)
	}
	s.SetSize(96)
	if s.Size() != 96 {
		t.Fatalf("Size() = %d", s.Size())
	}
	if st := s.RunPass(layout); st.Enqueued != 3 {
		t.Errorf("Enqueued = %d after size change, want 3", st.Enqueued)
	}
}

func TestPreWarm_IgnoresVisibility(t *testing.T) {
	layout := newLayout(50, ".gif")
	layout.entries = append(layout.entries, listing.NewEntry(50, "/x/song.mp3", ""))
	store := fakeStore{thumbkey.ForSource("/pics/img010.gif", 128): true}
	rec := &recorder{}
	s := New(store, rec.enqueue, 64)

	if n := s.PreWarm(layout, 128); n != 49 {
		t.Errorf("PreWarm() = %d, want 49", n)
	}
	for _, r := range rec.reqs {
		if r.Size != 128 {
			t.Errorf("prewarm request size = %d, want 128", r.Size)
		}
	}
}

// Package debounce collapses bursts of triggers into one call after a quiet
// period.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is used when New is given a non-positive window.
const DefaultWindow = 150 * time.Millisecond

// Debouncer calls fire once after window has elapsed with no Trigger.
// fire runs on a timer goroutine and must not block for long.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	fire    func()
	timer   *time.Timer
	gen     uint64 // bumped on every Trigger; a timer only fires for its own gen
	stopped bool
}

// New creates a Debouncer.
func New(window time.Duration, fire func()) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window, fire: fire}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.flush(gen) })
}

// flush runs fire unless a newer Trigger or Stop superseded gen. A timer
// that already started when Stop or Trigger was called lands here too.
func (d *Debouncer) flush(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fire()
}

// Pending reports whether a fire is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil && !d.stopped
}

// Window returns the quiet period.
func (d *Debouncer) Window() time.Duration { return d.window }

// Stop cancels any pending fire. Later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Package thumbs wires the thumbnail pipeline together and exposes it to the
// presentation layer.
//
// A Controller owns the store, the work queue, the worker pool, the
// visibility scheduler, the pass debouncer and the result dispatcher.
// Workers run on their own goroutines; everything else is called from the
// bubbletea event loop. Completions and debounced pass requests reach the
// loop through WaitReady and WaitPass, which follow the usual "listen" tea.Cmd
// pattern: the model re-issues them after handling each message.
package thumbs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/listexplorer/internal/debounce"
	"github.com/wilbur182/listexplorer/internal/dispatch"
	"github.com/wilbur182/listexplorer/internal/fdmonitor"
	"github.com/wilbur182/listexplorer/internal/scheduler"
	"github.com/wilbur182/listexplorer/internal/thumbgen"
	"github.com/wilbur182/listexplorer/internal/thumbkey"
	"github.com/wilbur182/listexplorer/internal/thumbstore"
	"github.com/wilbur182/listexplorer/internal/worker"
	"github.com/wilbur182/listexplorer/internal/workqueue"
)

const defaultEventBuffer = 64

// Options configures a Controller.
type Options struct {
	CacheDir string
	Workers  int
	Debounce time.Duration
	IconSize int
	Filter   thumbgen.Filter
	Dedupe   bool

	// EventBuffer sizes the completion channel.
	EventBuffer int
	// Headless drops completion events; used when nothing renders icons.
	Headless bool
	// OnResult observes every processed request from worker goroutines.
	OnResult func(worker.Result)
	// MonitorFDs logs when the process holds too many open files.
	MonitorFDs bool
}

// ReadyMsg is a worker completion delivered to the event loop.
type ReadyMsg worker.Ready

// PassDueMsg asks the event loop to run a visibility pass now.
type PassDueMsg struct{}

// Stats are cumulative worker counters plus the current queue length.
type Stats struct {
	Queued    int
	Hits      int64
	Generated int64
	Failed    int64
}

// Controller is the thumbnail subsystem's public surface.
type Controller struct {
	store    *thumbstore.Store
	queue    *workqueue.Queue[worker.Request]
	pool     *worker.Pool
	sched    *scheduler.Scheduler
	debounce *debounce.Debouncer
	dispatch *dispatch.Dispatcher
	fds      *fdmonitor.Monitor
	logger   *slog.Logger
	onResult func(worker.Result)

	events  chan worker.Ready
	passDue chan struct{}
	closed  chan struct{}

	hits, generated, failed atomic.Int64

	mu        sync.Mutex
	started   bool
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a Controller. Workers do not run until Start.
func New(opts Options, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.IconSize <= 0 {
		return nil, errors.New("thumbs: icon size must be positive")
	}
	store, err := thumbstore.Open(opts.CacheDir)
	if err != nil {
		return nil, err
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}

	c := &Controller{
		store:    store,
		queue:    workqueue.New[worker.Request](),
		dispatch: dispatch.New(store, logger),
		logger:   logger,
		onResult: opts.OnResult,
		events:   make(chan worker.Ready, opts.EventBuffer),
		passDue:  make(chan struct{}, 1),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}

	if opts.MonitorFDs {
		c.fds = fdmonitor.New(store.Dir())
	}

	var events chan<- worker.Ready
	if !opts.Headless {
		events = c.events
	}
	c.pool = worker.New(c.queue, store, thumbgen.Generator{Filter: opts.Filter}, events, worker.Config{
		Workers:  opts.Workers,
		Dedupe:   opts.Dedupe,
		OnResult: c.record,
	}, logger)
	c.sched = scheduler.New(store, c.queue.Enqueue, opts.IconSize)
	c.debounce = debounce.New(opts.Debounce, c.firePass)
	return c, nil
}

// Start launches the worker pool. It is a no-op after the first call.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	ctx, c.cancel = context.WithCancel(ctx)
	go func() {
		defer close(c.done)
		c.pool.Run(ctx)
	}()
	c.logger.Info("thumbnail workers started", "dir", c.store.Dir(), "size", c.sched.Size(), "debounce", c.debounce.Window())
}

// Drain stops accepting work and waits for queued requests to finish.
func (c *Controller) Drain(ctx context.Context) error {
	c.queue.Close()
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return nil
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the debouncer and the workers. Queued requests are abandoned.
// Safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.debounce.Stop()
		c.queue.Close()
		close(c.closed)

		c.mu.Lock()
		started, cancel := c.started, c.cancel
		c.mu.Unlock()
		if started {
			cancel()
			<-c.done
		}
		close(c.events)
	})
}

func (c *Controller) record(r worker.Result) {
	switch {
	case !r.Outcome.Published():
		c.failed.Add(1)
	case r.Outcome == worker.OutcomeHit:
		c.hits.Add(1)
	default:
		c.generated.Add(1)
	}
	if c.fds != nil {
		c.fds.Check(c.logger)
	}
	if c.onResult != nil {
		c.onResult(r)
	}
}

func (c *Controller) firePass() {
	select {
	case c.passDue <- struct{}{}:
	default:
	}
}

// RequestVisiblePass schedules a debounced visibility pass. The pass itself
// is announced with a PassDueMsg; the model then calls RunPass.
func (c *Controller) RequestVisiblePass() {
	c.debounce.Trigger()
}

// PassPending reports whether a requested pass has not fired yet.
func (c *Controller) PassPending() bool {
	return c.debounce.Pending()
}

// RunPass enqueues visible entries missing an artifact at the active size.
func (c *Controller) RunPass(layout scheduler.Layout) scheduler.PassStats {
	st := c.sched.RunPass(layout)
	if st.Enqueued > 0 {
		c.logger.Debug("visibility pass", "size", st.Size, "visible", st.Visible, "enqueued", st.Enqueued)
	}
	return st
}

// OnIconSizeChanged makes newSize active, queues every image-like entry
// lacking an artifact at that size and requests a pass. It returns the
// number of pre-warm requests.
func (c *Controller) OnIconSizeChanged(newSize int, layout scheduler.Layout) int {
	if newSize <= 0 || newSize == c.sched.Size() {
		return 0
	}
	c.sched.SetSize(newSize)
	n := c.sched.PreWarm(layout, newSize)
	c.logger.Debug("icon size changed", "size", newSize, "prewarm", n)
	c.RequestVisiblePass()
	return n
}

// HasThumbnail reports whether an artifact exists. It stats one file and
// decodes nothing.
func (c *Controller) HasThumbnail(sourcePath string, size int) bool {
	return c.store.Exists(thumbkey.ForSource(sourcePath, size))
}

// Enqueue queues one request directly.
func (c *Controller) Enqueue(sourcePath string, size int) bool {
	return c.queue.Enqueue(worker.Request{SourcePath: sourcePath, Size: size})
}

// Size returns the active icon size.
func (c *Controller) Size() int { return c.sched.Size() }

// Store returns the underlying artifact store.
func (c *Controller) Store() *thumbstore.Store { return c.store }

// Dispatcher returns the result dispatcher.
func (c *Controller) Dispatcher() *dispatch.Dispatcher { return c.dispatch }

// Events returns the completion stream. It is closed by Close.
func (c *Controller) Events() <-chan worker.Ready { return c.events }

// Stats returns a snapshot of the counters.
func (c *Controller) Stats() Stats {
	return Stats{
		Queued:    c.queue.Len(),
		Hits:      c.hits.Load(),
		Generated: c.generated.Load(),
		Failed:    c.failed.Load(),
	}
}

// WaitReady returns a command that blocks for the next completion.
func (c *Controller) WaitReady() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-c.events
		if !ok {
			return nil
		}
		return ReadyMsg(ev)
	}
}

// WaitPass returns a command that blocks until a debounced pass is due.
func (c *Controller) WaitPass() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-c.passDue:
			return PassDueMsg{}
		case <-c.closed:
			return nil
		}
	}
}

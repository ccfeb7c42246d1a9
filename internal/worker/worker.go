// Package worker drains thumbnail requests from a shared queue, consults the
// store, generates on miss and publishes completion events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wilbur182/listexplorer/internal/pathnorm"
	"github.com/wilbur182/listexplorer/internal/thumbkey"
	"github.com/wilbur182/listexplorer/internal/workqueue"
)

// Request is one unit of thumbnail work.
type Request struct {
	SourcePath string
	Size       int
}

// Ready announces that the artifact for (SourcePath, Size) is in the store.
type Ready struct {
	SourcePath string
	Size       int
	Key        string
}

// Outcome classifies how a request ended.
type Outcome int

const (
	OutcomeHit Outcome = iota
	OutcomeGenerated
	OutcomeDecodeFailed
	OutcomeWriteFailed
	OutcomePanicked
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeGenerated:
		return "generated"
	case OutcomeDecodeFailed:
		return "decode-failed"
	case OutcomeWriteFailed:
		return "write-failed"
	case OutcomePanicked:
		return "panicked"
	case OutcomeInvalid:
		return "invalid"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Published reports whether a Ready event follows this outcome.
func (o Outcome) Published() bool {
	return o == OutcomeHit || o == OutcomeGenerated
}

// Result describes a processed request.
type Result struct {
	Request  Request
	Key      string
	Outcome  Outcome
	Err      error
	Duration time.Duration
	Worker   int
}

// Store is the subset of the thumbnail store a worker needs.
type Store interface {
	Exists(key string) bool
	Write(key string, data []byte) error
}

// Generator turns a source file into encoded thumbnail bytes.
type Generator interface {
	Generate(srcPath string, size int) ([]byte, error)
}

// Config tunes a Pool.
type Config struct {
	Workers int
	// Dedupe collapses concurrent generations of one key into a single
	// decode. Every request still publishes its own Ready.
	Dedupe bool
	// OnResult, if set, is called from the worker goroutine after every
	// request. It must be safe for concurrent use.
	OnResult func(Result)
}

// Pool runs Config.Workers loops over one queue.
type Pool struct {
	queue  *workqueue.Queue[Request]
	store  Store
	gen    Generator
	events chan<- Ready
	cfg    Config
	logger *slog.Logger
	flight singleflight.Group
}

// New creates a pool. events may be nil when completions are not needed.
func New(q *workqueue.Queue[Request], store Store, gen Generator, events chan<- Ready, cfg Config, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pool{
		queue:  q,
		store:  store,
		gen:    gen,
		events: events,
		cfg:    cfg,
		logger: logger,
	}
}

// Run starts the worker loops and blocks until ctx is done or the queue is
// closed and drained.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) loop(ctx context.Context, id int) {
	p.logger.Debug("thumbnail worker started", "worker", id)
	defer p.logger.Debug("thumbnail worker stopped", "worker", id)

	for {
		req, err := p.queue.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, workqueue.ErrClosed) && !errors.Is(err, context.Canceled) {
				p.logger.Warn("dequeue failed", "worker", id, "error", err)
			}
			return
		}
		p.process(ctx, id, req)
	}
}

func (p *Pool) process(ctx context.Context, id int, req Request) (res Result) {
	start := time.Now()
	res = Result{Request: req, Worker: id}

	defer func() {
		if rec := recover(); rec != nil {
			res.Outcome = OutcomePanicked
			res.Err = fmt.Errorf("panic: %v", rec)
			p.logger.Error("thumbnail request panic", "worker", id, "path", req.SourcePath, "size", req.Size, "error", rec)
		}
		res.Duration = time.Since(start)
		if p.cfg.OnResult != nil {
			p.cfg.OnResult(res)
		}
	}()

	if req.Size <= 0 || req.SourcePath == "" {
		res.Outcome = OutcomeInvalid
		res.Err = fmt.Errorf("invalid request %q at size %d", req.SourcePath, req.Size)
		p.logger.Warn("skipping invalid thumbnail request", "path", req.SourcePath, "size", req.Size)
		return res
	}

	src := pathnorm.Normalize(req.SourcePath)
	res.Key = thumbkey.Key(src, req.Size)

	if p.store.Exists(res.Key) {
		res.Outcome = OutcomeHit
	} else {
		res.Outcome, res.Err = p.generate(src, req.Size, res.Key)
	}

	if res.Err != nil {
		p.logger.Warn("thumbnail skipped",
			"worker", id, "path", src, "size", req.Size, "outcome", res.Outcome, "error", res.Err)
		return res
	}

	p.logger.Debug("thumbnail ready", "worker", id, "path", src, "size", req.Size, "key", res.Key, "outcome", res.Outcome)
	p.publish(ctx, Ready{SourcePath: req.SourcePath, Size: req.Size, Key: res.Key})
	return res
}

func (p *Pool) generate(src string, size int, key string) (Outcome, error) {
	if !p.cfg.Dedupe {
		return p.generateOnce(src, size, key)
	}
	v, err, _ := p.flight.Do(key, func() (any, error) {
		// A previous flight for this key may have finished between the
		// caller's Exists check and joining here.
		if p.store.Exists(key) {
			return OutcomeHit, nil
		}
		return p.generateOnce(src, size, key)
	})
	return v.(Outcome), err
}

func (p *Pool) generateOnce(src string, size int, key string) (Outcome, error) {
	data, err := p.gen.Generate(src, size)
	if err != nil {
		return OutcomeDecodeFailed, err
	}
	if err := p.store.Write(key, data); err != nil {
		return OutcomeWriteFailed, err
	}
	return OutcomeGenerated, nil
}

// publish blocks until the event is received or ctx is done.
func (p *Pool) publish(ctx context.Context, ev Ready) {
	if p.events == nil {
		return
	}
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}

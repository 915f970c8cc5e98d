// Package dispatch runs fire-and-forget side effects (push, realtime, email)
// off the request path. Task failures are logged and never reach the caller.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Task func(ctx context.Context) error

// Runner accepts detached tasks. Go must not block the caller.
type Runner interface {
	Go(name string, task Task) bool
}

type job struct {
	name     string
	task     Task
	queuedAt time.Time
}

// Dispatcher is a bounded queue drained by a fixed set of workers.
type Dispatcher struct {
	queue   chan job
	timeout time.Duration
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

func New(workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		queue:   make(chan job, queueSize),
		timeout: timeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Go enqueues task. It returns false when the queue is full or the
// dispatcher is stopped; the task is dropped in that case.
func (d *Dispatcher) Go(name string, task Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.Warn("dispatch: task dropped after shutdown", "task", name)
		return false
	}
	select {
	case d.queue <- job{name: name, task: task, queuedAt: time.Now()}:
		return true
	default:
		slog.Warn("dispatch: queue full, task dropped", "task", name)
		return false
	}
}

// Stop refuses new tasks and waits for queued ones until ctx is done.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := safeRun(ctx, j.task); err != nil {
		slog.Error("dispatch: task failed",
			"action", j.name,
			"error", err,
			"latency_ms", float64(time.Since(start).Milliseconds()),
			"queued_ms", start.Sub(j.queuedAt).Milliseconds(),
		)
	}
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}

// Inline runs tasks synchronously on the caller's goroutine, logging failures
// the same way. Used by tests and tools that need deterministic side effects.
type Inline struct{}

func (Inline) Go(name string, task Task) bool {
	if err := safeRun(context.Background(), task); err != nil {
		slog.Error("dispatch: task failed", "action", name, "error", err)
	}
	return true
}

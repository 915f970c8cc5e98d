package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherRunsTasks(t *testing.T) {
	d := New(2, 10, time.Second)
	var count int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		ok := d.Go("count", func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt32(&count, 1)
			return nil
		})
		if !ok {
			t.Fatal("expected task to be accepted")
		}
	}
	wg.Wait()
	if got := atomic.LoadInt32(&count); got != 5 {
		t.Fatalf("expected 5 runs, got %d", got)
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := New(1, 1, time.Second)
	release := make(chan struct{})
	started := make(chan struct{})
	d.Go("block", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started
	if !d.Go("queued", func(ctx context.Context) error { return nil }) {
		t.Fatal("expected second task to fit in the queue")
	}
	if d.Go("overflow", func(ctx context.Context) error { return nil }) {
		t.Fatal("expected overflow task to be dropped")
	}
	close(release)
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestDispatcherSurvivesFailuresAndPanics(t *testing.T) {
	d := New(1, 4, time.Second)
	done := make(chan struct{})
	d.Go("fail", func(ctx context.Context) error { return errors.New("push provider down") })
	d.Go("panic", func(ctx context.Context) error { panic("boom") })
	d.Go("after", func(ctx context.Context) error {
		close(done)
		return nil
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected worker to keep running after failures")
	}
	_ = d.Stop(context.Background())
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	d := New(1, 4, time.Second)
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if d.Go("late", func(ctx context.Context) error { return nil }) {
		t.Fatal("expected task to be rejected after stop")
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	d := New(1, 1, 20*time.Millisecond)
	result := make(chan error, 1)
	d.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		result <- ctx.Err()
		return ctx.Err()
	})
	select {
	case err := <-result:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected task context to time out")
	}
	_ = d.Stop(context.Background())
}

func TestInlineRunsSynchronously(t *testing.T) {
	ran := false
	Inline{}.Go("inline", func(ctx context.Context) error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("expected inline task to run before Go returns")
	}
}

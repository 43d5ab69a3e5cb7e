package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingPass struct {
	mu    sync.Mutex
	calls int
	next  func(call int) Result
	block chan struct{}
}

func (c *countingPass) Process(context.Context) Result {
	c.mu.Lock()
	c.calls++
	n := c.calls
	c.mu.Unlock()
	if c.block != nil {
		<-c.block
	}
	if c.next != nil {
		return c.next(n)
	}
	return Result{}
}

func (c *countingPass) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestSchedulerTriggerRunsPass(t *testing.T) {
	pass := &countingPass{}
	s := NewScheduler(pass, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Trigger()
	waitCtx, done := context.WithTimeout(ctx, 2*time.Second)
	defer done()
	if err := s.WaitIdle(waitCtx); err != nil {
		t.Fatalf("wait idle: %v", err)
	}
	if pass.count() != 1 {
		t.Fatalf("passes = %d, want 1", pass.count())
	}
	if s.Busy() {
		t.Fatal("scheduler busy after WaitIdle")
	}
}

func TestSchedulerCollapsesTriggers(t *testing.T) {
	pass := &countingPass{block: make(chan struct{})}
	s := NewScheduler(pass, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Trigger()
	deadline := time.Now().Add(2 * time.Second)
	for pass.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first pass never started")
		}
		time.Sleep(time.Millisecond)
	}
	for i := 0; i < 10; i++ {
		s.Trigger()
	}
	close(pass.block)

	waitCtx, done := context.WithTimeout(ctx, 2*time.Second)
	defer done()
	if err := s.WaitIdle(waitCtx); err != nil {
		t.Fatalf("wait idle: %v", err)
	}
	if got := pass.count(); got != 2 {
		t.Fatalf("passes = %d, want 2", got)
	}
}

func TestSchedulerRearmsForBackoff(t *testing.T) {
	pass := &countingPass{next: func(call int) Result {
		if call == 1 {
			return Result{Retried: 1, NextAttempt: time.Now().Add(20 * time.Millisecond)}
		}
		return Result{Confirmed: 1}
	}}
	s := NewScheduler(pass, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Trigger()
	deadline := time.Now().Add(2 * time.Second)
	for pass.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("retry pass never ran, passes = %d", pass.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
	waitCtx, done := context.WithTimeout(ctx, 2*time.Second)
	defer done()
	if err := s.WaitIdle(waitCtx); err != nil {
		t.Fatalf("wait idle: %v", err)
	}
	if got := s.LastResult(); got.Confirmed != 1 {
		t.Fatalf("last result = %+v", got)
	}
}

func TestSchedulerWaitIdleHonoursContext(t *testing.T) {
	pass := &countingPass{block: make(chan struct{})}
	defer close(pass.block)
	s := NewScheduler(pass, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	s.Trigger()

	waitCtx, done := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer done()
	if err := s.WaitIdle(waitCtx); err == nil {
		t.Fatal("expected WaitIdle to give up while a pass is blocked")
	}
}

func TestSchedulerWaitIdleAfterStop(t *testing.T) {
	s := NewScheduler(&countingPass{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	s.Trigger()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := s.WaitIdle(waitCtx); !errors.Is(err, ErrStopped) {
		t.Fatalf("WaitIdle after stop = %v, want ErrStopped", err)
	}
}

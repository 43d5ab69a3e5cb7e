package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/apptcal/pkg/logger"
)

// ErrStopped is returned by WaitIdle once Run has returned.
var ErrStopped = errors.New("syncer: scheduler stopped")

// Pass runs one sync pass. *Processor satisfies it.
type Pass interface {
	Process(ctx context.Context) Result
}

// Scheduler owns the goroutine that runs sync passes. Mutations hand work to
// it with Trigger and never block on the remote themselves.
type Scheduler struct {
	pass Pass
	log  *zap.SugaredLogger
	kick chan struct{}

	mu      sync.Mutex
	queued  bool
	running bool
	stopped bool
	waiters []chan struct{}
	retry   *time.Timer
	retryAt time.Time
	last    Result
}

// NewScheduler wraps pass.
func NewScheduler(pass Pass, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		pass: pass,
		log:  logger.Or(log),
		kick: make(chan struct{}, 1),
	}
}

// Trigger requests a pass. It never blocks; triggers that arrive while one
// is already queued collapse into it.
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	s.queued = true
	s.mu.Unlock()
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run processes triggers until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.stopped = false
	s.mu.Unlock()
	defer s.stopRetry()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.queued = false
			s.stopped = true
			s.notifyLocked()
			s.mu.Unlock()
			return
		case <-s.kick:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	s.queued = false
	s.running = true
	s.mu.Unlock()

	res := s.pass.Process(ctx)

	s.mu.Lock()
	s.running = false
	s.last = res
	if !res.NextAttempt.IsZero() {
		s.armRetryLocked(res.NextAttempt)
	}
	if !s.queued {
		s.notifyLocked()
	}
	s.mu.Unlock()
}

// armRetryLocked schedules a trigger for when the earliest gated operation is
// due. A later request never pushes an earlier one back.
func (s *Scheduler) armRetryLocked(at time.Time) {
	if s.retry != nil && s.retryAt.After(time.Now()) && !at.Before(s.retryAt) {
		return
	}
	if s.retry != nil {
		s.retry.Stop()
	}
	after := time.Until(at)
	if after < 0 {
		after = 0
	}
	s.retry = time.AfterFunc(after, s.Trigger)
	s.retryAt = at
	s.log.Debugw("retry scheduled", "after", after)
}

func (s *Scheduler) stopRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
		s.retryAt = time.Time{}
	}
}

func (s *Scheduler) notifyLocked() {
	for _, w := range s.waiters {
		close(w)
	}
	s.waiters = nil
}

// Busy reports whether a pass is running or queued.
func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running || s.queued
}

// LastResult returns the outcome of the most recent pass.
func (s *Scheduler) LastResult() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// WaitIdle blocks until no pass is running or queued. Gated retries that
// are waiting on their timer do not count as busy. Once Run has returned it
// fails with ErrStopped instead of waiting for a pass that will never come.
func (s *Scheduler) WaitIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return ErrStopped
		}
		if !s.running && !s.queued {
			s.mu.Unlock()
			return nil
		}
		w := make(chan struct{})
		s.waiters = append(s.waiters, w)
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w:
		}
	}
}

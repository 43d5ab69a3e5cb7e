// Package syncer drains the queue of local mutations against the remote,
// one pass at a time.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/logger"
)

// Processor states.
const (
	StateIdle    = "idle"
	StateSyncing = "syncing"

	eventStart  = "start"
	eventFinish = "finish"
)

// Reasons a pass did nothing.
const (
	SkipOffline = "offline"
	SkipBusy    = "busy"
	SkipEmpty   = "empty"
)

// Ledger owns the queue and the appointment collection the processor works
// on. Every method must be safe for concurrent use with local mutations.
type Ledger interface {
	Online() bool
	// Compact rewrites the live queue with fn and returns how many
	// operations it removed.
	Compact(fn func([]appointment.SyncOperation) []appointment.SyncOperation) int
	// Pending returns a copy of the live queue in timestamp order.
	Pending() []appointment.SyncOperation
	// Confirm drops op from the queue and records the appointment as synced.
	Confirm(op appointment.SyncOperation)
	// Retry bumps op's retry count and gates it until next.
	Retry(op appointment.SyncOperation, next time.Time)
	// Abandon drops op and marks its appointment failed.
	Abandon(op appointment.SyncOperation)
	SetSyncing(syncing bool)
	// Persist writes the queue and the collection through to storage.
	Persist()
}

// Config bounds a pass.
type Config struct {
	AttemptTimeout time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		AttemptTimeout: 5 * time.Second,
		MaxRetries:     5,
		BackoffInitial: time.Second,
		BackoffMax:     time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = d.AttemptTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.BackoffInitial <= 0 {
		c.BackoffInitial = d.BackoffInitial
	}
	if c.BackoffMax < c.BackoffInitial {
		c.BackoffMax = c.BackoffInitial
	}
	return c
}

// Result summarises one pass.
type Result struct {
	Skipped   string
	Coalesced int
	Attempted int
	Confirmed int
	Retried   int
	Abandoned int
	Deferred  int
	// NextAttempt is the earliest time a gated operation becomes due. Zero
	// when nothing is waiting on backoff.
	NextAttempt time.Time
}

func (r *Result) noteNext(at time.Time) {
	if r.NextAttempt.IsZero() || at.Before(r.NextAttempt) {
		r.NextAttempt = at
	}
}

// Processor confirms queued operations in timestamp order. Only one pass runs
// at a time; a call while a pass is in flight returns immediately.
type Processor struct {
	ledger  Ledger
	remote  Remote
	cfg     Config
	log     *zap.SugaredLogger
	machine *fsm.FSM
	now     func() time.Time
}

// NewProcessor builds an idle processor.
func NewProcessor(ledger Ledger, remote Remote, cfg Config, log *zap.SugaredLogger) *Processor {
	if remote == nil {
		remote = Simulated{Delay: DefaultDelay}
	}
	return &Processor{
		ledger: ledger,
		remote: remote,
		cfg:    cfg.withDefaults(),
		log:    logger.Or(log),
		machine: fsm.NewFSM(
			StateIdle,
			fsm.Events{
				{Name: eventStart, Src: []string{StateIdle}, Dst: StateSyncing},
				{Name: eventFinish, Src: []string{StateSyncing}, Dst: StateIdle},
			},
			fsm.Callbacks{},
		),
		now: time.Now,
	}
}

// State returns StateIdle or StateSyncing.
func (p *Processor) State() string {
	return p.machine.Current()
}

// Process runs one pass over the queue.
func (p *Processor) Process(ctx context.Context) Result {
	if !p.ledger.Online() {
		return Result{Skipped: SkipOffline}
	}
	if err := p.machine.Event(ctx, eventStart); err != nil {
		p.log.Debugw("sync pass already running", "error", err)
		return Result{Skipped: SkipBusy}
	}
	defer func() {
		if err := p.machine.Event(context.Background(), eventFinish); err != nil {
			p.log.Warnw("failed to leave syncing state", "error", err)
		}
	}()

	var res Result
	res.Coalesced = p.ledger.Compact(Coalesce)
	ops := p.ledger.Pending()
	if len(ops) == 0 {
		if res.Coalesced > 0 {
			p.ledger.Persist()
		}
		res.Skipped = SkipEmpty
		return res
	}

	p.ledger.SetSyncing(true)
	defer p.ledger.SetSyncing(false)

	changed := res.Coalesced > 0
	for _, op := range ops {
		if ctx.Err() != nil || !p.ledger.Online() {
			break
		}
		if !op.Due(p.now()) {
			res.Deferred++
			res.noteNext(op.NextAttemptAt)
			continue
		}

		res.Attempted++
		changed = true
		err := p.attempt(ctx, op)
		if err == nil {
			p.ledger.Confirm(op)
			res.Confirmed++
			continue
		}

		retries := op.RetryCount + 1
		if retries > p.cfg.MaxRetries {
			p.log.Warnw("abandoning sync operation", "op", op.ID, "appointment", op.AppointmentID, "type", op.Type, "retries", op.RetryCount, "error", err)
			p.ledger.Abandon(op)
			res.Abandoned++
			continue
		}
		next := p.now().Add(p.delay(retries))
		p.log.Infow("sync operation failed, will retry", "op", op.ID, "appointment", op.AppointmentID, "retry", retries, "next", next, "error", err)
		p.ledger.Retry(op, next)
		res.Retried++
		res.noteNext(next)
	}

	if changed {
		p.ledger.Persist()
	}
	p.log.Debugw("sync pass finished", "confirmed", res.Confirmed, "retried", res.Retried, "abandoned", res.Abandoned, "deferred", res.Deferred)
	return res
}

// attempt confirms op with the remote and gives up after AttemptTimeout even
// when the remote ignores ctx. A remote that never returns leaks its goroutine
// but no longer holds the pass.
func (p *Processor) attempt(ctx context.Context, op appointment.SyncOperation) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("syncer: remote panicked on %s: %v", op.ID, r)
			}
		}()
		done <- p.remote.Confirm(ctx, op)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("syncer: confirm %s: %w", op.ID, ctx.Err())
	}
}

// delay is the backoff before the given retry, starting at BackoffInitial and
// doubling up to BackoffMax.
func (p *Processor) delay(retry int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.BackoffInitial
	b.MaxInterval = p.cfg.BackoffMax
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	d := b.InitialInterval
	for i := 0; i < retry; i++ {
		d = b.NextBackOff()
	}
	return d
}

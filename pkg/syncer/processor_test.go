package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/apptcal/pkg/appointment"
)

type fakeLedger struct {
	mu        sync.Mutex
	online    bool
	queue     []appointment.SyncOperation
	confirmed []string
	abandoned []string
	syncing   []bool
	persisted int
}

func newLedger(ops ...appointment.SyncOperation) *fakeLedger {
	return &fakeLedger{online: true, queue: ops}
}

func (l *fakeLedger) Online() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.online
}

func (l *fakeLedger) setOnline(v bool) {
	l.mu.Lock()
	l.online = v
	l.mu.Unlock()
}

func (l *fakeLedger) Compact(fn func([]appointment.SyncOperation) []appointment.SyncOperation) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	before := len(l.queue)
	l.queue = fn(l.queue)
	return before - len(l.queue)
}

func (l *fakeLedger) Pending() []appointment.SyncOperation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return appointment.CloneOperations(l.queue)
}

func (l *fakeLedger) remove(id string) {
	for i, o := range l.queue {
		if o.ID == id {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			return
		}
	}
}

func (l *fakeLedger) Confirm(op appointment.SyncOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remove(op.ID)
	l.confirmed = append(l.confirmed, op.ID)
}

func (l *fakeLedger) Retry(op appointment.SyncOperation, next time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.queue {
		if l.queue[i].ID == op.ID {
			l.queue[i].RetryCount = op.RetryCount + 1
			l.queue[i].NextAttemptAt = next
		}
	}
}

func (l *fakeLedger) Abandon(op appointment.SyncOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remove(op.ID)
	l.abandoned = append(l.abandoned, op.ID)
}

func (l *fakeLedger) SetSyncing(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.syncing = append(l.syncing, v)
}

func (l *fakeLedger) Persist() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.persisted++
}

func (l *fakeLedger) snapshot() ([]appointment.SyncOperation, []string, []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return appointment.CloneOperations(l.queue), append([]string(nil), l.confirmed...), append([]string(nil), l.abandoned...)
}

var instant = RemoteFunc(func(context.Context, appointment.SyncOperation) error { return nil })

func TestProcessSkipsWhenOffline(t *testing.T) {
	l := newLedger(op("1", appointment.OpCreate, "a", 1, "x"))
	l.online = false
	called := false
	p := NewProcessor(l, RemoteFunc(func(context.Context, appointment.SyncOperation) error {
		called = true
		return nil
	}), Config{}, nil)

	res := p.Process(context.Background())
	if res.Skipped != SkipOffline {
		t.Fatalf("skipped = %q, want %q", res.Skipped, SkipOffline)
	}
	if called {
		t.Fatal("remote called while offline")
	}
	if q, _, _ := l.snapshot(); len(q) != 1 {
		t.Fatalf("queue changed while offline: %+v", q)
	}
}

func TestProcessSkipsEmptyQueue(t *testing.T) {
	l := newLedger()
	p := NewProcessor(l, instant, Config{}, nil)
	res := p.Process(context.Background())
	if res.Skipped != SkipEmpty {
		t.Fatalf("skipped = %q, want %q", res.Skipped, SkipEmpty)
	}
	if l.persisted != 0 {
		t.Fatalf("persisted %d times for an empty queue", l.persisted)
	}
	if len(l.syncing) != 0 {
		t.Fatalf("syncing flag toggled for an empty queue: %v", l.syncing)
	}
}

func TestProcessConfirmsInTimestampOrder(t *testing.T) {
	l := newLedger(
		op("b", appointment.OpCreate, "apt-b", 20, "b"),
		op("a", appointment.OpCreate, "apt-a", 10, "a"),
		op("c", appointment.OpDelete, "apt-c", 30, ""),
	)
	var seen []string
	p := NewProcessor(l, RemoteFunc(func(_ context.Context, o appointment.SyncOperation) error {
		seen = append(seen, o.ID)
		return nil
	}), Config{}, nil)

	// The fake hands back the queue unsorted; Coalesce restores order.
	res := p.Process(context.Background())
	if res.Confirmed != 3 || res.Attempted != 3 {
		t.Fatalf("result = %+v", res)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("attempt order = %v, want %v", seen, want)
		}
	}
	q, confirmed, _ := l.snapshot()
	if len(q) != 0 || len(confirmed) != 3 {
		t.Fatalf("queue = %+v confirmed = %v", q, confirmed)
	}
	if l.persisted != 1 {
		t.Fatalf("persisted = %d, want 1", l.persisted)
	}
	if len(l.syncing) != 2 || !l.syncing[0] || l.syncing[1] {
		t.Fatalf("syncing transitions = %v", l.syncing)
	}
	if p.State() != StateIdle {
		t.Fatalf("state = %s after pass", p.State())
	}
}

func TestProcessCoalescesBeforeSending(t *testing.T) {
	l := newLedger(
		op("1", appointment.OpCreate, "a", 1, "x"),
		op("2", appointment.OpUpdate, "a", 2, "y"),
	)
	var sent []appointment.SyncOperation
	p := NewProcessor(l, RemoteFunc(func(_ context.Context, o appointment.SyncOperation) error {
		sent = append(sent, o)
		return nil
	}), Config{}, nil)

	res := p.Process(context.Background())
	if res.Coalesced != 1 {
		t.Fatalf("coalesced = %d, want 1", res.Coalesced)
	}
	if len(sent) != 1 || sent[0].Type != appointment.OpCreate || sent[0].Data.Title != "y" {
		t.Fatalf("sent = %+v", sent)
	}
}

func TestProcessRetriesWithBackoffThenAbandons(t *testing.T) {
	l := newLedger(op("1", appointment.OpCreate, "a", 1, "x"))
	boom := errors.New("boom")
	calls := 0
	p := NewProcessor(l, RemoteFunc(func(context.Context, appointment.SyncOperation) error {
		calls++
		return boom
	}), Config{MaxRetries: 2, BackoffInitial: time.Second, BackoffMax: time.Minute}, nil)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	res := p.Process(context.Background())
	if res.Retried != 1 {
		t.Fatalf("first pass = %+v", res)
	}
	q, _, _ := l.snapshot()
	if len(q) != 1 || q[0].RetryCount != 1 {
		t.Fatalf("queue after first failure = %+v", q)
	}
	first := q[0].NextAttemptAt.Sub(now)
	if first < time.Second || first > time.Second+time.Millisecond {
		t.Fatalf("first backoff = %v, want about 1s", first)
	}
	if !res.NextAttempt.Equal(q[0].NextAttemptAt) {
		t.Fatalf("next attempt = %v, want %v", res.NextAttempt, q[0].NextAttemptAt)
	}

	// Not due yet.
	res = p.Process(context.Background())
	if res.Deferred != 1 || res.Attempted != 0 || calls != 1 {
		t.Fatalf("gated pass = %+v calls = %d", res, calls)
	}

	now = now.Add(first)
	res = p.Process(context.Background())
	if res.Retried != 1 {
		t.Fatalf("second attempt = %+v", res)
	}
	q, _, _ = l.snapshot()
	second := q[0].NextAttemptAt.Sub(now)
	if second < 2*time.Second || second > 2*time.Second+time.Millisecond {
		t.Fatalf("second backoff = %v, want about 2s", second)
	}

	now = now.Add(second)
	res = p.Process(context.Background())
	if res.Abandoned != 1 {
		t.Fatalf("third attempt = %+v", res)
	}
	q, confirmed, abandoned := l.snapshot()
	if len(q) != 0 || len(confirmed) != 0 || len(abandoned) != 1 || abandoned[0] != "1" {
		t.Fatalf("queue = %+v confirmed = %v abandoned = %v", q, confirmed, abandoned)
	}
	if calls != 3 {
		t.Fatalf("remote calls = %d, want 3", calls)
	}
}

func TestProcessBackoffIsCapped(t *testing.T) {
	p := NewProcessor(newLedger(), instant, Config{BackoffInitial: time.Second, BackoffMax: 4 * time.Second}, nil)
	if d := p.delay(10); d > 4*time.Second+time.Millisecond {
		t.Fatalf("delay(10) = %v, want at most 4s", d)
	}
}

func TestProcessAttemptTimeout(t *testing.T) {
	l := newLedger(op("1", appointment.OpCreate, "a", 1, "x"))
	p := NewProcessor(l, RemoteFunc(func(ctx context.Context, _ appointment.SyncOperation) error {
		<-ctx.Done()
		return ctx.Err()
	}), Config{AttemptTimeout: 20 * time.Millisecond}, nil)

	done := make(chan Result, 1)
	go func() { done <- p.Process(context.Background()) }()

	select {
	case res := <-done:
		if res.Retried != 1 {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("attempt did not time out")
	}
}

func TestProcessAttemptTimeoutIgnoredByRemote(t *testing.T) {
	l := newLedger(op("1", appointment.OpCreate, "a", 1, "x"))
	block := make(chan struct{})
	defer close(block)
	p := NewProcessor(l, RemoteFunc(func(context.Context, appointment.SyncOperation) error {
		<-block
		return nil
	}), Config{AttemptTimeout: 50 * time.Millisecond}, nil)

	done := make(chan Result, 1)
	go func() { done <- p.Process(context.Background()) }()

	select {
	case res := <-done:
		if res.Retried != 1 || res.Confirmed != 0 {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pass still running after the attempt timeout, state = %s", p.State())
	}
	if p.State() != StateIdle {
		t.Fatalf("state = %s, want %s", p.State(), StateIdle)
	}
	queue, confirmed, _ := l.snapshot()
	if len(confirmed) != 0 || len(queue) != 1 || queue[0].RetryCount != 1 {
		t.Fatalf("queue = %+v, confirmed = %v", queue, confirmed)
	}
}

func TestProcessRecoversRemotePanic(t *testing.T) {
	l := newLedger(op("1", appointment.OpCreate, "a", 1, "x"))
	p := NewProcessor(l, RemoteFunc(func(context.Context, appointment.SyncOperation) error {
		panic("remote exploded")
	}), Config{}, nil)

	res := p.Process(context.Background())
	if res.Retried != 1 {
		t.Fatalf("result = %+v", res)
	}
	if p.State() != StateIdle {
		t.Fatalf("state = %s after panic", p.State())
	}
}

func TestProcessIsExclusive(t *testing.T) {
	l := newLedger(op("1", appointment.OpCreate, "a", 1, "x"))
	started := make(chan struct{})
	release := make(chan struct{})
	p := NewProcessor(l, RemoteFunc(func(context.Context, appointment.SyncOperation) error {
		close(started)
		<-release
		return nil
	}), Config{}, nil)

	done := make(chan Result, 1)
	go func() { done <- p.Process(context.Background()) }()
	<-started

	if p.State() != StateSyncing {
		t.Fatalf("state = %s while remote is busy", p.State())
	}
	if res := p.Process(context.Background()); res.Skipped != SkipBusy {
		t.Fatalf("overlapping pass = %+v", res)
	}
	close(release)

	res := <-done
	if res.Confirmed != 1 {
		t.Fatalf("first pass = %+v", res)
	}
}

func TestProcessStopsWhenConnectivityDrops(t *testing.T) {
	l := newLedger(
		op("1", appointment.OpCreate, "a", 1, "x"),
		op("2", appointment.OpCreate, "b", 2, "y"),
	)
	p := NewProcessor(l, RemoteFunc(func(context.Context, appointment.SyncOperation) error {
		l.setOnline(false)
		return nil
	}), Config{}, nil)

	res := p.Process(context.Background())
	if res.Attempted != 1 || res.Confirmed != 1 {
		t.Fatalf("result = %+v", res)
	}
	q, _, _ := l.snapshot()
	if len(q) != 1 || q[0].ID != "2" {
		t.Fatalf("remaining queue = %+v", q)
	}
}

func TestSimulatedRemote(t *testing.T) {
	o := op("1", appointment.OpCreate, "a", 1, "x")
	if err := (Simulated{}).Confirm(context.Background(), o); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	reject := Simulated{Fail: func(appointment.SyncOperation) error { return errors.New("nope") }}
	if err := reject.Confirm(context.Background(), o); !errors.Is(err, ErrRemoteRejected) {
		t.Fatalf("err = %v, want ErrRemoteRejected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (Simulated{Delay: time.Hour}).Confirm(ctx, o); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

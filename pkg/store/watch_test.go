package store

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/apptcal/pkg/appointment"
)

func TestPersistenceWatchEmitsQueueChanges(t *testing.T) {
	p, err := Open(Path(t.TempDir()), nil)
	if err != nil {
		t.Fatalf("open persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)

	p.SaveQueue([]appointment.SyncOperation{{ID: "1", Type: appointment.OpCreate, AppointmentID: "a", Timestamp: 1}})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventQueueChanged || evt.Type == EventReset {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for queue change event")
		}
	}
}

func TestWatchRequiresBasePath(t *testing.T) {
	a := NewAdapter(newMemoryMedium(), nil)
	if _, err := a.Watch(context.Background()); err == nil {
		t.Fatalf("expected error without base path")
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	throttle := newEventThrottle(10 * time.Millisecond)
	defer throttle.Stop()

	got := make(chan Event, 8)
	send := func(ev Event) { got <- ev }

	throttle.Enqueue(Event{Type: EventQueueChanged}, send)
	throttle.Enqueue(Event{Type: EventQueueChanged}, send)
	throttle.Enqueue(Event{Type: EventAppointmentsChanged}, send)

	var seen []EventType
	timeout := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case ev := <-got:
			seen = append(seen, ev.Type)
		case <-timeout:
			t.Fatalf("timed out, saw %v", seen)
		}
	}
	if seen[0] != EventAppointmentsChanged || seen[1] != EventQueueChanged {
		t.Fatalf("unexpected flush order %v", seen)
	}
	select {
	case ev := <-got:
		t.Fatalf("unexpected extra event %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventThrottleResetWins(t *testing.T) {
	throttle := newEventThrottle(10 * time.Millisecond)
	defer throttle.Stop()

	got := make(chan Event, 8)
	throttle.Enqueue(Event{Type: EventQueueChanged}, func(ev Event) { got <- ev })
	throttle.Enqueue(Event{Type: EventReset}, func(ev Event) { got <- ev })

	select {
	case ev := <-got:
		if ev.Type != EventReset {
			t.Fatalf("expected reset, got %v", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

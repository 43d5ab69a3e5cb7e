package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes which persisted blob changed.
type EventType int

const (
	// EventAppointmentsChanged indicates the appointment collection was
	// rewritten.
	EventAppointmentsChanged EventType = iota

	// EventQueueChanged indicates the sync queue was rewritten.
	EventQueueChanged

	// EventReset signals the store was cleared and callers should reload
	// everything.
	EventReset
)

func (t EventType) String() string {
	switch t {
	case EventAppointmentsChanged:
		return "appointments"
	case EventQueueChanged:
		return "queue"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (a *Adapter) Watch(ctx context.Context) (<-chan Event, error) {
	if a.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}

	if err := os.MkdirAll(a.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				a.log.Warnw("watcher close", "error", err)
			}
		})
	}

	if err := watcher.Add(a.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", a.basePath, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// The consumer reloads everything on the next event it
				// receives, so dropping under load loses nothing.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.log.Warnw("watcher error", "error", err)
				throttle.Enqueue(Event{Type: EventReset}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev, ok := classify(evt); ok {
					throttle.Enqueue(ev, send)
				}
			}
		}
	}()

	return events, nil
}

// classify maps a filesystem event on the base path to a store event.
func classify(evt fsnotify.Event) (Event, bool) {
	switch filepath.Base(evt.Name) {
	case KeyAppointments:
		return Event{Type: EventAppointmentsChanged}, true
	case KeyQueue:
		return Event{Type: EventQueueChanged}, true
	case KeyInitialized:
		if evt.Op&fsnotify.Remove == fsnotify.Remove {
			return Event{Type: EventReset}, true
		}
	}
	return Event{}, false
}

// eventThrottle coalesces rapid change notifications so consumers reload once
// per burst of writes instead of on every single one.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending[ev.Type] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]struct{})
	t.timer = nil
	t.mu.Unlock()

	// A reset subsumes the finer grained events.
	if _, ok := pending[EventReset]; ok {
		send(Event{Type: EventReset})
		return
	}
	for _, typ := range []EventType{EventAppointmentsChanged, EventQueueChanged} {
		if _, ok := pending[typ]; ok {
			send(Event{Type: typ})
		}
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}

package connectivity

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"
)

type flipProbe struct {
	mu      sync.Mutex
	answers []bool
}

func (f *flipProbe) Online(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.answers[0]
	if len(f.answers) > 1 {
		f.answers = f.answers[1:]
	}
	return v
}

func TestCheckReportsTransitionsOnly(t *testing.T) {
	probe := &flipProbe{answers: []bool{true, true, false, false, true}}
	var changes []bool
	m := NewMonitor(probe, time.Second, func(online bool) { changes = append(changes, online) }, nil)

	for i := 0; i < 5; i++ {
		m.Check(context.Background())
	}
	want := []bool{true, false, true}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("changes = %v, want %v", changes, want)
		}
	}
	if !m.Last() {
		t.Fatal("last observation should be online")
	}
}

func TestCheckReportsFirstObservationEvenWhenOffline(t *testing.T) {
	var changes []bool
	m := NewMonitor(Static(false), time.Second, func(online bool) { changes = append(changes, online) }, nil)
	m.Check(context.Background())
	m.Check(context.Background())
	if len(changes) != 1 || changes[0] {
		t.Fatalf("changes = %v, want [false]", changes)
	}
}

func TestStartPollsUntilCancelled(t *testing.T) {
	probe := &flipProbe{answers: []bool{false, true}}
	changed := make(chan bool, 4)
	m := NewMonitor(probe, 5*time.Millisecond, func(online bool) { changed <- online }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	for _, want := range []bool{false, true} {
		select {
		case got := <-changed:
			if got != want {
				t.Fatalf("change = %v, want %v", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %v", want)
		}
	}
}

func TestDialProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	if !(DialProbe{Address: addr, Timeout: time.Second}).Online(context.Background()) {
		t.Fatal("expected listener to be reachable")
	}

	ln.Close()
	if (DialProbe{Address: addr, Timeout: 200 * time.Millisecond}).Online(context.Background()) {
		t.Fatal("expected closed listener to be unreachable")
	}
	if (DialProbe{}).Online(context.Background()) {
		t.Fatal("empty address must be offline")
	}
}

func TestForSettings(t *testing.T) {
	if p, ok := ForSettings("", 0, true).(Static); !ok || !bool(p) {
		t.Fatalf("expected Static(true), got %#v", ForSettings("", 0, true))
	}
	if _, ok := ForSettings("example.com:443", time.Second, false).(DialProbe); !ok {
		t.Fatal("expected DialProbe when an address is set")
	}
	if ProbeFunc(func(context.Context) bool { return true }).Online(context.Background()) != true {
		t.Fatal("ProbeFunc did not forward")
	}
}

// Package connectivity watches whether the remote is reachable and reports
// transitions.
package connectivity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/apptcal/pkg/logger"
)

const defaultInterval = 10 * time.Second

// Probe answers whether the remote is reachable right now.
type Probe interface {
	Online(ctx context.Context) bool
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context) bool

// Online calls f.
func (f ProbeFunc) Online(ctx context.Context) bool { return f(ctx) }

// Static always reports the same answer. It backs the --offline flag and the
// online config key when no probe address is set.
type Static bool

// Online returns s.
func (s Static) Online(context.Context) bool { return bool(s) }

// Monitor polls a Probe and calls OnChange on the first observation and on
// every transition after that.
type Monitor struct {
	Probe    Probe
	Interval time.Duration
	OnChange func(online bool)

	log *zap.SugaredLogger

	mu    sync.Mutex
	known bool
	last  bool
}

// NewMonitor builds a monitor around probe.
func NewMonitor(probe Probe, interval time.Duration, onChange func(bool), log *zap.SugaredLogger) *Monitor {
	return &Monitor{
		Probe:    probe,
		Interval: interval,
		OnChange: onChange,
		log:      logger.Or(log),
	}
}

// Start launches a background goroutine that probes at a fixed cadence until
// ctx is cancelled. It returns immediately.
func (m *Monitor) Start(ctx context.Context) {
	interval := m.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			m.Check(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Check runs the probe once and reports whether the remote is reachable.
func (m *Monitor) Check(ctx context.Context) bool {
	if ctx.Err() != nil {
		return m.Last()
	}
	online := m.Probe.Online(ctx)

	m.mu.Lock()
	changed := !m.known || m.last != online
	m.known = true
	m.last = online
	m.mu.Unlock()

	if changed {
		m.logger().Infow("connectivity changed", "online", online)
		if m.OnChange != nil {
			m.OnChange(online)
		}
	}
	return online
}

// Last returns the most recent observation, false before the first probe.
func (m *Monitor) Last() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Monitor) logger() *zap.SugaredLogger {
	return logger.Or(m.log)
}

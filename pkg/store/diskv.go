package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"

	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/logger"
)

// Keys of the three persisted blobs.
const (
	KeyAppointments = "calendar_appointments"
	KeyQueue        = "calendar_sync_queue"
	KeyInitialized  = "calendar_initialized"

	tempDir = ".tmp"
)

// Persistence defines the durable storage contract for the appointment
// collection and the pending sync queue. Failures are logged, never returned:
// the in-memory state stays authoritative for the session.
type Persistence interface {
	Save(items []appointment.Appointment)
	Load() []appointment.Appointment
	SaveQueue(ops []appointment.SyncOperation)
	LoadQueue() []appointment.SyncOperation
	IsFirstRun() bool
	MarkInitialized()
	Clear()
	Watch(ctx context.Context) (<-chan Event, error)
}

// Medium is the key-value surface the adapter writes through. *diskv.Diskv
// satisfies it.
type Medium interface {
	Read(key string) ([]byte, error)
	Write(key string, val []byte) error
	Erase(key string) error
	Has(key string) bool
}

// Open creates a Persistence backed by diskv using the provided config.
func Open(cfg Config, log *zap.SugaredLogger) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	// No read cache: other apptcal processes write the same files.
	d := diskv.New(diskv.Options{
		BasePath: basePath,
		TempDir:  filepath.Join(basePath, tempDir),
	})
	a := NewAdapter(d, log)
	a.basePath = basePath
	return a, nil
}

// NewAdapter wraps an arbitrary medium.
func NewAdapter(m Medium, log *zap.SugaredLogger) *Adapter {
	return &Adapter{m: m, log: logger.Or(log)}
}

// Adapter serialises appointments and sync operations as JSON blobs.
type Adapter struct {
	m        Medium
	basePath string
	log      *zap.SugaredLogger
}

var _ Persistence = (*Adapter)(nil)

// Save replaces the persisted appointment collection.
func (a *Adapter) Save(items []appointment.Appointment) {
	if items == nil {
		items = []appointment.Appointment{}
	}
	if err := a.write(KeyAppointments, items); err != nil {
		a.log.Errorw("failed to save appointments", "error", err, "count", len(items))
	}
}

// Load returns the persisted collection, or an empty one when nothing was
// stored or the blob cannot be decoded.
func (a *Adapter) Load() []appointment.Appointment {
	items := []appointment.Appointment{}
	if err := a.read(KeyAppointments, &items); err != nil {
		a.log.Errorw("failed to load appointments", "error", err)
		return []appointment.Appointment{}
	}
	if items == nil {
		return []appointment.Appointment{}
	}
	return items
}

// SaveQueue replaces the persisted sync queue.
func (a *Adapter) SaveQueue(ops []appointment.SyncOperation) {
	if ops == nil {
		ops = []appointment.SyncOperation{}
	}
	if err := a.write(KeyQueue, ops); err != nil {
		a.log.Errorw("failed to save sync queue", "error", err, "count", len(ops))
	}
}

// LoadQueue returns the persisted queue ordered by timestamp.
func (a *Adapter) LoadQueue() []appointment.SyncOperation {
	ops := []appointment.SyncOperation{}
	if err := a.read(KeyQueue, &ops); err != nil {
		a.log.Errorw("failed to load sync queue", "error", err)
		return []appointment.SyncOperation{}
	}
	if ops == nil {
		return []appointment.SyncOperation{}
	}
	appointment.SortOperations(ops)
	return ops
}

// IsFirstRun reports whether the initialization marker is absent.
func (a *Adapter) IsFirstRun() bool {
	val, err := a.m.Read(KeyInitialized)
	if err != nil {
		return true
	}
	return string(val) != "true"
}

// MarkInitialized persists the initialization marker.
func (a *Adapter) MarkInitialized() {
	if err := a.m.Write(KeyInitialized, []byte("true")); err != nil {
		a.log.Errorw("failed to mark initialized", "error", err)
	}
}

// Clear removes every persisted key.
func (a *Adapter) Clear() {
	for _, key := range []string{KeyAppointments, KeyQueue, KeyInitialized} {
		if !a.m.Has(key) {
			continue
		}
		if err := a.m.Erase(key); err != nil {
			a.log.Errorw("failed to clear key", "key", key, "error", err)
		}
	}
}

func (a *Adapter) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := a.m.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// read leaves v untouched when the key is absent.
func (a *Adapter) read(key string, v any) error {
	if !a.m.Has(key) {
		return nil
	}
	data, err := a.m.Read(key)
	if err != nil {
		return fmt.Errorf("store: read %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

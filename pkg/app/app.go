// Package app holds the appointment collection, the sync queue and the view
// state shared by the CLI and the MCP server.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/logger"
	"tableflip.dev/apptcal/pkg/store"
	"tableflip.dev/apptcal/pkg/syncer"
)

// Options configures a Service.
type Options struct {
	Persistence store.Persistence
	// Remote confirms queued operations. Defaults to a simulated remote.
	Remote syncer.Remote
	Sync   syncer.Config
	Online bool
	Logger *zap.SugaredLogger

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Service owns the appointment collection and the queue of operations that
// have not been confirmed by the remote yet. Every mutation is written
// through to persistence before it returns.
type Service struct {
	mu           sync.RWMutex
	appointments []appointment.Appointment
	queue        []appointment.SyncOperation
	filter       appointment.Filter
	view         appointment.ViewMode
	selected     string
	online       bool
	syncing      bool
	loading      bool
	lastStamp    int64

	// reloadPending records a Reload that arrived mid pass.
	reloadPending bool

	persistence store.Persistence
	processor   *syncer.Processor
	scheduler   *syncer.Scheduler
	log         *zap.SugaredLogger
	now         func() time.Time
	newID       func() string

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Status is what indicators render: offline banners, pending badges and
// syncing spinners.
type Status struct {
	Online             bool                 `json:"online"`
	Syncing            bool                 `json:"syncing"`
	Loading            bool                 `json:"loading"`
	PendingCount       int                  `json:"pendingCount"`
	FailedCount        int                  `json:"failedCount"`
	HasUnsyncedChanges bool                 `json:"hasUnsyncedChanges"`
	Filter             appointment.Filter   `json:"filter"`
	ViewMode           appointment.ViewMode `json:"viewMode"`
	SelectedDate       string               `json:"selectedDate,omitempty"`
}

// New builds a Service. Call LoadFromStorage before reading from it and
// Start to sync in the background. Until Start runs, online mutations only
// queue a kick for the scheduler; Sync still drains on the calling goroutine.
func New(opts Options) *Service {
	s := &Service{
		appointments: []appointment.Appointment{},
		queue:        []appointment.SyncOperation{},
		filter:       appointment.FilterAll,
		view:         appointment.ViewMonth,
		online:       opts.Online,
		persistence:  opts.Persistence,
		log:          logger.Or(opts.Logger),
		now:          opts.Now,
		newID:        opts.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	remote := opts.Remote
	if remote == nil {
		remote = syncer.Simulated{Delay: syncer.DefaultDelay}
	}
	syncLog := s.log.Desugar().Named(logger.ComponentSyncer).Sugar()
	s.processor = syncer.NewProcessor(ledger{s}, remote, opts.Sync, syncLog)
	s.scheduler = syncer.NewScheduler(s.processor, syncLog)
	return s
}

// LoadFromStorage replaces the in-memory state with what is persisted. On the
// first run it seeds the sample appointments instead. Storage is read without
// holding the lock, so a Confirm or Retry landing in between is overwritten
// and the operation is sent again; delivery is at-least-once and the remote
// deduplicates on the operation ID. Reload waits for a running pass to end.
func (s *Service) LoadFromStorage() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	appts, queue := s.readStorage()

	s.mu.Lock()
	s.appointments = appts
	s.queue = queue
	for _, op := range queue {
		if op.Timestamp > s.lastStamp {
			s.lastStamp = op.Timestamp
		}
	}
	s.loading = false
	s.mu.Unlock()
}

func (s *Service) readStorage() (appts []appointment.Appointment, queue []appointment.SyncOperation) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("loading from storage failed, starting empty", "panic", r)
			appts = []appointment.Appointment{}
			queue = []appointment.SyncOperation{}
		}
	}()
	if s.persistence == nil {
		return []appointment.Appointment{}, []appointment.SyncOperation{}
	}
	if s.persistence.IsFirstRun() {
		appts = appointment.Samples(s.now())
		s.persistence.Save(appts)
		s.persistence.MarkInitialized()
		s.log.Infow("seeded sample appointments", "count", len(appts))
		return appts, []appointment.SyncOperation{}
	}
	return s.persistence.Load(), s.persistence.LoadQueue()
}

// Reload re-reads durable state. The run command calls it when another
// process changes the store.
func (s *Service) Reload() {
	s.mu.Lock()
	if s.syncing {
		// Picked up when the pass ends.
		s.reloadPending = true
		s.mu.Unlock()
		s.log.Debugw("reload deferred until the sync pass ends")
		return
	}
	s.mu.Unlock()
	s.LoadFromStorage()
	if s.Online() {
		s.scheduler.Trigger()
	}
}

// Reset clears durable state and memory, then seeds again as on a first run.
// View state returns to its defaults.
func (s *Service) Reset() {
	if s.persistence != nil {
		s.persistence.Clear()
	}
	s.mu.Lock()
	s.filter = appointment.FilterAll
	s.view = appointment.ViewMonth
	s.selected = ""
	s.mu.Unlock()
	s.LoadFromStorage()
}

// AddAppointment stores a new appointment and queues its creation.
func (s *Service) AddAppointment(in appointment.Input) appointment.Appointment {
	s.mu.Lock()
	a := appointment.New(s.newID(), in, s.now())
	a.SyncStatus = s.statusLocked()
	s.appointments = append(s.appointments, a)
	s.enqueueLocked(appointment.OpCreate, a.ID, &a)
	s.persistLocked()
	online := s.online
	s.mu.Unlock()

	s.log.Debugw("appointment added", "id", a.ID, "date", a.Date)
	if online {
		s.scheduler.Trigger()
	}
	return a
}

// UpdateAppointment merges patch into the appointment with id. An unknown id
// is logged and leaves everything untouched.
func (s *Service) UpdateAppointment(id string, patch appointment.Patch) (appointment.Appointment, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Warnw("update of unknown appointment ignored", "id", id)
		return appointment.Appointment{}, false
	}
	a := patch.Apply(s.appointments[i])
	a.UpdatedAt = s.now()
	a.SyncStatus = s.statusLocked()
	s.appointments[i] = a
	s.enqueueLocked(appointment.OpUpdate, a.ID, &a)
	s.persistLocked()
	online := s.online
	s.mu.Unlock()

	s.log.Debugw("appointment updated", "id", a.ID)
	if online {
		s.scheduler.Trigger()
	}
	return a, true
}

// DeleteAppointment removes the appointment with id and queues the deletion.
// Deleting an unknown id changes nothing.
func (s *Service) DeleteAppointment(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debugw("delete of unknown appointment ignored", "id", id)
		return false
	}
	s.appointments = append(s.appointments[:i:i], s.appointments[i+1:]...)
	s.enqueueLocked(appointment.OpDelete, id, nil)
	s.persistLocked()
	online := s.online
	s.mu.Unlock()

	s.log.Debugw("appointment deleted", "id", id)
	if online {
		s.scheduler.Trigger()
	}
	return true
}

// SetCategoryFilter changes the active filter.
func (s *Service) SetCategoryFilter(f appointment.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// SetViewMode changes the active view.
func (s *Service) SetViewMode(v appointment.ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// SetSelectedDate selects a day. An empty date clears the selection.
func (s *Service) SetSelectedDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = strings.TrimSpace(date)
}

// SetIsOnline records connectivity. Coming back online starts a drain.
func (s *Service) SetIsOnline(online bool) {
	s.mu.Lock()
	was := s.online
	s.online = online
	s.mu.Unlock()

	if was == online {
		return
	}
	s.log.Infow("connectivity changed", "online", online)
	if online {
		s.scheduler.Trigger()
	}
}

// Online reports the connectivity flag.
func (s *Service) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// FilteredAppointments returns the appointments matching the active filter in
// insertion order.
func (s *Service) FilteredAppointments() []appointment.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]appointment.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if s.filter.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// AppointmentsByDate returns the appointments on date that match the active
// filter.
func (s *Service) AppointmentsByDate(date string) []appointment.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []appointment.Appointment{}
	for _, a := range s.appointments {
		if a.Date == date && s.filter.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// PendingCount is the number of queued operations.
func (s *Service) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queue)
}

// Appointment looks up one appointment regardless of the filter.
func (s *Service) Appointment(id string) (appointment.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.appointments[i], true
	}
	return appointment.Appointment{}, false
}

// Appointments returns the whole collection regardless of the filter.
func (s *Service) Appointments() []appointment.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return appointment.Clone(s.appointments)
}

// Queue returns a copy of the queued operations.
func (s *Service) Queue() []appointment.SyncOperation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return appointment.CloneOperations(s.queue)
}

// Status returns the indicator surface.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	failed := 0
	for _, a := range s.appointments {
		if a.SyncStatus == appointment.StatusFailed {
			failed++
		}
	}
	return Status{
		Online:             s.online,
		Syncing:            s.syncing,
		Loading:            s.loading,
		PendingCount:       len(s.queue),
		FailedCount:        failed,
		HasUnsyncedChanges: len(s.queue) > 0,
		Filter:             s.filter,
		ViewMode:           s.view,
		SelectedDate:       s.selected,
	}
}

// Start runs the sync scheduler until ctx is cancelled or Close is called.
// A queue left over from an earlier session is drained straight away when
// online.
func (s *Service) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go func() {
		defer close(done)
		s.scheduler.Run(ctx)
		cancel()
		// The parent context may end without Close, forget the worker so
		// Sync falls back to running passes itself.
		s.runMu.Lock()
		if s.done == done {
			s.cancel, s.done = nil, nil
		}
		s.runMu.Unlock()
	}()
	if s.Online() && s.PendingCount() > 0 {
		s.scheduler.Trigger()
	}
}

// Close stops the scheduler and waits for the running pass to finish.
func (s *Service) Close() {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Sync drains the queue and waits for the result. Without a running
// scheduler it runs one pass on the calling goroutine.
func (s *Service) Sync(ctx context.Context) (syncer.Result, error) {
	s.runMu.Lock()
	running := s.cancel != nil
	s.runMu.Unlock()

	if !running {
		return s.processor.Process(ctx), nil
	}
	s.scheduler.Trigger()
	if err := s.scheduler.WaitIdle(ctx); err != nil {
		if errors.Is(err, syncer.ErrStopped) {
			return s.processor.Process(ctx), nil
		}
		return syncer.Result{}, err
	}
	return s.scheduler.LastResult(), nil
}

func (s *Service) statusLocked() appointment.SyncStatus {
	if s.online {
		return appointment.StatusSynced
	}
	return appointment.StatusPending
}

func (s *Service) indexLocked(id string) int {
	for i, a := range s.appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// enqueueLocked appends an operation. Timestamps are unix milliseconds and
// strictly increase within a session.
func (s *Service) enqueueLocked(typ appointment.OperationType, id string, data *appointment.Appointment) {
	stamp := s.now().UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	s.lastStamp = stamp

	op := appointment.SyncOperation{
		ID:            s.newID(),
		Type:          typ,
		AppointmentID: id,
		Timestamp:     stamp,
	}
	if data != nil {
		snapshot := *data
		op.Data = &snapshot
	}
	s.queue = append(s.queue, op)
}

func (s *Service) persistLocked() {
	if s.persistence == nil {
		return
	}
	s.persistence.Save(s.appointments)
	s.persistence.SaveQueue(s.queue)
}

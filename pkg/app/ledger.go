package app

import (
	"time"

	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/syncer"
)

// ledger exposes the Service's queue and collection to the processor.
type ledger struct {
	s *Service
}

var _ syncer.Ledger = ledger{}

func (l ledger) Online() bool {
	return l.s.Online()
}

func (l ledger) Compact(fn func([]appointment.SyncOperation) []appointment.SyncOperation) int {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	before := len(l.s.queue)
	compacted := fn(l.s.queue)
	if compacted == nil {
		compacted = []appointment.SyncOperation{}
	}
	l.s.queue = compacted
	return before - len(compacted)
}

func (l ledger) Pending() []appointment.SyncOperation {
	return l.s.Queue()
}

func (l ledger) Confirm(op appointment.SyncOperation) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.removeOpLocked(op.ID)
	if op.Type == appointment.OpDelete || l.s.queuedForLocked(op.AppointmentID) {
		return
	}
	l.s.setSyncStatusLocked(op.AppointmentID, appointment.StatusSynced)
}

func (l ledger) Retry(op appointment.SyncOperation, next time.Time) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	for i := range l.s.queue {
		if l.s.queue[i].ID == op.ID {
			l.s.queue[i].RetryCount = op.RetryCount + 1
			l.s.queue[i].NextAttemptAt = next
			break
		}
	}
	if op.Type != appointment.OpDelete {
		l.s.setSyncStatusLocked(op.AppointmentID, appointment.StatusPending)
	}
}

func (l ledger) Abandon(op appointment.SyncOperation) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.removeOpLocked(op.ID)
	if op.Type != appointment.OpDelete && !l.s.queuedForLocked(op.AppointmentID) {
		l.s.setSyncStatusLocked(op.AppointmentID, appointment.StatusFailed)
	}
}

func (l ledger) SetSyncing(syncing bool) {
	l.s.mu.Lock()
	l.s.syncing = syncing
	reload := !syncing && l.s.reloadPending
	if reload {
		l.s.reloadPending = false
	}
	l.s.mu.Unlock()

	if reload {
		l.s.Reload()
	}
}

func (l ledger) Persist() {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.persistLocked()
}

func (s *Service) removeOpLocked(id string) {
	for i, op := range s.queue {
		if op.ID == id {
			s.queue = append(s.queue[:i:i], s.queue[i+1:]...)
			return
		}
	}
}

func (s *Service) queuedForLocked(appointmentID string) bool {
	for _, op := range s.queue {
		if op.AppointmentID == appointmentID {
			return true
		}
	}
	return false
}

// setSyncStatusLocked leaves UpdatedAt alone: confirmation is not a local edit.
func (s *Service) setSyncStatusLocked(id string, status appointment.SyncStatus) {
	if i := s.indexLocked(id); i >= 0 {
		s.appointments[i].SyncStatus = status
	}
}

package app

import "tableflip.dev/apptcal/pkg/appointment"

// FailedAppointments returns the appointments whose last operation ran out
// of retries.
func (s *Service) FailedAppointments() []appointment.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []appointment.Appointment{}
	for _, a := range s.appointments {
		if a.SyncStatus == appointment.StatusFailed {
			out = append(out, a)
		}
	}
	return out
}

// RetryFailed queues a fresh update for every failed appointment and returns
// how many were queued. The remote sees the full record again.
func (s *Service) RetryFailed() int {
	s.mu.Lock()
	n := 0
	for i := range s.appointments {
		if s.appointments[i].SyncStatus != appointment.StatusFailed {
			continue
		}
		s.appointments[i].SyncStatus = appointment.StatusPending
		a := s.appointments[i]
		s.enqueueLocked(appointment.OpUpdate, a.ID, &a)
		n++
	}
	if n > 0 {
		s.persistLocked()
	}
	online := s.online
	s.mu.Unlock()

	if n > 0 {
		s.log.Infow("requeued failed appointments", "count", n)
		if online {
			s.scheduler.Trigger()
		}
	}
	return n
}

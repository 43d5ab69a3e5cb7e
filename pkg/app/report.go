package app

import (
	"time"

	"tableflip.dev/apptcal/pkg/appointment"
)

// AgendaDay groups the appointments of one date in planner order.
type AgendaDay struct {
	Date         string                    `json:"date"`
	Appointments []appointment.Appointment `json:"appointments"`
}

// Agenda captures the appointments between two dates, inclusive.
type Agenda struct {
	From       string                       `json:"from"`
	To         string                       `json:"to"`
	Days       []AgendaDay                  `json:"days"`
	Total      int                          `json:"total"`
	ByCategory map[appointment.Category]int `json:"byCategory"`
}

// Agenda returns the appointments between since and until that match the
// active filter, grouped by day.
func (s *Service) Agenda(since, until time.Time) Agenda {
	if since.After(until) {
		since, until = until, since
	}
	from, to := since.Format(appointment.DateLayout), until.Format(appointment.DateLayout)

	s.mu.RLock()
	var picked []appointment.Appointment
	for _, a := range s.appointments {
		if a.Date < from || a.Date > to || !s.filter.Match(a) {
			continue
		}
		picked = append(picked, a)
	}
	s.mu.RUnlock()

	result := Agenda{
		From:       from,
		To:         to,
		Days:       []AgendaDay{},
		ByCategory: make(map[appointment.Category]int, len(appointment.AllCategories())),
	}
	if len(picked) == 0 {
		return result
	}

	appointment.SortPlanner(picked)
	for _, a := range picked {
		n := len(result.Days)
		if n == 0 || result.Days[n-1].Date != a.Date {
			result.Days = append(result.Days, AgendaDay{Date: a.Date})
			n++
		}
		result.Days[n-1].Appointments = append(result.Days[n-1].Appointments, a)
		result.ByCategory[a.Category]++
		result.Total++
	}
	return result
}

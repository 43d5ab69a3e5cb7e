// Package mcp provides the Model Context Protocol server integration for apptcal.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/appointment"
)

// Service adapts the appointment store to the shapes exposed over MCP.
type Service struct {
	App *app.Service

	// view serialises filter changes with the reads that depend on them.
	view sync.Mutex
}

// ErrAppointmentNotFound is returned when no appointment has the requested id.
var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentDTO is a transport-friendly projection of an appointment.
type AppointmentDTO struct {
	appointment.Appointment
	CategoryLabel string `json:"categoryLabel"`
	CategoryColor string `json:"categoryColor"`
	UpdatedUnix   int64  `json:"updatedUnix"`
}

// CreateOptions captures the parameters used to create an appointment.
type CreateOptions struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AllDay      bool   `json:"allDay"`
}

// UpdateOptions captures a partial update. Nil fields are left untouched.
type UpdateOptions struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	AllDay      *bool   `json:"allDay"`
}

// SyncStatus is the indicator surface plus the queue itself.
type SyncStatus struct {
	app.Status
	Queue []appointment.SyncOperation `json:"queue"`
}

// NewService builds a service wrapper around a loaded app.Service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) ready() error {
	if s.App == nil {
		return errors.New("appointment store is not configured")
	}
	return nil
}

// ListAppointments returns the appointments in a category, or all of them
// when category is empty or "all".
func (s *Service) ListAppointments(ctx context.Context, category string) ([]AppointmentDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	filter, err := appointment.ParseFilter(category)
	if err != nil {
		return nil, err
	}

	s.view.Lock()
	defer s.view.Unlock()
	prev := s.App.Status().Filter
	s.App.SetCategoryFilter(filter)
	list := s.App.FilteredAppointments()
	s.App.SetCategoryFilter(prev)
	return toDTOs(list), nil
}

// AppointmentsOn returns the appointments on date in planner order.
func (s *Service) AppointmentsOn(ctx context.Context, date string, category string) ([]AppointmentDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := time.Parse(appointment.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: %q", appointment.ErrInvalidDate, date)
	}
	filter, err := appointment.ParseFilter(category)
	if err != nil {
		return nil, err
	}

	s.view.Lock()
	defer s.view.Unlock()
	prev := s.App.Status().Filter
	s.App.SetCategoryFilter(filter)
	list := s.App.AppointmentsByDate(date)
	s.App.SetCategoryFilter(prev)
	appointment.SortPlanner(list)
	return toDTOs(list), nil
}

// AppointmentByID fetches one appointment.
func (s *Service) AppointmentByID(ctx context.Context, id string) (*AppointmentDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	a, ok := s.App.Appointment(strings.TrimSpace(id))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	dto := toDTO(a)
	return &dto, nil
}

// Create validates opts and stores a new appointment.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (*AppointmentDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	category, err := appointment.ParseCategory(opts.Category)
	if err != nil {
		return nil, err
	}
	in := appointment.Input{
		Title:       opts.Title,
		Date:        strings.TrimSpace(opts.Date),
		Time:        strings.TrimSpace(opts.Time),
		Category:    category,
		Description: opts.Description,
		IsAllDay:    opts.AllDay,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	dto := toDTO(s.App.AddAppointment(in))
	return &dto, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, opts UpdateOptions) (*AppointmentDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	patch := appointment.Patch{
		Title:       opts.Title,
		Date:        opts.Date,
		Time:        opts.Time,
		Description: opts.Description,
		IsAllDay:    opts.AllDay,
	}
	if opts.Category != nil {
		category, err := appointment.ParseCategory(*opts.Category)
		if err != nil {
			return nil, err
		}
		patch.Category = &category
	}
	if patch.Empty() {
		return nil, errors.New("no fields to update")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	a, ok := s.App.UpdateAppointment(strings.TrimSpace(opts.ID), patch)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, opts.ID)
	}
	dto := toDTO(a)
	return &dto, nil
}

// Delete removes an appointment. It reports whether anything was removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.App.DeleteAppointment(strings.TrimSpace(id)), nil
}

// SyncStatus reports connectivity and the pending queue.
func (s *Service) SyncStatus(ctx context.Context) (SyncStatus, error) {
	if err := s.ready(); err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{Status: s.App.Status(), Queue: s.App.Queue()}, nil
}

// SetOnline overrides connectivity. Coming online starts a drain.
func (s *Service) SetOnline(ctx context.Context, online bool) (app.Status, error) {
	if err := s.ready(); err != nil {
		return app.Status{}, err
	}
	s.App.SetIsOnline(online)
	return s.App.Status(), nil
}

// Agenda groups appointments between two dates.
func (s *Service) Agenda(ctx context.Context, from, to string) (app.Agenda, error) {
	if err := s.ready(); err != nil {
		return app.Agenda{}, err
	}
	since, err := time.ParseInLocation(appointment.DateLayout, from, time.Local)
	if err != nil {
		return app.Agenda{}, fmt.Errorf("%w: %q", appointment.ErrInvalidDate, from)
	}
	until, err := time.ParseInLocation(appointment.DateLayout, to, time.Local)
	if err != nil {
		return app.Agenda{}, fmt.Errorf("%w: %q", appointment.ErrInvalidDate, to)
	}
	return s.App.Agenda(since, until), nil
}

func toDTO(a appointment.Appointment) AppointmentDTO {
	return AppointmentDTO{
		Appointment:   a,
		CategoryLabel: a.Category.Label(),
		CategoryColor: a.Category.Color(),
		UpdatedUnix:   a.UpdatedAt.Unix(),
	}
}

func toDTOs(list []appointment.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toDTO(a))
	}
	return out
}

package appointment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format of Appointment.Date.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire and storage format of Appointment.Time.
	TimeLayout = "15:04"
)

var (
	ErrTitleRequired   = errors.New("appointment: title required")
	ErrInvalidDate     = errors.New("appointment: invalid date")
	ErrInvalidTime     = errors.New("appointment: invalid time")
	ErrInvalidCategory = errors.New("appointment: invalid category")
)

// Appointment is a titled, dated, categorised calendar entry.
type Appointment struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Date        string     `json:"date"`
	Time        string     `json:"time,omitempty"`
	Category    Category   `json:"category"`
	Description string     `json:"description,omitempty"`
	IsAllDay    bool       `json:"isAllDay"`
	SyncStatus  SyncStatus `json:"syncStatus"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Input is the creation payload accepted by the store.
type Input struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Time        string   `json:"time,omitempty"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
	IsAllDay    bool     `json:"isAllDay"`
}

// Validate checks the fields a form would require before handing the input
// to the store.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, in.Date)
	}
	if _, err := ParseCategory(string(in.Category)); err != nil {
		return err
	}
	if !in.IsAllDay && in.Time != "" {
		if _, err := time.Parse(TimeLayout, in.Time); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTime, in.Time)
		}
	}
	return nil
}

// New builds an appointment from in. The caller assigns sync state.
func New(id string, in Input, now time.Time) Appointment {
	a := Appointment{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Date:        in.Date,
		Time:        in.Time,
		Category:    in.Category,
		Description: in.Description,
		IsAllDay:    in.IsAllDay,
		UpdatedAt:   now,
	}
	return a.Normalize()
}

// Normalize drops the clock time of all-day appointments.
func (a Appointment) Normalize() Appointment {
	if a.IsAllDay {
		a.Time = ""
	}
	return a
}

// Day parses Date in the local zone.
func (a Appointment) Day() (time.Time, error) {
	return time.ParseInLocation(DateLayout, a.Date, time.Local)
}

// Patch holds a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Date        *string   `json:"date,omitempty"`
	Time        *string   `json:"time,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsAllDay    *bool     `json:"isAllDay,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Date == nil && p.Time == nil &&
		p.Category == nil && p.Description == nil && p.IsAllDay == nil
}

// Validate checks the fields the patch sets.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Date != nil {
		if _, err := time.Parse(DateLayout, *p.Date); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, *p.Date)
		}
	}
	if p.Category != nil {
		if _, err := ParseCategory(string(*p.Category)); err != nil {
			return err
		}
	}
	if p.Time != nil && *p.Time != "" {
		if _, err := time.Parse(TimeLayout, *p.Time); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTime, *p.Time)
		}
	}
	return nil
}

// Apply merges p into a. ID, SyncStatus and UpdatedAt are not touched.
func (p Patch) Apply(a Appointment) Appointment {
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Time != nil {
		a.Time = *p.Time
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.IsAllDay != nil {
		a.IsAllDay = *p.IsAllDay
	}
	return a.Normalize()
}

// SortPlanner orders appointments by date, all-day entries first, then by
// clock time. The sort is stable so equal entries keep insertion order.
func SortPlanner(list []Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		left, right := list[i], list[j]
		if left.Date != right.Date {
			return left.Date < right.Date
		}
		if left.IsAllDay != right.IsAllDay {
			return left.IsAllDay
		}
		return left.Time < right.Time
	})
}

// Clone returns a copy of list that shares no backing array.
func Clone(list []Appointment) []Appointment {
	if list == nil {
		return nil
	}
	out := make([]Appointment, len(list))
	copy(out, list)
	return out
}

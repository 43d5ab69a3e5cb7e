// Package appointment defines the calendar records and queued sync intents
// shared by the store, the sync processor and the CLI.
package appointment

import (
	"fmt"
	"strings"
)

// Category tags an appointment for filtering and colouring.
type Category string

const (
	// CategoryWork marks work appointments.
	CategoryWork Category = "work"
	// CategoryHome marks personal appointments.
	CategoryHome Category = "home"
)

// AllCategories returns the supported categories in display order.
func AllCategories() []Category {
	return []Category{CategoryWork, CategoryHome}
}

// ParseCategory converts a string to a Category or returns an error for
// unknown values.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllCategories() {
		if candidate == c {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// Label is the human readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryWork:
		return "Work"
	case CategoryHome:
		return "Home"
	default:
		return string(c)
	}
}

// Color is the hex colour used to render the category.
func (c Category) Color() string {
	switch c {
	case CategoryWork:
		return "#1677ff"
	case CategoryHome:
		return "#fa541c"
	default:
		return ""
	}
}

// Filter narrows which appointments are visible.
type Filter string

const (
	FilterAll  Filter = "all"
	FilterWork Filter = Filter(CategoryWork)
	FilterHome Filter = Filter(CategoryHome)
)

// ParseFilter accepts a category name or "all". Empty input means all.
func ParseFilter(raw string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterWork, FilterHome:
		return f, nil
	}
	return FilterAll, fmt.Errorf("appointment: unknown filter %q", raw)
}

// Match reports whether a passes the filter.
func (f Filter) Match(a Appointment) bool {
	if f == FilterAll || f == "" {
		return true
	}
	return Filter(a.Category) == f
}

// ViewMode selects the calendar layout.
type ViewMode string

const (
	ViewMonth   ViewMode = "month"
	ViewYear    ViewMode = "year"
	ViewPlanner ViewMode = "planner"
)

// AllViewModes returns the supported layouts.
func AllViewModes() []ViewMode {
	return []ViewMode{ViewMonth, ViewYear, ViewPlanner}
}

// ParseViewMode converts a string to a ViewMode. Empty input means month.
func ParseViewMode(raw string) (ViewMode, error) {
	v := ViewMode(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return ViewMonth, nil
	}
	for _, candidate := range AllViewModes() {
		if candidate == v {
			return candidate, nil
		}
	}
	return ViewMonth, fmt.Errorf("appointment: unknown view mode %q", raw)
}

// SyncStatus tracks whether the last local mutation was confirmed remotely.
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusPending SyncStatus = "pending"
	// StatusFailed is terminal: the queued operation ran out of retries.
	StatusFailed SyncStatus = "failed"
)

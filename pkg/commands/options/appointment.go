package options

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/appointment"
)

// AppointmentOptions holds the appointment fields settable from flags.
type AppointmentOptions struct {
	Title       string
	Time        string
	Category    string
	Description string
	AllDay      bool
}

func AddAppointmentArgs(cmd *cobra.Command, o *AppointmentOptions) {
	cmd.Flags().StringVarP(&o.Time, "time", "t", "",
		`Start time, example: --time=14:30.`)
	cmd.Flags().StringVarP(&o.Category, "category", "c", string(appointment.CategoryWork),
		`Category, one of: work, home.`)
	cmd.Flags().StringVarP(&o.Description, "description", "d", "",
		`Free text shown next to the title.`)
	cmd.Flags().BoolVar(&o.AllDay, "all-day", false,
		`Mark the appointment as lasting all day.`)
}

// Input builds a creation payload for date.
func (o *AppointmentOptions) Input(date string) (appointment.Input, error) {
	category, err := appointment.ParseCategory(o.Category)
	if err != nil {
		return appointment.Input{}, err
	}
	in := appointment.Input{
		Title:       strings.TrimSpace(o.Title),
		Date:        date,
		Time:        strings.TrimSpace(o.Time),
		Category:    category,
		Description: o.Description,
		IsAllDay:    o.AllDay,
	}
	return in, in.Validate()
}

// Patch builds a partial update from the flags the user actually set.
func (o *AppointmentOptions) Patch(cmd *cobra.Command, date string) (appointment.Patch, error) {
	var p appointment.Patch
	flags := cmd.Flags()
	if flags.Changed("title") {
		p.Title = &o.Title
	}
	if date != "" {
		p.Date = &date
	}
	if flags.Changed("time") {
		p.Time = &o.Time
	}
	if flags.Changed("category") {
		category, err := appointment.ParseCategory(o.Category)
		if err != nil {
			return p, err
		}
		p.Category = &category
	}
	if flags.Changed("description") {
		p.Description = &o.Description
	}
	if flags.Changed("all-day") {
		p.IsAllDay = &o.AllDay
	}
	return p, p.Validate()
}

// FilterOptions selects a category filter.
type FilterOptions struct {
	Category string
}

func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVarP(&o.Category, "category", "c", string(appointment.FilterAll),
		`Show only one category, one of: all, work, home.`)
}

func (o *FilterOptions) Filter() (appointment.Filter, error) {
	return appointment.ParseFilter(o.Category)
}

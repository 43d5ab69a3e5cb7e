package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/appointment"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " appointment")
	default:
		_, _ = c.Fprintln(pp.out(), " appointments")
	}
}

// categoryColor approximates the category hex colors on a terminal.
func categoryColor(c appointment.Category) *color.Color {
	switch c {
	case appointment.CategoryWork:
		return color.New(color.FgHiBlue)
	case appointment.CategoryHome:
		return color.New(color.FgHiYellow)
	default:
		return color.New()
	}
}

func statusMark(s appointment.SyncStatus) string {
	switch s {
	case appointment.StatusPending:
		return color.New(color.FgYellow).Sprint("pending")
	case appointment.StatusFailed:
		return color.New(color.FgRed, color.Bold).Sprint("failed")
	default:
		return color.New(color.Faint).Sprint("synced")
	}
}

func when(a appointment.Appointment) string {
	if a.IsAllDay || a.Time == "" {
		return "all day"
	}
	return a.Time
}

// Appointments prints one row per appointment.
func (pp *PrettyPrint) Appointments(list ...appointment.Appointment) {
	if len(list) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	for _, a := range list {
		cat := categoryColor(a.Category).Sprint(a.Category.Label())
		title := a.Title
		if a.Description != "" {
			title = fmt.Sprintf("%s %s", title, color.New(color.Faint).Sprintf("(%s)", a.Description))
		}
		if pp.ShowID {
			tbl.AddRow(y.Sprint(a.ID), a.Date, when(a), cat, title, statusMark(a.SyncStatus))
		} else {
			tbl.AddRow(a.Date, when(a), cat, title, statusMark(a.SyncStatus))
		}
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Agenda prints an agenda day by day.
func (pp *PrettyPrint) Agenda(agenda app.Agenda) {
	pp.Title(fmt.Sprintf("Agenda %s to %s", agenda.From, agenda.To))
	if agenda.Total == 0 {
		_, _ = fmt.Fprintln(pp.out(), "  No appointments in this window.")
		pp.NewLine()
		return
	}
	for _, day := range agenda.Days {
		pp.TitleWithCount(day.Date, len(day.Appointments))
		pp.Appointments(day.Appointments...)
	}
	parts := make([]string, 0, len(agenda.ByCategory))
	for _, c := range appointment.AllCategories() {
		if n := agenda.ByCategory[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", c.Label(), n))
		}
	}
	_, _ = color.New(color.Faint).Fprintf(pp.out(), "%d total (%s)\n\n", agenda.Total, strings.Join(parts, ", "))
}

// Status prints the indicator surface.
func (pp *PrettyPrint) Status(st app.Status) {
	tbl := uitable.New()
	tbl.Separator = "  "

	conn := color.New(color.FgGreen).Sprint("online")
	if !st.Online {
		conn = color.New(color.FgRed).Sprint("offline")
	}
	tbl.AddRow("connectivity", conn)

	pending := fmt.Sprintf("%d", st.PendingCount)
	if st.HasUnsyncedChanges {
		pending = color.New(color.FgYellow).Sprintf("%d changes pending", st.PendingCount)
	}
	tbl.AddRow("queue", pending)
	if st.FailedCount > 0 {
		tbl.AddRow("failed", color.New(color.FgRed).Sprintf("%d", st.FailedCount))
	}
	if st.Syncing {
		tbl.AddRow("syncing", "yes")
	}
	tbl.AddRow("filter", string(st.Filter))
	tbl.AddRow("view", string(st.ViewMode))
	if st.SelectedDate != "" {
		tbl.AddRow("selected", st.SelectedDate)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

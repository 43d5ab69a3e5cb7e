package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/apptcal/pkg/appointment"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Month prints a month grid. Days with appointments are bold and the
// selected day is underlined.
func (pp *PrettyPrint) Month(then time.Time, selected string, list ...appointment.Appointment) {
	pp.PrintMonthCount(then, CountByDay(then, list), selected)
}

// Year prints the twelve month grids of then's year.
func (pp *PrettyPrint) Year(then time.Time, selected string, list ...appointment.Appointment) {
	m := time.Date(then.Year(), 1, 1, 1, 0, 0, 0, time.Local)
	for i := 0; i < 12; i++ {
		pp.Month(m, selected, list...)
		m = NextMonth(m)
	}
}

// Planner prints appointments grouped by day in planner order.
func (pp *PrettyPrint) Planner(list ...appointment.Appointment) {
	sorted := appointment.Clone(list)
	appointment.SortPlanner(sorted)

	if len(sorted) == 0 {
		pp.Appointments()
		return
	}
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Date == sorted[start].Date {
			continue
		}
		day := sorted[start:i]
		pp.TitleWithCount(dayTitle(day[0].Date), len(day))
		pp.Appointments(day...)
		start = i
	}
}

func dayTitle(date string) string {
	d, err := time.ParseInLocation(appointment.DateLayout, date, time.Local)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}

// CountByDay counts appointments per day of then's month.
func CountByDay(then time.Time, list []appointment.Appointment) []int {
	count := make([]int, DaysIn(then))
	for _, a := range list {
		d, err := a.Day()
		if err != nil {
			continue
		}
		if d.Year() == then.Year() && d.Month() == then.Month() {
			count[d.Day()-1]++
		}
	}
	return count
}

func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int, selected string) {
	w := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)

	m := fmt.Sprintf("%s %d", then.Month(), then.Year())
	mid := (width - len(m)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = tf.Fprintf(w, "%s%s\n", strings.Repeat(" ", mid), m)

	days := DaysIn(then)

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(w, "   ")
	}

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)

	for i := 0; i < days; i++ {
		printer := l1
		if i < len(count) && count[i] > 0 {
			printer = l2
		}
		date := time.Date(then.Year(), then.Month(), i+1, 0, 0, 0, 0, time.Local).Format(appointment.DateLayout)
		if date == selected {
			printer = color.New(color.Bold, color.Underline)
		}
		_, _ = printer.Fprintf(w, "%2d ", i+1)

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(w, "\n")
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
}

func NextMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()+1, 1, 1, 0, 0, 0, then.Location())
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}

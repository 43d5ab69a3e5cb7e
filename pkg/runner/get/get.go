package get

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/printers"
)

type Get struct {
	ShowID bool
	JSON   bool
	Filter appointment.Filter
	View   appointment.ViewMode
	// Date narrows a list to one day. For calendar views it picks the month
	// or year shown and is marked as selected.
	Date string

	Service *app.Service
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	n.Service.SetCategoryFilter(n.Filter)
	if n.View != "" {
		n.Service.SetViewMode(n.View)
	}
	n.Service.SetSelectedDate(n.Date)

	if n.JSON {
		return printers.JSON(nil, n.list())
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	switch n.View {
	case appointment.ViewPlanner:
		pp.Planner(n.list()...)
	case appointment.ViewYear:
		then, err := n.anchor()
		if err != nil {
			return err
		}
		pp.Year(then, n.Date, n.Service.FilteredAppointments()...)
	case appointment.ViewMonth:
		then, err := n.anchor()
		if err != nil {
			return err
		}
		pp.Month(then, n.Date, n.Service.FilteredAppointments()...)
		if n.Date != "" {
			day := n.Service.AppointmentsByDate(n.Date)
			pp.TitleWithCount(n.Date, len(day))
			pp.Appointments(day...)
		}
	default:
		list := n.list()
		title := "Appointments"
		if n.Date != "" {
			title = n.Date
		}
		pp.TitleWithCount(title, len(list))
		pp.Appointments(list...)
	}
	return nil
}

func (n *Get) list() []appointment.Appointment {
	if n.Date != "" {
		return n.Service.AppointmentsByDate(n.Date)
	}
	return n.Service.FilteredAppointments()
}

func (n *Get) anchor() (time.Time, error) {
	if n.Date == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(appointment.DateLayout, n.Date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", appointment.ErrInvalidDate, n.Date)
	}
	return t, nil
}

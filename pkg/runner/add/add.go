package add

import (
	"context"
	"errors"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/printers"
)

type Add struct {
	Input appointment.Input

	// Wait blocks until the new appointment has been through a sync pass.
	Wait   bool
	ShowID bool
	JSON   bool

	Service *app.Service
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
	}
	if err := n.Input.Validate(); err != nil {
		return err
	}

	a := n.Service.AddAppointment(n.Input)
	if n.Wait && n.Service.Online() {
		if _, err := n.Service.Sync(ctx); err != nil {
			return err
		}
		a, _ = n.Service.Appointment(a.ID)
	}

	if n.JSON {
		return printers.JSON(nil, a)
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID}
	day := n.Service.AppointmentsByDate(a.Date)
	pp.TitleWithCount(a.Date, len(day))
	pp.Appointments(day...)
	return nil
}

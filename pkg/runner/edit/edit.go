package edit

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/printers"
)

// ErrNotFound is returned when no appointment has the requested id.
var ErrNotFound = errors.New("appointment not found")

type Edit struct {
	ID    string
	Patch appointment.Patch

	Wait   bool
	ShowID bool
	JSON   bool

	Service *app.Service
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not edit, no service")
	}
	if n.Patch.Empty() {
		return errors.New("nothing to change")
	}
	if err := n.Patch.Validate(); err != nil {
		return err
	}

	a, ok := n.Service.UpdateAppointment(n.ID, n.Patch)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, n.ID)
	}
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
	pp.Title(a.Date)
	pp.Appointments(a)
	return nil
}

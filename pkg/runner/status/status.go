package status

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/printers"
	"tableflip.dev/apptcal/pkg/store"
)

type Status struct {
	Config    store.Config
	ShowQueue bool
	JSON      bool

	Service *app.Service
}

func (n *Status) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show status, no service")
	}
	st := n.Service.Status()

	if n.JSON {
		out := map[string]any{"status": st}
		if n.ShowQueue {
			out["queue"] = n.Service.Queue()
		}
		return printers.JSON(nil, out)
	}

	if override := os.Getenv("APPTCAL_CONFIG_PATH"); override != "" {
		fmt.Println("APPTCAL_CONFIG_PATH found on env, using", override)
	}
	if n.Config != nil {
		fmt.Println("store:", n.Config.BasePath())
	}

	pp := printers.PrettyPrint{ShowID: true}
	pp.Status(st)

	if failed := n.Service.FailedAppointments(); len(failed) > 0 {
		pp.TitleWithCount("Failed", len(failed))
		pp.Appointments(failed...)
	}
	if n.ShowQueue {
		queue := n.Service.Queue()
		pp.Title("Queue")
		for _, op := range queue {
			fmt.Printf("  %d  %-6s  %s  retries=%d\n", op.Timestamp, op.Type, op.AppointmentID, op.RetryCount)
		}
		if len(queue) == 0 {
			fmt.Println("  empty")
		}
	}
	return nil
}

package drain

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/printers"
	"tableflip.dev/apptcal/pkg/syncer"
)

type Drain struct {
	// RetryFailed requeues abandoned appointments before draining.
	RetryFailed bool
	JSON        bool

	Service *app.Service
}

func (n *Drain) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not sync, no service")
	}
	requeued := 0
	if n.RetryFailed {
		requeued = n.Service.RetryFailed()
	}

	res, err := n.Service.Sync(ctx)
	if err != nil {
		return err
	}

	if n.JSON {
		return printers.JSON(nil, map[string]any{
			"requeued": requeued,
			"result":   res,
			"status":   n.Service.Status(),
		})
	}
	if requeued > 0 {
		fmt.Printf("requeued %d failed appointments\n", requeued)
	}
	fmt.Println(describe(res, n.Service.PendingCount()))
	return nil
}

func describe(res syncer.Result, pending int) string {
	switch res.Skipped {
	case syncer.SkipOffline:
		return fmt.Sprintf("offline, %d changes pending", pending)
	case syncer.SkipBusy:
		return "a sync is already running"
	case syncer.SkipEmpty:
		return "nothing to sync"
	}
	msg := fmt.Sprintf("confirmed %d, retrying %d, abandoned %d", res.Confirmed, res.Retried, res.Abandoned)
	if res.Deferred > 0 {
		msg += fmt.Sprintf(", %d waiting until %s", res.Deferred, res.NextAttempt.Local().Format("15:04:05"))
	}
	return fmt.Sprintf("%s; %d changes pending", msg, pending)
}

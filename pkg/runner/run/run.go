package run

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/connectivity"
	"tableflip.dev/apptcal/pkg/logger"
	"tableflip.dev/apptcal/pkg/store"
)

// Run keeps the sync scheduler alive, follows connectivity and reloads when
// another process writes the store.
type Run struct {
	Service     *app.Service
	Persistence store.Persistence
	// Monitor reports connectivity. Its OnChange is replaced so transitions
	// reach the service.
	Monitor *connectivity.Monitor
	Log     *zap.SugaredLogger
}

func (r *Run) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("can not run, no service")
	}
	log := logger.Or(r.Log)

	r.Service.Start(ctx)
	defer r.Service.Close()

	if r.Monitor != nil {
		r.Monitor.OnChange = r.Service.SetIsOnline
		r.Monitor.Start(ctx)
	}

	var events <-chan store.Event
	if r.Persistence != nil {
		ch, err := r.Persistence.Watch(ctx)
		if err != nil {
			log.Warnw("not following store changes", "error", err)
		} else {
			events = ch
		}
	}

	log.Infow("running", "online", r.Service.Online(), "pending", r.Service.PendingCount())
	for {
		select {
		case <-ctx.Done():
			log.Infow("stopping", "pending", r.Service.PendingCount())
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			log.Debugw("store changed", "event", ev.Type)
			r.Service.Reload()
		}
	}
}

package commands

import (
	"context"

	"go.uber.org/zap"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/config"
	"tableflip.dev/apptcal/pkg/connectivity"
	"tableflip.dev/apptcal/pkg/logger"
	"tableflip.dev/apptcal/pkg/store"
	"tableflip.dev/apptcal/pkg/syncer"
)

// env is everything a command needs to talk to the calendar.
type env struct {
	Settings    *config.Settings
	Log         *zap.Logger
	Persistence *store.Adapter
	Monitor     *connectivity.Monitor
	App         *app.Service
}

// setup resolves config, opens the store and loads the calendar. The first
// connectivity answer is taken synchronously so one-shot commands know
// whether they can sync.
func setup(ctx context.Context) (*env, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	zl := logger.New(settings.LogLevel, logger.Format(settings.LogFormat))

	p, err := store.Open(settings, zl.Named(logger.ComponentStore).Sugar())
	if err != nil {
		_ = zl.Sync()
		return nil, err
	}

	probe := connectivity.ForSettings(settings.ProbeAddress, settings.ProbeTimeout, settings.Online)
	if offline {
		probe = connectivity.Static(false)
	}
	monitor := connectivity.NewMonitor(probe, settings.ProbeInterval, nil, zl.Named(logger.ComponentConnectivity).Sugar())
	online := monitor.Check(ctx)

	a := app.New(app.Options{
		Persistence: p,
		Remote:      syncer.Simulated{Delay: settings.SyncDelay},
		Sync: syncer.Config{
			AttemptTimeout: settings.SyncTimeout,
			MaxRetries:     settings.MaxRetries,
			BackoffInitial: settings.BackoffInitial,
			BackoffMax:     settings.BackoffMax,
		},
		Online: online,
		Logger: zl.Named(logger.ComponentApp).Sugar(),
	})
	a.LoadFromStorage()

	return &env{
		Settings:    settings,
		Log:         zl,
		Persistence: p,
		Monitor:     monitor,
		App:         a,
	}, nil
}

func (e *env) Close() {
	e.App.Close()
	_ = e.Log.Sync()
}

package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/runner/run"
)

func addRun(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep syncing in the foreground",
		Long: `Run watches connectivity and the store on disk. Queued changes are sent as
soon as the remote is reachable, including changes made by other apptcal
commands while it is running. Stop it with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			r := run.Run{
				Service:     e.App,
				Persistence: e.Persistence,
				Monitor:     e.Monitor,
				Log:         e.Log.Sugar(),
			}
			return r.Do(ctx)
		},
	}

	topLevel.AddCommand(cmd)
}

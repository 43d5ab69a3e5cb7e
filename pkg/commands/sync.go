package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/commands/options"
	"tableflip.dev/apptcal/pkg/runner/drain"
)

func addSync(topLevel *cobra.Command) {
	var retryFailed bool
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Send queued changes to the remote",
		Long: `Sync runs one pass over the queue of changes the remote has not confirmed yet.
Changes that are not due for a retry yet stay queued. Appointments whose
changes were given up on can be queued again with --retry-failed.`,
		Example: `
apptcal sync
apptcal sync --retry-failed
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := drain.Drain{
				RetryFailed: retryFailed,
				JSON:        oo.JSON,
				Service:     e.App,
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "Queue failed appointments again before syncing.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

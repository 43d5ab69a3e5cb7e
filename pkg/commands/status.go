package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/commands/options"
	"tableflip.dev/apptcal/pkg/runner/status"
)

func addStatus(topLevel *cobra.Command) {
	var showQueue bool
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and pending changes",
		Example: `
apptcal status
apptcal status --queue --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := status.Status{
				Config:    e.Settings,
				ShowQueue: showQueue,
				JSON:      oo.JSON,
				Service:   e.App,
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVarP(&showQueue, "queue", "q", false, "List the queued operations.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

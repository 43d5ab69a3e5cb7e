package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/commands/options"
	"tableflip.dev/apptcal/pkg/runner/remove"
)

func addDelete(topLevel *cobra.Command) {
	so := &options.SyncOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete appointments",
		Example: `
apptcal delete apt-2
apptcal rm apt-2 apt-5 --offline
`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: idCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := remove.Remove{
				IDs:     args,
				Wait:    !so.NoWait,
				JSON:    oo.JSON,
				Service: e.App,
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddSyncArgs(cmd, so)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

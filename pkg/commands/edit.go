package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/commands/options"
	"tableflip.dev/apptcal/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	ao := &options.AppointmentOptions{}
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	so := &options.SyncOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an appointment",
		Long:  "Edit changes only the fields given as flags. Everything else is left as it is.",
		Example: `
apptcal edit apt-1 --time=10:00
apptcal edit apt-3 --title="School run" --on=tomorrow
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := on.GetOn(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}
			patch, err := ao.Patch(cmd, date)
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := setup(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := edit.Edit{
				ID:      args[0],
				Patch:   patch,
				Wait:    !so.NoWait,
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
				Service: e.App,
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&ao.Title, "title", "", "New title.")
	options.AddAppointmentArgs(cmd, ao)
	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)
	options.AddSyncArgs(cmd, so)
	options.AddOutputArg(cmd, oo)

	_ = cmd.RegisterFlagCompletionFunc("category", categoryCompletions)
	cmd.ValidArgsFunction = idCompletions
	topLevel.AddCommand(cmd)
}

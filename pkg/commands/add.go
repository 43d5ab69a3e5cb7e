package commands

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/commands/options"
	"tableflip.dev/apptcal/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	ao := &options.AppointmentOptions{}
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	so := &options.SyncOptions{}
	oo := &options.OutputOptions{}
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add an appointment",
		Example: `
apptcal add Team standup --on=2026-1-5 --time=09:00
apptcal add Dentist --on=tomorrow --time=14:30 --category=home
apptcal add Offsite --on=3/12 --all-day
apptcal add -i
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 && !i.Interactive {
				return errors.New("requires a title")
			}
			ao.Title = strings.Join(args, " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if i.Interactive {
				if err := promptAppointment(cmd, ao, on); err != nil {
					return oo.HandleError(err)
				}
			}
			date, err := on.GetOn(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}
			if date == "" {
				return oo.HandleError(errors.New("requires a date, use --on"))
			}
			in, err := ao.Input(date)
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := setup(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := add.Add{
				Input:   in,
				Wait:    !so.NoWait,
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
				Service: e.App,
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddAppointmentArgs(cmd, ao)
	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)
	options.AddSyncArgs(cmd, so)
	options.AddOutputArg(cmd, oo)
	options.AddInteractiveArgs(cmd, i)
	_ = cmd.RegisterFlagCompletionFunc("category", categoryCompletions)
	topLevel.AddCommand(cmd)
}

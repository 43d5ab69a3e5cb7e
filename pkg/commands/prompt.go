package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/commands/options"
	"tableflip.dev/apptcal/pkg/snake"
)

// promptAppointment fills in the appointment fields left empty on the
// command line.
func promptAppointment(cmd *cobra.Command, ao *options.AppointmentOptions, on *options.OnOptions) error {
	p := snake.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	flags := cmd.Flags()
	var err error

	if ao.Title == "" {
		if ao.Title, err = p.String("Title", "", snake.Required); err != nil {
			return err
		}
	}
	if on.OnString == "" {
		on.OnString, err = p.String("Date", "today", func(input string) error {
			_, err := options.ParseDay(input, time.Now())
			return err
		})
		if err != nil {
			return err
		}
	}
	if !flags.Changed("category") {
		var names []string
		for _, c := range appointment.AllCategories() {
			names = append(names, string(c))
		}
		if ao.Category, err = p.Choose("Category", names, ao.Category); err != nil {
			return err
		}
	}
	if !flags.Changed("all-day") {
		if ao.AllDay, err = p.Bool("All day", false); err != nil {
			return err
		}
	}
	if !ao.AllDay && !flags.Changed("time") {
		ao.Time, err = p.String("Time (HH:MM, empty for none)", "", func(input string) error {
			if input == "" {
				return nil
			}
			_, err := time.Parse(appointment.TimeLayout, input)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

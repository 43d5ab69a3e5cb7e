package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func addReset(topLevel *cobra.Command) {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the calendar and start over with the sample appointments",
		Long: `Reset clears the stored appointments and the queue of unsynced changes.
Unsynced changes are lost. The calendar is seeded again with the sample
appointments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset erases every appointment, pass --yes to confirm")
			}
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			e.App.Reset()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset %s, %d appointments\n",
				e.Settings.BasePath(), len(e.App.Appointments()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset.")
	topLevel.AddCommand(cmd)
}

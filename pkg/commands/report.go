package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/commands/options"
	"tableflip.dev/apptcal/pkg/printers"
	"tableflip.dev/apptcal/pkg/timeutil"
)

func addReport(topLevel *cobra.Command) {
	var (
		next string
		last string
		from string
		to   string
	)
	fo := &options.FilterOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"agenda"},
		Short:   "Display appointments grouped by day",
		Long: `Report lists appointments grouped by day within a window of whole days.
By default it shows the coming week starting today.

Examples:
  apptcal report
  apptcal report --next 2w --category work
  apptcal report --last 3d
  apptcal report --from 2026-1-1 --to 2026-1-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			since, until, label, err := reportWindow(now, next, last, from, to)
			if err != nil {
				return oo.HandleError(err)
			}
			filter, err := fo.Filter()
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := setup(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			e.App.SetCategoryFilter(filter)
			agenda := e.App.Agenda(since, until)
			if oo.JSON {
				return printers.JSON(cmd.OutOrStdout(), agenda)
			}

			pp := printers.PrettyPrint{ShowID: io.ShowID, Out: cmd.OutOrStdout()}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report · %s (%s → %s)\n", label, agenda.From, agenda.To)
			if agenda.Total == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  No appointments in this window.")
				return nil
			}
			pp.Agenda(agenda)
			return nil
		},
	}

	cmd.Flags().StringVar(&next, "next", "", "days to include starting today (for example 3d, 2w)")
	cmd.Flags().StringVar(&last, "last", "", "days to include ending today (for example 3d, 1w)")
	cmd.Flags().StringVar(&from, "from", "", "first day to include, example: 2026-1-1")
	cmd.Flags().StringVar(&to, "to", "", "last day to include, example: 2026-1-31")
	options.AddFilterArgs(cmd, fo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

// reportWindow resolves the report flags into an inclusive day range and a
// label describing it.
func reportWindow(now time.Time, next, last, from, to string) (time.Time, time.Time, string, error) {
	set := 0
	for _, v := range []string{next, last, from + to} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return time.Time{}, time.Time{}, "", errors.New("use only one of --next, --last or --from/--to")
	}

	switch {
	case from != "" || to != "":
		if from == "" || to == "" {
			return time.Time{}, time.Time{}, "", errors.New("--from and --to go together")
		}
		since, err := parseReportDay(from, now)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		until, err := parseReportDay(to, now)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		return since, until, "range", nil
	case last != "":
		days, label, err := timeutil.ParseSpan(last)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		since, until := timeutil.Window(now, -days)
		return since, until, "last " + label, nil
	default:
		days, label, err := timeutil.ParseSpan(next)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		since, until := timeutil.Window(now, days)
		return since, until, "next " + label, nil
	}
}

func parseReportDay(raw string, now time.Time) (time.Time, error) {
	day, err := options.ParseDay(raw, now)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(appointment.DateLayout, day, now.Location())
}

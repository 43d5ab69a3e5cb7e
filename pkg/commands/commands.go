package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	// offline forces the connectivity probe to report offline.
	offline bool
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "apptcal",
		Short: base.Wrap80("An offline-first appointment calendar on the command line."),
		Long: base.Wrap80("apptcal keeps a calendar of work and home appointments on disk. " +
			"Every change is stored locally first and queued until the remote confirms it, " +
			"so the calendar keeps working while offline."),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVar(&offline, "offline", false, "Treat the remote as unreachable, changes stay queued.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addAdd(topLevel)
	addList(topLevel)
	addView(topLevel)
	addEdit(topLevel)
	addDelete(topLevel)
	addSync(topLevel)
	addStatus(topLevel)
	addReset(topLevel)
	addReport(topLevel)
	addRun(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

package commands

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/appointment"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(apptcal completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(apptcal completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// idCompletions offers the ids of stored appointments with their titles.
func idCompletions(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	e, err := setup(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer e.Close()

	var ids []string
	for _, a := range e.App.Appointments() {
		if strings.HasPrefix(a.ID, toComplete) {
			ids = append(ids, a.ID+"\t"+a.Date+" "+a.Title)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func categoryCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, c := range appointment.AllCategories() {
		names = append(names, string(c))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/commands/options"
	"tableflip.dev/apptcal/pkg/runner/get"
)

func addList(topLevel *cobra.Command) {
	fo := &options.FilterOptions{}
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "get"},
		Short:   "List appointments",
		Example: `
apptcal list
apptcal list --category=work
apptcal list --on=today --show-id
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := newGet(fo, on, io, oo)
			if err != nil {
				return oo.HandleError(err)
			}
			return runGet(cmd, g, oo)
		},
	}

	options.AddFilterArgs(cmd, fo)
	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addView(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the calendar as a month, a year or a planner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	for _, mode := range appointment.AllViewModes() {
		addViewMode(cmd, mode)
	}
	topLevel.AddCommand(cmd)
}

func addViewMode(topLevel *cobra.Command, mode appointment.ViewMode) {
	fo := &options.FilterOptions{}
	on := &options.OnOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   string(mode),
		Short: "Show the " + string(mode) + " view",
		Example: `
apptcal view ` + string(mode) + `
apptcal view ` + string(mode) + ` --on=2026-1-5 --category=home
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := newGet(fo, on, io, oo)
			if err != nil {
				return oo.HandleError(err)
			}
			g.View = mode
			return runGet(cmd, g, oo)
		},
	}

	options.AddFilterArgs(cmd, fo)
	options.AddOnArgs(cmd, on)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func newGet(fo *options.FilterOptions, on *options.OnOptions, io *options.IDOptions, oo *options.OutputOptions) (*get.Get, error) {
	filter, err := fo.Filter()
	if err != nil {
		return nil, err
	}
	date, err := on.GetOn(time.Now())
	if err != nil {
		return nil, err
	}
	return &get.Get{
		ShowID: io.ShowID,
		JSON:   oo.JSON,
		Filter: filter,
		Date:   date,
	}, nil
}

func runGet(cmd *cobra.Command, g *get.Get, oo *options.OutputOptions) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return oo.HandleError(err)
	}
	defer e.Close()

	g.Service = e.App
	return oo.HandleError(g.Do(cmd.Context()))
}

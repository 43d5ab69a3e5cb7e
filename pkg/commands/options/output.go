package options

import (
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/printers"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError prints err as a JSON object when --json is set so scripted
// callers always get a parseable document.
func (o *OutputOptions) HandleError(err error) error {
	return o.handleError(color.Output, err)
}

func (o *OutputOptions) handleError(w io.Writer, err error) error {
	if !o.JSON || err == nil {
		return err
	}
	if perr := printers.JSON(w, map[string]string{"error": err.Error()}); perr != nil {
		return perr
	}
	return nil
}

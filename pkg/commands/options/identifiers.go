package options

import (
	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	IDs    []string
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each appointment.")
}

// SyncOptions controls whether a mutating command waits for the remote.
type SyncOptions struct {
	NoWait bool
}

func AddSyncArgs(cmd *cobra.Command, o *SyncOptions) {
	cmd.Flags().BoolVar(&o.NoWait, "no-wait", false,
		"Return without waiting for the change to sync.")
}

package options

import (
	"github.com/spf13/cobra"
)

// IDOptions
type IDOptions struct {
	ShowID bool
	ID     string
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each item.")
}

// TreeOptions control how much of the forest is loaded before printing.
type TreeOptions struct {
	Depth  int
	Expand []string
}

func AddTreeArgs(cmd *cobra.Command, o *TreeOptions) {
	cmd.Flags().IntVarP(&o.Depth, "depth", "d", 0,
		"Expand every container this many levels below the roots.")
	cmd.Flags().StringSliceVarP(&o.Expand, "expand", "e", nil,
		"Expand the given item ids, in order, after --depth is applied.")
}

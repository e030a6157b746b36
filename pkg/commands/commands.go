package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/stow/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
	conn   = &options.ConnectionOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "stow",
		Short: base.Wrap80("Browse and reorganize an inventory of nested containers from the terminal."),
		Long: options.Wrap80(`stow shows the items of an inventory service as a tree of containers.
Containers are loaded lazily as they are opened. An item that contains one of its
own ancestors is never shown beneath itself. Items can be renamed, soft deleted and
moved, either from the interactive tree (stow ui) or from the command line.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	if err := options.AddConnectionArgs(cmd, conn, viper.GetViper()); err != nil {
		panic(err)
	}
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addTree(topLevel)
	addShow(topLevel)
	addRename(topLevel)
	addDelete(topLevel)
	addRestore(topLevel)
	addMove(topLevel)
	addKey(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

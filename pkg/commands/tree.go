package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/stow/pkg/commands/options"
	"tableflip.dev/stow/pkg/runner/get"
)

func addTree(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	to := &options.TreeOptions{}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "print the containment tree",
		Long: options.Wrap80(`Print the root containers. Containers left open in the interactive tree are
opened again, and --depth or --expand open more.`),
		Example: `
stow tree
stow tree --depth 2
stow tree --expand 12 --expand 40 --json
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			eng, err := e.engine(true)
			if err != nil {
				return output.HandleError(err)
			}
			defer eng.Close()
			s := get.Get{
				ShowID: io.ShowID,
				JSON:   output.JSON,
				Depth:  to.Depth,
				Expand: to.Expand,
				Engine: eng,
				Out:    cmd.OutOrStdout(),
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddTreeArgs(cmd, to)
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

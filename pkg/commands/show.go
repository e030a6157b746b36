package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/stow/pkg/commands/options"
	"tableflip.dev/stow/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show <item id>",
		Short: "print one item",
		Example: `
stow show 42
stow show 42 --json
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errors.New("requires an item id")
			}
			return nil
		},
		ValidArgsFunction: itemCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := show.Show{
				ID:     strings.TrimSpace(args[0]),
				JSON:   output.JSON,
				Config: e.cfg,
				Items:  e.client,
				Out:    cmd.OutOrStdout(),
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/stow/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the interactive tree",
		Long: `Open the interactive tree. Enter or a click on the arrow opens a container.
A click on a name opens the edit dialog; a double click or a middle click opens
the item's detail page instead.`,
		Example: `
stow ui
stow ui --server http://inventory.local:8000
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return errors.New("stow ui needs a terminal; use stow tree for plain output")
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.Close()
			eng, err := e.engine(true)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Options{
				Engine: eng,
				Config: *e.cfg,
				Logger: e.log,
			})
		},
	}

	topLevel.AddCommand(cmd)
}

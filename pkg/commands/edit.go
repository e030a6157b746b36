package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/stow/pkg/commands/options"
	"tableflip.dev/stow/pkg/mutate"
	"tableflip.dev/stow/pkg/runner/edit"
)

// target loads the environment and an engine for a single mutation. The
// open state is not touched, so these commands work without a state dir.
func target(ctx context.Context, cmd *cobra.Command, id string, run func(context.Context, edit.Target) error) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	eng, err := e.engine(false)
	if err != nil {
		return err
	}
	defer eng.Close()
	return run(ctx, edit.Target{
		ID:     strings.TrimSpace(id),
		JSON:   output.JSON,
		Engine: eng,
		Out:    cmd.OutOrStdout(),
	})
}

func requireArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return errors.New("requires " + what)
		}
		return nil
	}
}

func addRename(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "rename <item id> <name>",
		Short: "change the name of an item",
		Example: `
stow rename 42 "Garage shelf"
stow rename 42 Garage shelf
`,
		Args:              requireArgs(2, "an item id and a name"),
		ValidArgsFunction: itemCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := target(cmd.Context(), cmd, args[0], func(ctx context.Context, t edit.Target) error {
				r := edit.Rename{Target: t, Name: strings.Join(args[1:], " ")}
				return r.Do(ctx)
			})
			return output.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete <item id>",
		Aliases: []string{"rm"},
		Short:   "soft delete an item",
		Long: options.Wrap80(`Flag an item as deleted. The item keeps its place in the tree and is shown
with a (deleted) suffix until it is restored.`),
		Example: `
stow delete 42
`,
		Args:              requireArgs(1, "an item id"),
		ValidArgsFunction: itemCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := target(cmd.Context(), cmd, args[0], func(ctx context.Context, t edit.Target) error {
				d := edit.Delete{Target: t}
				return d.Do(ctx)
			})
			return output.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addRestore(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "restore <item id>",
		Short: "clear the deleted flag on an item",
		Example: `
stow restore 42
`,
		Args:              requireArgs(1, "an item id"),
		ValidArgsFunction: itemCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := target(cmd.Context(), cmd, args[0], func(ctx context.Context, t edit.Target) error {
				d := edit.Delete{Target: t, Restore: true}
				return d.Do(ctx)
			})
			return output.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command) {
	pinned := false

	cmd := &cobra.Command{
		Use:     "move <item id> [destination id]",
		Aliases: []string{"mv"},
		Short:   "move an item into another container",
		Long: options.Wrap80(`Move an item into another container, then print the reloaded roots. The
destination may be "pinned" (or --pinned) for the pinned item.`),
		Example: `
stow move 42 7
stow move 42 --pinned
`,
		Args: func(cmd *cobra.Command, args []string) error {
			switch {
			case len(args) == 0:
				return errors.New("requires an item id")
			case len(args) == 1 && !pinned:
				return errors.New("requires a destination id or --pinned")
			case len(args) > 2:
				return errors.New("too many arguments")
			}
			return nil
		},
		ValidArgsFunction: itemCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := mutate.PinnedDestination
			if len(args) == 2 {
				dest = args[1]
			}
			err := target(cmd.Context(), cmd, args[0], func(ctx context.Context, t edit.Target) error {
				m := edit.Move{Target: t, Destination: dest}
				return m.Do(ctx)
			})
			return output.HandleError(err)
		},
	}

	cmd.Flags().BoolVarP(&pinned, "pinned", "p", false, "Move into the pinned item.")
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

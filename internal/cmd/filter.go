package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/linefilter/internal/engine"
	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/util"
)

func newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Inspect or change the filters remembered for a file",
		Long: `Inspect or change the set of filter patterns remembered for a file.

Changes take effect the next time the file is applied, viewed or watched.

Examples:
  linefilter filter show notes.md
  linefilter filter toggle notes.md TODO
  linefilter filter saved notes.md chores
  linefilter filter rename old.md new.md`,
	}

	cmd.AddCommand(
		newFilterShowCmd(),
		newFilterMutationCmd("toggle <file> <pattern>", "Add a pattern, or remove it when already active", cobra.ExactArgs(2),
			func(v *engine.View, args []string) (filter.VisibilityMap, error) { return v.Toggle(args[0]) }),
		newFilterMutationCmd("manual <file> <pattern>", "Replace the filters with one pattern (empty clears)", cobra.ExactArgs(2),
			func(v *engine.View, args []string) (filter.VisibilityMap, error) { return v.ApplyManual(args[0]) }),
		newFilterMutationCmd("set <file> [pattern...]", "Replace the filters with the given patterns", cobra.MinimumNArgs(1),
			func(v *engine.View, args []string) (filter.VisibilityMap, error) { return v.SetPatterns(args) }),
		newFilterMutationCmd("clear <file>", "Remove every filter", cobra.ExactArgs(1),
			func(v *engine.View, _ []string) (filter.VisibilityMap, error) { return v.Clear() }),
		newFilterSavedCmd(),
		newFilterRenameCmd(),
	)
	return cmd
}

func newFilterShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show the active filters of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			view, err := rt.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			writeFilterSummary(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

// newFilterMutationCmd builds a subcommand that opens the file named by the
// first argument and runs mutate with the remaining arguments.
func newFilterMutationCmd(use, short string, args cobra.PositionalArgs, mutate func(*engine.View, []string) (filter.VisibilityMap, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilterMutation(cmd, args[0], func(_ *runtime, v *engine.View) (filter.VisibilityMap, error) {
				return mutate(v, args[1:])
			})
		},
	}
}

func newFilterSavedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saved <file> <ref>",
		Short: "Toggle a saved pattern by ID, ID prefix or name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilterMutation(cmd, args[0], func(rt *runtime, v *engine.View) (filter.VisibilityMap, error) {
				return rt.engine.ToggleSaved(v, args[1])
			})
		},
	}
}

func newFilterRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Move remembered filters to a file's new path",
		Long: `Move the filters remembered for a file to its new path after the file
was renamed or moved. Nothing happens when the old path has no filters.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldID, err := documentArg(args[0])
			if err != nil {
				return err
			}
			newID, err := documentArg(args[1])
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.engine.Rename(cmd.Context(), oldID, newID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved filters from %s to %s\n", oldID, newID)
			return nil
		},
	}
}

// runFilterMutation opens path, applies mutate, waits for the new set to be
// stored and prints the resulting filters.
func runFilterMutation(cmd *cobra.Command, path string, mutate func(*runtime, *engine.View) (filter.VisibilityMap, error)) error {
	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	view, err := rt.open(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer view.Close()

	if _, err := mutate(rt, view); err != nil {
		return err
	}
	if err := rt.engine.Flush(cmd.Context()); err != nil {
		return err
	}

	writeFilterSummary(cmd.OutOrStdout(), view)
	return nil
}

// writeFilterSummary prints the active patterns of view, their template
// expansion where it differs, and the resulting line counts.
func writeFilterSummary(w io.Writer, view *engine.View) {
	patterns := view.Patterns()
	resolved := view.ResolvedPatterns()
	vis := view.Visibility()

	fmt.Fprintf(w, "%s\n", view.ID())
	if len(patterns) == 0 {
		fmt.Fprintln(w, "  no active filters")
	}
	for i, p := range patterns {
		if i < len(resolved) && resolved[i] != p {
			fmt.Fprintf(w, "  %d. %s  => %s\n", i+1, p, resolved[i])
			continue
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, p)
	}

	hidden := vis.HiddenCount()
	fmt.Fprintf(w, "%d of %d %s shown\n", len(vis)-hidden, len(vis), util.Plural(len(vis), "line"))
	if err := view.CompositionError(); err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
	}
}

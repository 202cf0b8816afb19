package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/linefilter/internal/engine"
	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/util"
)

// flagOverrides are the visibility flags a command accepts on top of the
// configured ones.
type flagOverrides struct {
	hideEmpty       bool
	children        bool
	headingChildren bool
}

func (o *flagOverrides) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.hideEmpty, "hide-empty", true, "Hide blank lines no match reached")
	cmd.Flags().BoolVar(&o.children, "children", true, "Show the indented lines under a match")
	cmd.Flags().BoolVar(&o.headingChildren, "heading-children", false, "Show the whole section under a matched heading")
}

// apply returns base with every flag the user set explicitly replaced.
func (o *flagOverrides) apply(cmd *cobra.Command, base filter.Options) (filter.Options, bool) {
	changed := false
	if cmd.Flags().Changed("hide-empty") {
		base.HideEmptyLines = o.hideEmpty
		changed = true
	}
	if cmd.Flags().Changed("children") {
		base.IncludeChildItems = o.children
		changed = true
	}
	if cmd.Flags().Changed("heading-children") {
		base.IncludeHeadingChildItems = o.headingChildren
		changed = true
	}
	return base, changed
}

func newApplyCmd() *cobra.Command {
	var (
		patterns []string
		annotate bool
		stats    bool
		flags    flagOverrides
	)

	cmd := &cobra.Command{
		Use:   "apply <file>",
		Short: "Print the lines of a file that its filters leave visible",
		Long: `Print the lines of a file that its active filters leave visible.

Without --pattern the filters saved for the file are used. Each --pattern
replaces the saved set, and the new set is remembered for the file.

Examples:
  # Show the file through its saved filters
  linefilter apply notes.md

  # Filter by two patterns and remember them
  linefilter apply notes.md -p TODO -p '#urgent'

  # Mark every line as shown (+) or hidden (-)
  linefilter apply notes.md --annotate`,
		Args: cobra.ExactArgs(1),
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

			if cmd.Flags().Changed("pattern") {
				if _, err := view.SetPatterns(patterns); err != nil {
					return err
				}
			}
			if opts, changed := flags.apply(cmd, view.State().Flags()); changed {
				if _, err := view.SetFlags(opts); err != nil {
					return err
				}
			}

			lines, err := view.Source().Lines()
			if err != nil {
				return err
			}
			vis := view.Visibility()

			out := cmd.OutOrStdout()
			if annotate {
				writeAnnotated(out, lines, vis)
			} else {
				for _, line := range filter.Apply(lines, vis) {
					fmt.Fprintln(out, line)
				}
			}
			if stats {
				writeStats(cmd.ErrOrStderr(), view, lines, vis)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&patterns, "pattern", "p", nil, "Filter pattern (repeatable, replaces the saved set)")
	cmd.Flags().BoolVar(&annotate, "annotate", false, "Print every line prefixed with + (shown) or - (hidden)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print a summary of shown and hidden lines to stderr")
	flags.register(cmd)

	return cmd
}

func writeAnnotated(w io.Writer, lines []string, vis filter.VisibilityMap) {
	for i, line := range lines {
		mark := "+"
		if vis.Hidden(i) {
			mark = "-"
		}
		fmt.Fprintf(w, "%s %s\n", mark, line)
	}
}

func writeStats(w io.Writer, view *engine.View, lines []string, vis filter.VisibilityMap) {
	hidden := vis.HiddenCount()
	patterns := len(view.Patterns())
	fmt.Fprintf(w, "shown %s of %s lines (%s hidden) using %d %s\n",
		humanize.Comma(int64(len(lines)-hidden)),
		humanize.Comma(int64(len(lines))),
		humanize.Comma(int64(hidden)),
		patterns, util.Plural(patterns, "pattern"),
	)
}

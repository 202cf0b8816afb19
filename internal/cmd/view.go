package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/linefilter/internal/tui"
)

func newViewCmd() *cobra.Command {
	var (
		noWatch bool
		flags   flagOverrides
	)

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Open a file in the interactive filtered viewer",
		Long: `Open a file in the interactive viewer. Type / to enter a pattern,
1-9 to toggle pinned saved patterns and ? for every key binding.

The viewer reloads the file whenever it changes on disk unless --no-watch
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("view needs a terminal; use 'linefilter apply' to print the filtered lines")
			}

			// Warnings are shown in the viewer's status bar instead.
			rt, err := openRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			view, err := rt.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			if opts, changed := flags.apply(cmd, view.State().Flags()); changed {
				if _, err := view.SetFlags(opts); err != nil {
					return err
				}
			}

			opts := tui.Options{
				Catalog:           rt.catalog,
				Theme:             rt.cfg.TUI.Theme,
				ShowLineNumbers:   rt.cfg.TUI.ShowLineNumbers,
				ShowHiddenMarkers: rt.cfg.TUI.ShowHiddenMarkers,
			}
			if !noWatch {
				opts.WatchPath = view.Source().ID()
			}

			if termWidth, termHeight, err := term.GetSize(int(os.Stdout.Fd())); err != nil {
				rt.logger.Info("terminal size detection failed", "error", err.Error())
			} else {
				rt.logger.Info("viewer started", "document", view.ID(), "width", termWidth, "height", termHeight)
			}
			return tui.New(rt.engine, view, opts).Run()
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the file when it changes")
	flags.register(cmd)
	return cmd
}

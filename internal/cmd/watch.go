package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/linefilter/internal/engine"
	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		debounce time.Duration
		flags    flagOverrides
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Print a file's visible lines again every time it changes",
		Long: `Print the lines a file's filters leave visible, then print them again
every time the file is written. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := openRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			view, err := rt.open(ctx, args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			if opts, changed := flags.apply(cmd, view.State().Flags()); changed {
				if _, err := view.SetFlags(opts); err != nil {
					return err
				}
			}

			w, err := watch.New(watch.WithDebounce(debounce), watch.WithLogger(rt.logger))
			if err != nil {
				return err
			}
			return watchView(ctx, cmd.OutOrStdout(), w, view)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a burst of writes is handled")
	flags.register(cmd)
	return cmd
}

// watchView prints view, then reprints it after every change w reports for
// its file, until ctx is done. It starts and stops w.
func watchView(ctx context.Context, out io.Writer, w *watch.Watcher, view *engine.View) error {
	path := view.Source().ID()
	if err := w.Add(path); err != nil {
		return err
	}

	changed := make(chan struct{}, 1)
	w.SetChangeCallback(func([]string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	printView(out, view, view.Visibility())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			vis, err := view.Recompute()
			if err != nil {
				fmt.Fprintf(out, "--- %s: %v ---\n", time.Now().Format("15:04:05"), err)
				continue
			}
			printView(out, view, vis)
		}
	}
}

func printView(out io.Writer, view *engine.View, vis filter.VisibilityMap) {
	lines, err := view.Source().Lines()
	if err != nil {
		return
	}
	fmt.Fprintf(out, "--- %s  %d of %d lines ---\n", time.Now().Format("15:04:05"), vis.VisibleCount(), len(lines))
	for _, line := range filter.Apply(lines, vis) {
		fmt.Fprintln(out, line)
	}
}

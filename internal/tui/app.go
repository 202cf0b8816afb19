// Package tui implements the interactive filtered-document viewer.
package tui

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/linefilter/internal/engine"
	"github.com/Iron-Ham/linefilter/internal/event"
	"github.com/Iron-Ham/linefilter/internal/tui/styles"
	"github.com/Iron-Ham/linefilter/internal/watch"
	tea "github.com/charmbracelet/bubbletea"
)

// eventBuffer bounds how many bus events wait for the UI. Events beyond it
// are dropped; the model re-reads view state on the next one.
const eventBuffer = 64

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	engine  *engine.Engine
	opts    Options
}

// New creates a viewer for view.
func New(eng *engine.Engine, view *engine.View, opts Options) *App {
	styles.SetActiveTheme(styles.ThemeName(opts.Theme))
	return &App{
		model:  NewModel(eng, view, opts),
		engine: eng,
		opts:   opts,
	}
}

// Run starts the viewer and blocks until the user quits.
func (a *App) Run() error {
	events := make(chan event.Event, eventBuffer)
	bus := a.engine.Bus()
	subID := bus.SubscribeAll(func(ev event.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer bus.Unsubscribe(subID)

	var changes chan []string
	if a.opts.WatchPath != "" {
		w, err := watch.New()
		if err != nil {
			return err
		}
		defer w.Stop()
		if err := w.Add(a.opts.WatchPath); err != nil {
			return err
		}
		changes = make(chan []string, 1)
		w.SetChangeCallback(func(paths []string) {
			select {
			case changes <- paths:
			default:
			}
		})
		w.Start()
	}

	a.program = tea.NewProgram(
		a.model.withChannels(events, changes),
		tea.WithAltScreen(),
	)

	// Set up signal handling for graceful shutdown so pending filter
	// writes are flushed by the caller
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		if _, ok := <-sigChan; ok && a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	_, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

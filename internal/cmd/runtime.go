package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Iron-Ham/linefilter/internal/config"
	"github.com/Iron-Ham/linefilter/internal/document"
	"github.com/Iron-Ham/linefilter/internal/engine"
	"github.com/Iron-Ham/linefilter/internal/event"
	"github.com/Iron-Ham/linefilter/internal/logging"
	"github.com/Iron-Ham/linefilter/internal/persist"
	"github.com/Iron-Ham/linefilter/internal/saved"
)

// runtime holds the components a command works with, built from the loaded
// configuration.
type runtime struct {
	cfg     *config.Config
	logger  *logging.Logger
	bus     *event.Bus
	engine  *engine.Engine
	catalog *saved.FileCatalog

	warnSub string
}

// openRuntime loads configuration and wires the logger, store, event bus,
// engine and saved catalog together. Warnings published by the engine are
// written to warnings; a nil writer drops them.
func openRuntime(warnings io.Writer) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.New(cfg.Logging.LoggerOptions())
		if err != nil {
			return nil, err
		}
	}

	ignore, err := persist.NewIgnoreList(cfg.Persistence.Ignore)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	store, err := persist.Open(cfg.Persistence.Backend, cfg.Persistence.StoreDir())
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	bus := event.NewBus(logger)

	// The catalog validates patterns through the engine, which in turn
	// looks saved patterns up in the catalog.
	var eng *engine.Engine
	catalog, err := saved.Open(cfg.Saved.Path(), func(p string) error {
		return eng.ValidatePattern(p)
	})
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	eng, err = engine.New(engine.Config{
		Store:     persist.WithIgnore(store, ignore),
		Bus:       bus,
		Flags:     cfg.Filter.Options(),
		Templates: cfg.Filter.EnableTemplateVariables,
	},
		engine.WithLogger(logger),
		engine.WithCatalog(catalog),
		engine.WithOwnedStore(),
	)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, err
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		bus:     bus,
		engine:  eng,
		catalog: catalog,
	}
	if warnings != nil {
		rt.warnSub = bus.SubscribeAll(func(ev event.Event) {
			if msg := warningText(ev); msg != "" {
				fmt.Fprintf(warnings, "warning: %s\n", msg)
			}
		})
	}

	logger.Debug("runtime opened",
		"backend", cfg.Persistence.Backend,
		"store_dir", cfg.Persistence.StoreDir(),
		"saved_file", catalog.Path(),
	)
	return rt, nil
}

// open creates a view of the file at path.
func (r *runtime) open(ctx context.Context, path string) (*engine.View, error) {
	doc, err := document.NewFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := doc.Lines(); err != nil {
		return nil, err
	}
	return r.engine.Open(ctx, doc)
}

// Close flushes pending filter writes and releases the store and log file.
func (r *runtime) Close() error {
	if r.warnSub != "" {
		r.bus.Unsubscribe(r.warnSub)
	}
	err := r.engine.Close()
	if cerr := r.logger.Close(); err == nil {
		err = cerr
	}
	return err
}

// warningText describes the events a command-line user should see.
func warningText(ev event.Event) string {
	switch e := ev.(type) {
	case event.CompositionFailedEvent:
		return fmt.Sprintf("filters could not be combined, showing every line: %v", e.Err)
	case event.TemplateFormatWarningEvent:
		return fmt.Sprintf("invalid format %q for {{%s}}, using the default", e.Format, e.Variable)
	case event.PersistenceFailedEvent:
		return fmt.Sprintf("filters for %s were not saved: %v", e.DocumentID, e.Err)
	case event.ScanRecoveredEvent:
		return fmt.Sprintf("visibility scan failed for %s: %s", e.DocumentID, e.Panic)
	default:
		return ""
	}
}

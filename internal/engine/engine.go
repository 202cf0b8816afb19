package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Iron-Ham/linefilter/internal/document"
	"github.com/Iron-Ham/linefilter/internal/errors"
	"github.com/Iron-Ham/linefilter/internal/event"
	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/filterstate"
	"github.com/Iron-Ham/linefilter/internal/logging"
	"github.com/Iron-Ham/linefilter/internal/persist"
	"github.com/Iron-Ham/linefilter/internal/template"
)

// ErrClosed is returned by operations on a closed Engine.
var ErrClosed = errors.New("engine: closed")

// scanFunc computes a visibility map. It is swapped in tests to exercise
// panic recovery.
type scanFunc func(lines []string, m *filter.Matcher, opts filter.Options) filter.VisibilityMap

// Config holds required dependencies for creating an Engine.
type Config struct {
	// Store keeps each document's raw filter set.
	Store persist.Store
	// Bus receives every event the engine publishes.
	Bus *event.Bus
	// Flags are the visibility flags new views start with.
	Flags filter.Options
	// Templates enables {{variable}} expansion before composition.
	Templates bool
}

// Engine opens filtered views of documents and keeps their filter sets
// persisted. It is safe for concurrent use.
type Engine struct {
	store     persist.Store
	bus       *event.Bus
	flags     filter.Options
	templates bool

	resolver *template.Resolver
	writer   *persist.Writer
	logger   *logging.Logger
	catalog  SavedLookup
	scan     scanFunc
	ownStore bool

	mu     sync.Mutex
	views  map[*View]struct{}
	closed bool
}

// New creates an Engine and starts its persistence writer.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("engine: Store is required")
	}
	if cfg.Bus == nil {
		return nil, errors.New("engine: Bus is required")
	}

	ec := &engineConfig{}
	for _, opt := range opts {
		opt(ec)
	}
	logger := ec.logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	e := &Engine{
		store:     cfg.Store,
		bus:       cfg.Bus,
		flags:     cfg.Flags,
		templates: cfg.Templates,
		resolver:  template.NewResolver(ec.clock),
		logger:    logger.WithComponent("engine"),
		catalog:   ec.catalog,
		scan:      filter.ComputeVisibility,
		ownStore:  ec.ownsStore,
		views:     make(map[*View]struct{}),
	}

	writerOpts := []persist.WriterOption{
		persist.WithLogger(logger),
		persist.WithErrorHandler(e.onPersistenceError),
	}
	if ec.opTimeout > 0 {
		writerOpts = append(writerOpts, persist.WithOpTimeout(ec.opTimeout))
	}
	e.writer = persist.NewWriter(cfg.Store, writerOpts...)

	return e, nil
}

// Flags returns the flags new views start with.
func (e *Engine) Flags() filter.Options { return e.flags }

// TemplatesEnabled reports whether patterns are template-expanded.
func (e *Engine) TemplatesEnabled() bool { return e.templates }

// Bus returns the event bus the engine publishes to.
func (e *Engine) Bus() *event.Bus { return e.bus }

// Open creates a View of src seeded from its persisted filter set and
// computes the first visibility map. A failed read of the persisted record
// is reported and the view starts empty.
func (e *Engine) Open(ctx context.Context, src document.Source) (*View, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	e.mu.Unlock()

	id := src.ID()
	state := filterstate.New(e.flags)

	patterns, found, err := e.store.Get(ctx, id)
	if err != nil {
		perr := errors.NewPersistenceError("get", err).WithDocumentID(id)
		e.logger.WithDocument(id).Error("failed to load filter record", "error", err.Error())
		e.bus.Publish(event.NewPersistenceFailedEvent(id, perr.Operation, perr))
	} else if found {
		state, _ = state.ReplaceAll(patterns)
	}

	v := &View{engine: e, src: src, id: id, state: state}

	e.mu.Lock()
	e.views[v] = struct{}{}
	e.mu.Unlock()

	if found {
		v.publish([]event.Event{event.NewFilterChangedEvent(id, ReasonLoad, state.Patterns(), e.resolveQuiet(state.Patterns()))})
	}
	if _, err := v.Recompute(); err != nil {
		e.release(v)
		return nil, err
	}
	return v, nil
}

// Rename moves the durable filter record from oldID to newID and rebinds
// open views of oldID. It returns once the move has been applied or ctx
// is done. Filters in memory are not touched.
func (e *Engine) Rename(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	if !e.writer.Rename(oldID, newID) {
		return ErrClosed
	}

	e.mu.Lock()
	for v := range e.views {
		v.rebind(oldID, newID)
	}
	e.mu.Unlock()

	e.logger.Info("filter record renamed", "old_id", oldID, "new_id", newID)
	e.bus.Publish(event.NewDocumentRenamedEvent(oldID, newID))
	return e.writer.Flush(ctx)
}

// ValidatePattern rejects a pattern that would not compile. When templates
// are enabled the resolved form is checked.
func (e *Engine) ValidatePattern(pattern string) error {
	resolved := pattern
	if e.templates {
		resolved, _ = e.resolver.Resolve(pattern)
	}

	err := filter.Validate(resolved)
	if err == nil {
		return nil
	}
	var perr *errors.PatternError
	if errors.As(err, &perr) {
		return perr.WithPattern(pattern).WithResolved(resolved)
	}
	return err
}

// Resolve expands the template placeholders in pattern. It returns pattern
// unchanged when templates are disabled.
func (e *Engine) Resolve(pattern string) (string, []*errors.TemplateFormatWarning) {
	if !e.templates {
		return pattern, nil
	}
	return e.resolver.Resolve(pattern)
}

// ToggleSaved toggles the pattern of the saved item ref refers to.
func (e *Engine) ToggleSaved(v *View, ref string) (filter.VisibilityMap, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("toggle saved pattern %q: no catalog configured", ref)
	}
	item, err := e.catalog.Lookup(ref)
	if err != nil {
		return nil, err
	}
	return v.Toggle(item.Pattern)
}

// Stored returns the persisted raw patterns for id, waiting for queued
// writes first.
func (e *Engine) Stored(ctx context.Context, id string) ([]string, bool, error) {
	if err := e.writer.Flush(ctx); err != nil {
		return nil, false, errors.Wrapf(err, "wait for pending writes to %s", id)
	}
	return e.store.Get(ctx, id)
}

// Flush waits until every queued write has been applied.
func (e *Engine) Flush(ctx context.Context) error {
	return errors.Wrap(e.writer.Flush(ctx), "flush filter records")
}

// Close drains pending writes and stops the writer. Open views keep working
// from memory but no longer persist.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.views = make(map[*View]struct{})
	e.mu.Unlock()

	e.writer.Close()
	if e.ownStore {
		return e.store.Close()
	}
	return nil
}

// ViewCount returns the number of open views.
func (e *Engine) ViewCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.views)
}

func (e *Engine) release(v *View) {
	e.mu.Lock()
	delete(e.views, v)
	e.mu.Unlock()
}

func (e *Engine) save(id string, patterns []string) {
	if !e.writer.Set(id, patterns) {
		e.logger.WithDocument(id).Debug("engine closed, filter change not persisted")
	}
}

// onPersistenceError runs on the writer goroutine.
func (e *Engine) onPersistenceError(id string, err *errors.PersistenceError) {
	e.bus.Publish(event.NewPersistenceFailedEvent(id, err.Operation, err))
}

// resolveAll expands patterns when templates are enabled, returning the
// format warnings.
func (e *Engine) resolveAll(patterns []string) ([]string, []*errors.TemplateFormatWarning) {
	if !e.templates {
		return slices.Clone(patterns), nil
	}
	return e.resolver.ResolveAll(patterns)
}

func (e *Engine) resolveQuiet(patterns []string) []string {
	out, _ := e.resolveAll(patterns)
	return out
}

// validateNonBlank runs ValidatePattern on non-blank patterns. Blank input
// is handled by the state transitions themselves.
func (e *Engine) validateNonBlank(p string) error {
	if strings.TrimSpace(p) == "" {
		return nil
	}
	return e.ValidatePattern(p)
}

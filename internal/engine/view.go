package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Iron-Ham/linefilter/internal/document"
	"github.com/Iron-Ham/linefilter/internal/errors"
	"github.com/Iron-Ham/linefilter/internal/event"
	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/filterstate"
)

// Reasons carried by event.FilterChangedEvent.
const (
	ReasonToggle = "toggle"
	ReasonManual = "manual"
	ReasonClear  = "clear"
	ReasonSet    = "set"
	ReasonLoad   = "load"
	ReasonFlags  = "flags"
)

// ErrViewClosed is returned by mutations on a closed View.
var ErrViewClosed = errors.New("engine: view closed")

// View is the filtered presentation of one document. Every mutation
// re-reads the document, recomputes visibility and, when the raw set
// changed, queues a write of the new set. Events are published after the
// view's lock is released, so handlers may call back into the view.
type View struct {
	engine *Engine
	src    document.Source

	mu         sync.Mutex
	id         string
	state      filterstate.State
	vis        filter.VisibilityMap
	resolved   []string
	composeErr error
	closed     bool
}

// ID returns the identity the view persists under. It follows renames.
func (v *View) ID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.id
}

// Source returns the document the view reads.
func (v *View) Source() document.Source { return v.src }

// State returns the current filter state.
func (v *View) State() filterstate.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Patterns returns the active raw patterns.
func (v *View) Patterns() []string {
	return v.State().Patterns()
}

// ResolvedPatterns returns the patterns as they were last composed, after
// template expansion.
func (v *View) ResolvedPatterns() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.resolved)
}

// Visibility returns the last computed map.
func (v *View) Visibility() filter.VisibilityMap {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.vis)
}

// CompositionError returns the error from the last composition, or nil.
func (v *View) CompositionError() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.composeErr
}

// Toggle adds p to the active set, or removes it when already active.
// A pattern being added must pass ValidatePattern.
func (v *View) Toggle(p string) (filter.VisibilityMap, error) {
	return v.mutate(ReasonToggle, func(s filterstate.State) (filterstate.State, error) {
		if !s.Contains(p) {
			if err := v.engine.validateNonBlank(p); err != nil {
				return s, err
			}
		}
		return s.Toggle(p), nil
	})
}

// ApplyManual replaces the active set with p alone. A blank p clears it.
func (v *View) ApplyManual(p string) (filter.VisibilityMap, error) {
	return v.mutate(ReasonManual, func(s filterstate.State) (filterstate.State, error) {
		if err := v.engine.validateNonBlank(p); err != nil {
			return s, err
		}
		return s.ApplyManual(p), nil
	})
}

// Clear removes every active pattern.
func (v *View) Clear() (filter.VisibilityMap, error) {
	return v.mutate(ReasonClear, func(s filterstate.State) (filterstate.State, error) {
		return s.Clear(), nil
	})
}

// SetPatterns replaces the active set wholesale. Every non-blank pattern
// must pass ValidatePattern; nothing changes when one fails.
func (v *View) SetPatterns(patterns []string) (filter.VisibilityMap, error) {
	return v.mutate(ReasonSet, func(s filterstate.State) (filterstate.State, error) {
		for _, p := range patterns {
			if err := v.engine.validateNonBlank(p); err != nil {
				return s, err
			}
		}
		next, _ := s.ReplaceAll(patterns)
		return next, nil
	})
}

// SetFlags changes this view's visibility flags. Flags are not persisted.
func (v *View) SetFlags(flags filter.Options) (filter.VisibilityMap, error) {
	return v.mutate(ReasonFlags, func(s filterstate.State) (filterstate.State, error) {
		return s.WithFlags(flags), nil
	})
}

// Recompute re-reads the document and rebuilds the visibility map. When the
// document cannot be read the previous map is returned with the error.
func (v *View) Recompute() (filter.VisibilityMap, error) {
	v.mu.Lock()
	vis, events, err := v.recomputeLocked()
	v.mu.Unlock()

	v.publish(events)
	return vis, err
}

// Close detaches the view from its engine. Later mutations fail with
// ErrViewClosed.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.engine.release(v)
}

func (v *View) mutate(reason string, fn func(filterstate.State) (filterstate.State, error)) (filter.VisibilityMap, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}

	prev := v.state
	next, err := fn(prev)
	if err != nil {
		v.mu.Unlock()
		return nil, err
	}
	v.state = next

	var events []event.Event
	if !next.Equal(prev) {
		patterns := next.Patterns()
		events = append(events, event.NewFilterChangedEvent(v.id, reason, patterns, v.engine.resolveQuiet(patterns)))
		if reason != ReasonFlags {
			v.engine.save(v.id, patterns)
		}
		v.engine.logger.WithDocument(v.id).Debug("filter changed", "reason", reason, "patterns", len(patterns))
	}

	vis, more, err := v.recomputeLocked()
	v.mu.Unlock()

	v.publish(append(events, more...))
	return vis, err
}

// recomputeLocked runs resolution, composition and the scan. Callers hold
// v.mu; the returned events are published once it is released.
func (v *View) recomputeLocked() (filter.VisibilityMap, []event.Event, error) {
	logger := v.engine.logger.WithDocument(v.id)

	lines, err := v.src.Lines()
	if err != nil {
		logger.Warn("document unreadable", "error", err.Error())
		return slices.Clone(v.vis), nil, err
	}

	var events []event.Event
	patterns := v.state.Patterns()

	resolved, warnings := v.engine.resolveAll(patterns)
	for _, w := range warnings {
		logger.Warn("template format fell back to default", "variable", w.Variable, "format", w.Format)
		events = append(events, event.NewTemplateFormatWarningEvent(v.id, w.Variable, w.Format, w))
	}

	m, cerr := filter.Compose(resolved)
	if cerr != nil {
		logger.Warn("filter composition failed, showing every line", "error", cerr.Error())
		events = append(events, event.NewCompositionFailedEvent(v.id, cerr))
	}
	v.composeErr = cerr
	v.resolved = resolved

	vis, recovered := v.safeScan(lines, m, v.state.Flags())
	if recovered != nil {
		usedPrevious := v.vis != nil && len(v.vis) == len(lines)
		if usedPrevious {
			vis = slices.Clone(v.vis)
		} else {
			vis = filter.AllVisible(len(lines))
		}
		panicValue := fmt.Sprint(recovered)
		logger.Error("visibility scan panicked", "panic", panicValue, "used_previous", usedPrevious)
		events = append(events, event.NewScanRecoveredEvent(v.id, panicValue, usedPrevious))
	}
	v.vis = vis

	logger.Debug("visibility recomputed", "lines", len(lines), "hidden", vis.HiddenCount(), "patterns", len(patterns))
	events = append(events, event.NewVisibilityChangedEvent(v.id, slices.Clone([]bool(vis)), vis.HiddenCount(), m != nil))

	return slices.Clone(vis), events, nil
}

func (v *View) safeScan(lines []string, m *filter.Matcher, opts filter.Options) (vis filter.VisibilityMap, recovered any) {
	defer func() {
		if r := recover(); r != nil {
			vis, recovered = nil, r
		}
	}()
	return v.engine.scan(lines, m, opts), nil
}

func (v *View) rebind(oldID, newID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.id == oldID {
		v.id = newID
	}
}

func (v *View) publish(events []event.Event) {
	for _, ev := range events {
		v.engine.bus.Publish(ev)
	}
}

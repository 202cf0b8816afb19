// Package engine connects filter state, template expansion, composition,
// visibility and persistence for open documents.
//
// An [Engine] is created once per process. Each call to [Engine.Open]
// returns a [View] for one document, seeded from the filter set persisted
// for that document's identity. Mutations on a View are synchronous: the
// document is re-read, patterns are expanded and combined, the visibility
// map is rebuilt, and the result is returned and published as an
// [event.VisibilityChangedEvent]. Writing the new raw set to the
// [persist.Store] happens on a background writer and never blocks or fails
// the mutation.
//
// # Failure Policy
//
// Nothing the engine does hides content because something went wrong:
//
//   - a pattern that does not compile is rejected by [Engine.ValidatePattern]
//     before it enters a set
//   - a combined expression that still fails to compile shows every line
//   - a panicking scan reuses the previous map when the line count is
//     unchanged, otherwise shows every line
//   - persistence failures are published once per document and otherwise
//     ignored
//
// # Basic Usage
//
//	eng, err := engine.New(engine.Config{
//	    Store: store,
//	    Bus:   bus,
//	    Flags: cfg.Filter.Options(),
//	}, engine.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	view, err := eng.Open(ctx, doc)
//	vis, err := view.Toggle("TODO")
package engine

// Package event provides a pub-sub event bus that keeps the filtering engine
// apart from whatever renders its results.
//
// The engine publishes; renderers, the CLI and loggers subscribe. Neither
// side holds a reference to the other.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Filter:
//   - [FilterChangedEvent]: a view's raw filter set changed
//   - [CompositionFailedEvent]: active patterns could not be combined
//   - [TemplateFormatWarningEvent]: a date format fell back to the default
//
// Visibility:
//   - [VisibilityChangedEvent]: a new visibility map is ready
//   - [ScanRecoveredEvent]: a scan panicked and an earlier map was reused
//
// Persistence:
//   - [PersistenceFailedEvent]: writes for a document started failing
//   - [DocumentRenamedEvent]: a durable record moved to a new identity
//
// Saved patterns:
//   - [SavedCatalogChangedEvent]: the saved pattern catalog changed
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously on the publishing goroutine and protected against panics.
// [PersistenceFailedEvent] is published from the persistence writer's
// goroutine, so its handlers must not assume they run on the caller's.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//
//	bus.Subscribe(event.TypeVisibilityChanged, func(e event.Event) {
//	    vis := e.(event.VisibilityChangedEvent)
//	    render(vis.Hidden)
//	})
//
//	id := bus.SubscribeAll(func(e event.Event) {
//	    logger.Debug("event", "type", e.EventType())
//	})
//	bus.Unsubscribe(id)
package event

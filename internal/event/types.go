package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "filter.changed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeFilterChanged         = "filter.changed"
	TypeVisibilityChanged     = "visibility.changed"
	TypeCompositionFailed     = "filter.composition_failed"
	TypeTemplateFormatWarning = "template.format_warning"
	TypePersistenceFailed     = "persistence.failed"
	TypeScanRecovered         = "visibility.scan_recovered"
	TypeDocumentRenamed       = "document.renamed"
	TypeSavedCatalogChanged   = "saved.changed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Filter Events
// -----------------------------------------------------------------------------

// FilterChangedEvent is emitted after a view's raw filter set changes.
type FilterChangedEvent struct {
	baseEvent
	DocumentID string
	Reason     string   // "toggle", "manual", "clear", "load" or "flags"
	Patterns   []string // Raw patterns, as authored
	Resolved   []string // Template-expanded patterns, same order as Patterns
}

// NewFilterChangedEvent creates a FilterChangedEvent.
func NewFilterChangedEvent(documentID, reason string, patterns, resolved []string) FilterChangedEvent {
	return FilterChangedEvent{
		baseEvent:  newBaseEvent(TypeFilterChanged),
		DocumentID: documentID,
		Reason:     reason,
		Patterns:   patterns,
		Resolved:   resolved,
	}
}

// CompositionFailedEvent is emitted when the active patterns could not be
// combined. The view shows every line until the filter set changes.
type CompositionFailedEvent struct {
	baseEvent
	DocumentID string
	Err        error
}

// NewCompositionFailedEvent creates a CompositionFailedEvent.
func NewCompositionFailedEvent(documentID string, err error) CompositionFailedEvent {
	return CompositionFailedEvent{
		baseEvent:  newBaseEvent(TypeCompositionFailed),
		DocumentID: documentID,
		Err:        err,
	}
}

// TemplateFormatWarningEvent is emitted when a template format fell back to
// the default.
type TemplateFormatWarningEvent struct {
	baseEvent
	DocumentID string
	Variable   string
	Format     string
	Err        error
}

// NewTemplateFormatWarningEvent creates a TemplateFormatWarningEvent.
func NewTemplateFormatWarningEvent(documentID, variable, format string, err error) TemplateFormatWarningEvent {
	return TemplateFormatWarningEvent{
		baseEvent:  newBaseEvent(TypeTemplateFormatWarning),
		DocumentID: documentID,
		Variable:   variable,
		Format:     format,
		Err:        err,
	}
}

// -----------------------------------------------------------------------------
// Visibility Events
// -----------------------------------------------------------------------------

// VisibilityChangedEvent carries a freshly computed visibility map.
// Hidden has one entry per line; true means hidden.
type VisibilityChangedEvent struct {
	baseEvent
	DocumentID  string
	Hidden      []bool
	HiddenCount int
	Filtering   bool // false when no matcher was in force
}

// NewVisibilityChangedEvent creates a VisibilityChangedEvent.
func NewVisibilityChangedEvent(documentID string, hidden []bool, hiddenCount int, filtering bool) VisibilityChangedEvent {
	return VisibilityChangedEvent{
		baseEvent:   newBaseEvent(TypeVisibilityChanged),
		DocumentID:  documentID,
		Hidden:      hidden,
		HiddenCount: hiddenCount,
		Filtering:   filtering,
	}
}

// LineCount returns the number of lines the map covers.
func (e VisibilityChangedEvent) LineCount() int {
	return len(e.Hidden)
}

// ScanRecoveredEvent is emitted when a visibility scan panicked and the
// view fell back to an earlier result.
type ScanRecoveredEvent struct {
	baseEvent
	DocumentID   string
	Panic        string
	UsedPrevious bool // false when the fallback was "everything visible"
}

// NewScanRecoveredEvent creates a ScanRecoveredEvent.
func NewScanRecoveredEvent(documentID, panicValue string, usedPrevious bool) ScanRecoveredEvent {
	return ScanRecoveredEvent{
		baseEvent:    newBaseEvent(TypeScanRecovered),
		DocumentID:   documentID,
		Panic:        panicValue,
		UsedPrevious: usedPrevious,
	}
}

// -----------------------------------------------------------------------------
// Persistence Events
// -----------------------------------------------------------------------------

// PersistenceFailedEvent is emitted the first time writes for a document
// fail. Filtering keeps working from memory.
type PersistenceFailedEvent struct {
	baseEvent
	DocumentID string
	Operation  string
	Err        error
}

// NewPersistenceFailedEvent creates a PersistenceFailedEvent.
func NewPersistenceFailedEvent(documentID, operation string, err error) PersistenceFailedEvent {
	return PersistenceFailedEvent{
		baseEvent:  newBaseEvent(TypePersistenceFailed),
		DocumentID: documentID,
		Operation:  operation,
		Err:        err,
	}
}

// DocumentRenamedEvent is emitted when a document's durable record moves.
type DocumentRenamedEvent struct {
	baseEvent
	OldID string
	NewID string
}

// NewDocumentRenamedEvent creates a DocumentRenamedEvent.
func NewDocumentRenamedEvent(oldID, newID string) DocumentRenamedEvent {
	return DocumentRenamedEvent{
		baseEvent: newBaseEvent(TypeDocumentRenamed),
		OldID:     oldID,
		NewID:     newID,
	}
}

// -----------------------------------------------------------------------------
// Saved Pattern Events
// -----------------------------------------------------------------------------

// SavedCatalogChangedEvent is emitted after a saved pattern is added,
// edited, removed, pinned or unpinned.
type SavedCatalogChangedEvent struct {
	baseEvent
	ItemID string
	Action string // "add", "edit", "remove", "pin", "unpin"
}

// NewSavedCatalogChangedEvent creates a SavedCatalogChangedEvent.
func NewSavedCatalogChangedEvent(itemID, action string) SavedCatalogChangedEvent {
	return SavedCatalogChangedEvent{
		baseEvent: newBaseEvent(TypeSavedCatalogChanged),
		ItemID:    itemID,
		Action:    action,
	}
}

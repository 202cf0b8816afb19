package engine

import (
	"time"

	"github.com/Iron-Ham/linefilter/internal/logging"
	"github.com/Iron-Ham/linefilter/internal/saved"
	"github.com/Iron-Ham/linefilter/internal/template"
)

// SavedLookup resolves a saved pattern reference to its item.
// *saved.FileCatalog satisfies it.
type SavedLookup interface {
	Lookup(ref string) (saved.Item, error)
}

// engineConfig holds optional configuration for an Engine.
type engineConfig struct {
	logger    *logging.Logger
	clock     template.Clock
	catalog   SavedLookup
	opTimeout time.Duration
	ownsStore bool
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// WithClock sets the reference time source for template variables.
func WithClock(clock template.Clock) Option {
	return func(c *engineConfig) { c.clock = clock }
}

// WithCatalog enables ToggleSaved against the given saved patterns.
func WithCatalog(catalog SavedLookup) Option {
	return func(c *engineConfig) { c.catalog = catalog }
}

// WithPersistTimeout bounds each background store call.
func WithPersistTimeout(d time.Duration) Option {
	return func(c *engineConfig) { c.opTimeout = d }
}

// WithOwnedStore makes Close also close the Store.
func WithOwnedStore() Option {
	return func(c *engineConfig) { c.ownsStore = true }
}

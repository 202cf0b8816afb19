// Package persist keeps the raw filter set of each document across sessions.
//
// A record maps a document identity to the ordered list of raw patterns that
// were active the last time its filters changed. An absent record means no
// filters were ever saved for that document. Writing an empty list removes
// the record.
//
// Three backends implement [Store]:
//
//   - [FileStore]: one JSON file, rewritten atomically on every change
//   - [SQLiteStore]: a SQLite database through gorm
//   - [MemoryStore]: process-local, for tests and the "none" backend
//
// [Writer] runs writes on a single background goroutine so callers never
// block on disk, and [Filtered] skips documents matched by ignore globs.
package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Store is the durable document-id to raw-pattern-list mapping.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the patterns stored for id. found is false when no record
	// exists.
	Get(ctx context.Context, id string) (patterns []string, found bool, err error)

	// Set replaces the record for id. An empty list removes it.
	Set(ctx context.Context, id string, patterns []string) error

	// Remove deletes the record for id. Removing a missing record is not an
	// error.
	Remove(ctx context.Context, id string) error

	// Rename moves the record from oldID to newID, replacing any record
	// already stored under newID. It does nothing when oldID has no record.
	Rename(ctx context.Context, oldID, newID string) error

	// Close releases resources held by the store.
	Close() error
}

// Open creates the Store for backend, keeping its data under dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(dir, "filters.json"))
	case BackendSQLite:
		return NewSQLiteStore(SQLiteConfig{Path: filepath.Join(dir, "filters.db")})
	case BackendNone:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", backend)
	}
}

// cloneRecord copies a pattern list, mapping empty to nil.
func cloneRecord(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	return slices.Clone(patterns)
}

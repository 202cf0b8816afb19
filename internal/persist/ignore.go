package persist

import (
	"context"
	"fmt"

	"github.com/gobwas/glob"
)

// IgnoreList matches document identities that must never be persisted.
type IgnoreList struct {
	patterns []string
	globs    []glob.Glob
}

// NewIgnoreList compiles patterns. '/' is the separator, so "*" stays within
// one path segment and "**" crosses segments.
func NewIgnoreList(patterns []string) (*IgnoreList, error) {
	l := &IgnoreList{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		l.patterns = append(l.patterns, p)
		l.globs = append(l.globs, g)
	}
	return l, nil
}

// Match reports whether id is ignored. A nil list ignores nothing.
func (l *IgnoreList) Match(id string) bool {
	if l == nil {
		return false
	}
	for _, g := range l.globs {
		if g.Match(id) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (l *IgnoreList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.globs)
}

// Filtered wraps a Store so ignored documents behave as if they were never
// saved: reads find nothing and writes are dropped.
type Filtered struct {
	Store
	ignore *IgnoreList
}

// WithIgnore wraps s with ignore. An empty list returns s unchanged.
func WithIgnore(s Store, ignore *IgnoreList) Store {
	if ignore.Len() == 0 {
		return s
	}
	return &Filtered{Store: s, ignore: ignore}
}

// Get implements Store.
func (f *Filtered) Get(ctx context.Context, id string) ([]string, bool, error) {
	if f.ignore.Match(id) {
		return nil, false, nil
	}
	return f.Store.Get(ctx, id)
}

// Set implements Store.
func (f *Filtered) Set(ctx context.Context, id string, patterns []string) error {
	if f.ignore.Match(id) {
		return nil
	}
	return f.Store.Set(ctx, id, patterns)
}

// Rename implements Store. A document renamed into an ignored location
// loses its record.
func (f *Filtered) Rename(ctx context.Context, oldID, newID string) error {
	switch {
	case f.ignore.Match(oldID):
		return nil
	case f.ignore.Match(newID):
		return f.Store.Remove(ctx, oldID)
	default:
		return f.Store.Rename(ctx, oldID, newID)
	}
}

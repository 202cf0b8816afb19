// Package filterstate holds the raw filter set of one document view as an
// immutable value.
//
// Every operation takes a State and returns a new State. Nothing is changed
// in place, so a State can be shared between goroutines and compared before
// and after a transition without copying.
//
// All four transitions are total. Whether a pattern compiles is decided
// before it reaches a State; see engine.ValidatePattern.
package filterstate

import (
	"slices"
	"strings"

	"github.com/Iron-Ham/linefilter/internal/filter"
)

// State is the set of active raw patterns for one document view plus the
// flags that shape visibility. Patterns are unique and keep insertion order.
// The zero value is an empty set with all flags off.
type State struct {
	patterns []string
	flags    filter.Options
}

// New creates a State with the given flags and no active patterns.
func New(flags filter.Options) State {
	return State{flags: flags}
}

// FromPatterns creates a State holding patterns, deduplicated with the first
// occurrence kept. Blank entries are dropped.
func FromPatterns(flags filter.Options, patterns []string) State {
	return State{patterns: normalize(patterns), flags: flags}
}

// Patterns returns a copy of the active raw patterns in insertion order.
func (s State) Patterns() []string {
	return slices.Clone(s.patterns)
}

// Flags returns the visibility flags.
func (s State) Flags() filter.Options {
	return s.flags
}

// Len returns the number of active patterns.
func (s State) Len() int {
	return len(s.patterns)
}

// Empty reports whether filtering is disabled.
func (s State) Empty() bool {
	return len(s.patterns) == 0
}

// Contains reports whether p is active.
func (s State) Contains(p string) bool {
	return slices.Contains(s.patterns, p)
}

// Equal reports whether both states hold the same set of patterns and the
// same flags. Order is not significant.
func (s State) Equal(other State) bool {
	return s.flags == other.flags && sameSet(s.patterns, other.patterns)
}

// Toggle adds p when it is absent and removes it when present. Blank
// patterns leave the state unchanged.
func (s State) Toggle(p string) State {
	if isBlank(p) {
		return s
	}
	if i := slices.Index(s.patterns, p); i >= 0 {
		return State{patterns: slices.Delete(slices.Clone(s.patterns), i, i+1), flags: s.flags}
	}
	next := make([]string, len(s.patterns), len(s.patterns)+1)
	copy(next, s.patterns)
	return State{patterns: append(next, p), flags: s.flags}
}

// ApplyManual replaces the whole set with {p}. A blank p clears the set.
func (s State) ApplyManual(p string) State {
	if isBlank(p) {
		return s.Clear()
	}
	return State{patterns: []string{p}, flags: s.flags}
}

// Clear removes every active pattern. Flags are kept.
func (s State) Clear() State {
	return State{flags: s.flags}
}

// ReplaceAll swaps in patterns wholesale. It returns the receiver and false
// when the incoming list holds exactly the active set, in any order.
func (s State) ReplaceAll(patterns []string) (State, bool) {
	next := normalize(patterns)
	if sameSet(next, s.patterns) {
		return s, false
	}
	return State{patterns: next, flags: s.flags}, true
}

// WithFlags returns a copy of s using flags.
func (s State) WithFlags(flags filter.Options) State {
	return State{patterns: s.patterns, flags: flags}
}

func normalize(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if isBlank(p) || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sameSet compares two duplicate-free slices as sets.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, p := range a {
		if !slices.Contains(b, p) {
			return false
		}
	}
	return true
}

func isBlank(p string) bool {
	return strings.TrimSpace(p) == ""
}

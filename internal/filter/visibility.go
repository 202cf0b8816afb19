package filter

import (
	"strings"
	"unicode"
)

// Options holds the behavior flags consulted by ComputeVisibility.
type Options struct {
	// HideEmptyLines lets blank lines be hidden like any other line. When
	// false, blank lines are always shown.
	HideEmptyLines bool
	// IncludeChildItems keeps deeper-indented lines under a seed visible.
	IncludeChildItems bool
	// IncludeHeadingChildItems keeps a heading seed's section visible.
	IncludeHeadingChildItems bool
}

// DefaultOptions returns the default flags: hide empty lines, include
// indented children, ignore heading sections.
func DefaultOptions() Options {
	return Options{
		HideEmptyLines:           true,
		IncludeChildItems:        true,
		IncludeHeadingChildItems: false,
	}
}

// VisibilityMap holds one decision per document line; true means hidden.
// Index 0 is the first line.
type VisibilityMap []bool

// AllVisible returns a map of n lines with nothing hidden.
func AllVisible(n int) VisibilityMap {
	return make(VisibilityMap, n)
}

// Hidden reports whether line i is hidden. Out-of-range lines are visible.
func (v VisibilityMap) Hidden(i int) bool {
	return i >= 0 && i < len(v) && v[i]
}

// HiddenCount returns how many lines are hidden.
func (v VisibilityMap) HiddenCount() int {
	n := 0
	for _, h := range v {
		if h {
			n++
		}
	}
	return n
}

// VisibleCount returns how many lines are shown.
func (v VisibilityMap) VisibleCount() int {
	return len(v) - v.HiddenCount()
}

// Equal reports whether two maps hold the same decisions.
func (v VisibilityMap) Equal(other VisibilityMap) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// ComputeVisibility decides for every line whether it is hidden.
//
// With a nil Matcher nothing is hidden. Otherwise matched lines seed
// visibility, optionally propagating to indented children and heading
// sections, and every line not reached is hidden. Blank lines are always
// shown when opts.HideEmptyLines is false.
func ComputeVisibility(lines []string, m *Matcher, opts Options) VisibilityMap {
	if m == nil {
		return AllVisible(len(lines))
	}

	visible := make([]bool, len(lines))

	var indents, levels []int
	if opts.IncludeChildItems {
		indents = make([]int, len(lines))
		for i, line := range lines {
			indents[i] = leadingWhitespace(line)
		}
	}
	if opts.IncludeHeadingChildItems {
		levels = make([]int, len(lines))
		for i, line := range lines {
			levels[i] = headingLevel(line)
		}
	}

	for i, line := range lines {
		if !m.MatchString(line) {
			continue
		}
		visible[i] = true

		if opts.IncludeChildItems {
			parent := indents[i]
			for j := i + 1; j < len(lines) && indents[j] > parent; j++ {
				visible[j] = true
			}
		}

		if opts.IncludeHeadingChildItems && levels[i] > 0 {
			parent := levels[i]
			for j := i + 1; j < len(lines); j++ {
				if levels[j] > 0 && levels[j] <= parent {
					break
				}
				visible[j] = true
			}
		}
	}

	hidden := make(VisibilityMap, len(lines))
	for i, line := range lines {
		if !opts.HideEmptyLines && isBlank(line) {
			continue
		}
		hidden[i] = !visible[i]
	}
	return hidden
}

// Apply returns the lines that vis leaves visible, in order. Lines beyond
// the end of vis are kept.
func Apply(lines []string, vis VisibilityMap) []string {
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if !vis.Hidden(i) {
			out = append(out, line)
		}
	}
	return out
}

// leadingWhitespace counts whitespace characters before the first
// non-whitespace character. A tab counts as one.
func leadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

// headingLevel returns the number of leading '#' characters when they are
// immediately followed by a space, and 0 otherwise.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

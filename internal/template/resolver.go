// Package template expands date placeholders embedded in filter patterns.
//
// A placeholder is written {{name}} or {{name:format}}. Single-date variables
// (today, date, yesterday, tomorrow) resolve to one formatted date. Range
// variables (this-week, last-month, next-year, ...) resolve to an
// alternation group "(d1|d2|...|dn)" listing every calendar day in the
// period, so the result can be dropped into a regular expression.
//
// Format output is not escaped. Authors choosing formats with regex
// metacharacters get those metacharacters in the pattern.
package template

import (
	"regexp"
	"strings"
	"time"

	"github.com/Iron-Ham/linefilter/internal/errors"
)

// Kind distinguishes variables that expand to one date from those that
// expand to a date alternation.
type Kind int

const (
	// KindSingle expands to a single formatted date.
	KindSingle Kind = iota
	// KindRange expands to an alternation of every day in a period.
	KindRange
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindRange {
		return "range"
	}
	return "single"
}

// Variable is one placeholder found in a template.
type Variable struct {
	Name   string
	Format string
	Kind   Kind
	// Raw is the placeholder exactly as written, braces included.
	Raw string
}

// Clock returns the reference time for resolution.
type Clock func() time.Time

// placeholderRegex captures the variable name and optional format.
var placeholderRegex = regexp.MustCompile(`\{\{([^{}:]+)(?::([^{}]*))?\}\}`)

// singleOffsets maps single-date variables to a day offset from now.
var singleOffsets = map[string]int{
	"today":     0,
	"date":      0,
	"yesterday": -1,
	"tomorrow":  1,
}

// period is a calendar span relative to now.
type period struct {
	unit   string // "week", "month" or "year"
	offset int
}

var rangeVariables = map[string]period{
	"this-week":  {"week", 0},
	"last-week":  {"week", -1},
	"next-week":  {"week", 1},
	"this-month": {"month", 0},
	"last-month": {"month", -1},
	"next-month": {"month", 1},
	"this-year":  {"year", 0},
	"last-year":  {"year", -1},
	"next-year":  {"year", 1},
}

// Resolver expands template placeholders against an injectable clock.
// It holds no state besides the clock and is safe for concurrent use.
type Resolver struct {
	now Clock
}

// NewResolver creates a Resolver. A nil clock uses time.Now.
func NewResolver(now Clock) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// HasPlaceholders reports whether s contains anything shaped like a
// placeholder, recognized or not.
func HasPlaceholders(s string) bool {
	return strings.Contains(s, "{{") && placeholderRegex.MatchString(s)
}

// Parse lists the placeholders in s with recognized names, in order of
// appearance. Unrecognized placeholders are skipped.
func Parse(s string) []Variable {
	var vars []Variable
	for _, m := range placeholderRegex.FindAllStringSubmatch(s, -1) {
		name := strings.TrimSpace(m[1])
		v := Variable{Name: name, Format: strings.TrimSpace(m[2]), Raw: m[0]}
		if _, ok := singleOffsets[name]; ok {
			v.Kind = KindSingle
		} else if _, ok := rangeVariables[name]; ok {
			v.Kind = KindRange
		} else {
			continue
		}
		vars = append(vars, v)
	}
	return vars
}

// Resolve expands every recognized placeholder in tmpl. Unknown variables are
// left untouched. Formats that cannot be applied fall back to DefaultFormat
// and are reported as warnings; resolution itself never fails.
func (r *Resolver) Resolve(tmpl string) (string, []*errors.TemplateFormatWarning) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	now := r.now()
	var warnings []*errors.TemplateFormatWarning

	out := placeholderRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		sub := placeholderRegex.FindStringSubmatch(match)
		name := strings.TrimSpace(sub[1])
		format := strings.TrimSpace(sub[2])

		if offset, ok := singleOffsets[name]; ok {
			s, w := renderDate(calendarDay(now, offset), name, format)
			if w != nil {
				warnings = append(warnings, w)
			}
			return s
		}

		if p, ok := rangeVariables[name]; ok {
			s, w := renderRange(daysIn(now, p), name, format)
			if w != nil {
				warnings = append(warnings, w)
			}
			return s
		}

		return match
	})

	return out, warnings
}

// ResolveAll resolves each pattern, keeping length and order.
func (r *Resolver) ResolveAll(patterns []string) ([]string, []*errors.TemplateFormatWarning) {
	out := make([]string, len(patterns))
	var warnings []*errors.TemplateFormatWarning
	for i, p := range patterns {
		resolved, w := r.Resolve(p)
		out[i] = resolved
		warnings = append(warnings, w...)
	}
	return out, warnings
}

// Resolve expands tmpl against a fixed reference time.
func Resolve(tmpl string, now time.Time) (string, []*errors.TemplateFormatWarning) {
	return NewResolver(func() time.Time { return now }).Resolve(tmpl)
}

// renderDate formats one date, falling back to DefaultFormat.
func renderDate(t time.Time, name, format string) (string, *errors.TemplateFormatWarning) {
	if format == "" {
		s, _ := formatDate(t, DefaultFormat)
		return s, nil
	}
	s, err := formatDate(t, format)
	if err != nil {
		fallback, _ := formatDate(t, DefaultFormat)
		return fallback, errors.NewTemplateFormatWarning(name, format, DefaultFormat, err)
	}
	return s, nil
}

// renderRange formats every day and joins them into "(d1|...|dn)". The
// format is checked once against the first day so a bad format yields one
// warning rather than one per day.
func renderRange(days []time.Time, name, format string) (string, *errors.TemplateFormatWarning) {
	if len(days) == 0 {
		return "()", nil
	}

	var warning *errors.TemplateFormatWarning
	if format == "" {
		format = DefaultFormat
	} else if _, err := formatDate(days[0], format); err != nil {
		warning = errors.NewTemplateFormatWarning(name, format, DefaultFormat, err)
		format = DefaultFormat
	}

	parts := make([]string, len(days))
	for i, d := range days {
		parts[i], _ = formatDate(d, format)
	}
	return "(" + strings.Join(parts, "|") + ")", warning
}

// calendarDay returns the day offset days from now's date, at noon in now's
// location. Midnight does not exist on days where DST starts at 00:00, and
// stepping from it would land on the previous day.
func calendarDay(now time.Time, offset int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+offset, 12, 0, 0, 0, now.Location())
}

// daysIn lists every calendar day of the period relative to now, each at
// noon in now's location.
func daysIn(now time.Time, p period) []time.Time {
	y, m, d := now.Date()

	// y/m/d becomes the first day of the period and n its length.
	var n int
	switch p.unit {
	case "week":
		today := calendarDay(now, 0)
		d = d - (isoWeekday(today) - 1) + 7*p.offset
		n = 7
	case "month":
		m += time.Month(p.offset)
		d = 1
		n = daysInMonth(y, m)
	case "year":
		y += p.offset
		m, d = time.January, 1
		n = time.Date(y, time.December, 31, 12, 0, 0, 0, time.UTC).YearDay()
	default:
		return nil
	}

	days := make([]time.Time, n)
	for i := range days {
		days[i] = time.Date(y, m, d+i, 12, 0, 0, 0, now.Location())
	}
	return days
}

// daysInMonth returns the length of month m of year y. Out-of-range months
// are normalized, so month 0 is December of the previous year.
func daysInMonth(y int, m time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(y, m+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

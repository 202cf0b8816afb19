package filter

import (
	"regexp"
	"strings"

	"github.com/Iron-Ham/linefilter/internal/errors"
)

// Matcher is the combined matcher built from every active resolved pattern.
// A nil *Matcher means no filtering is in force.
type Matcher struct {
	regex    *regexp.Regexp
	patterns []string
}

// Compose combines resolved patterns into one Matcher.
//
// Blank and whitespace-only patterns are ignored. If nothing is left, Compose
// returns (nil, nil). If the joined expression does not compile, Compose
// returns nil and a *errors.CompositionError; callers treat that the same as
// "no filtering" so content is never hidden by a broken filter.
func Compose(resolved []string) (*Matcher, error) {
	parts := make([]string, 0, len(resolved))
	for _, p := range resolved {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	re, err := regexp.Compile(joinAlternation(parts))
	if err != nil {
		compErr := errors.NewCompositionError(err).WithPatternCount(len(parts))
		if offender := firstInvalid(parts); offender != "" {
			compErr = compErr.WithOffender(offender)
		}
		return nil, compErr
	}

	return &Matcher{regex: re, patterns: parts}, nil
}

// joinAlternation wraps each pattern in a non-capturing group and joins them.
func joinAlternation(parts []string) string {
	return "(?:" + strings.Join(parts, ")|(?:") + ")"
}

// firstInvalid returns the first pattern that fails to compile on its own.
func firstInvalid(parts []string) string {
	for _, p := range parts {
		if _, err := regexp.Compile(p); err != nil {
			return p
		}
	}
	return ""
}

// Validate checks that a single resolved pattern compiles. It is the
// input-time gate: a pattern that fails here never enters a filter set.
func Validate(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return errors.NewPatternError("pattern is blank", nil).WithPattern(pattern)
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return errors.NewPatternError("pattern does not compile", err).WithPattern(pattern)
	}
	return nil
}

// MatchString reports whether line matches any active pattern.
// A nil Matcher matches nothing.
func (m *Matcher) MatchString(line string) bool {
	if m == nil {
		return false
	}
	return m.regex.MatchString(line)
}

// String returns the combined expression.
func (m *Matcher) String() string {
	if m == nil {
		return ""
	}
	return m.regex.String()
}

// Patterns returns a copy of the non-blank patterns the Matcher was built from.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Regex returns the compiled expression, or nil for a nil Matcher.
func (m *Matcher) Regex() *regexp.Regexp {
	if m == nil {
		return nil
	}
	return m.regex
}

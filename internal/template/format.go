package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultFormat is applied when a variable has no format or its format
// cannot be applied.
const DefaultFormat = "YYYY-MM-DD"

// dateToken is one moment-style format token.
type dateToken struct {
	token  string
	render func(time.Time) string
}

// momentTokens is ordered so that longer tokens sharing a prefix are tried
// first ("YYYY" before "YY", "Do" before "D").
var momentTokens = []dateToken{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"YY", func(t time.Time) string { return fmt.Sprintf("%02d", t.Year()%100) }},
	{"GGGG", func(t time.Time) string { y, _ := t.ISOWeek(); return fmt.Sprintf("%04d", y) }},
	{"Q", func(t time.Time) string { return strconv.Itoa((int(t.Month())-1)/3 + 1) }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"DDDD", func(t time.Time) string { return fmt.Sprintf("%03d", t.YearDay()) }},
	{"DDD", func(t time.Time) string { return strconv.Itoa(t.YearDay()) }},
	{"Do", func(t time.Time) string { return ordinal(t.Day()) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
	{"dddd", func(t time.Time) string { return t.Weekday().String() }},
	{"ddd", func(t time.Time) string { return t.Weekday().String()[:3] }},
	{"dd", func(t time.Time) string { return t.Weekday().String()[:2] }},
	{"d", func(t time.Time) string { return strconv.Itoa(int(t.Weekday())) }},
	{"E", func(t time.Time) string { return strconv.Itoa(isoWeekday(t)) }},
	{"WW", func(t time.Time) string { _, w := t.ISOWeek(); return fmt.Sprintf("%02d", w) }},
	{"W", func(t time.Time) string { _, w := t.ISOWeek(); return strconv.Itoa(w) }},
}

// strftimeSpecifiers lists the conversion characters accepted after '%'.
const strftimeSpecifiers = "aAbBCdDeFgGhHIjmMnpRStTuVwyYzZ%"

// formatDate renders t using format. Formats containing '%' are strftime
// formats; everything else is read as moment-style tokens with [bracketed]
// literals.
func formatDate(t time.Time, format string) (string, error) {
	var (
		out string
		err error
	)
	if strings.Contains(format, "%") {
		out, err = formatStrftime(t, format)
	} else {
		out, err = formatMoment(t, format)
	}
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("format %q renders nothing", format)
	}
	return out, nil
}

func formatStrftime(t time.Time, format string) (string, error) {
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("dangling %% at end of %q", format)
		}
		if !strings.ContainsRune(strftimeSpecifiers, rune(format[i+1])) {
			return "", fmt.Errorf("unsupported specifier %%%c", format[i+1])
		}
		i++
	}
	return strftime.Format(format, t), nil
}

func formatMoment(t time.Time, format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("unterminated literal in %q", format)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, tok := range momentTokens {
			if strings.HasPrefix(format[i:], tok.token) {
				b.WriteString(tok.render(t))
				i += len(tok.token)
				matched = true
				break
			}
		}
		if !matched {
			c := format[i]
			if isASCIILetter(c) {
				return "", fmt.Errorf("unknown token %q in %q; put literal text in [brackets]", c, format)
			}
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// isoWeekday returns 1 for Monday through 7 for Sunday.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

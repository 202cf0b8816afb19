package template

import (
	"regexp"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/linefilter/internal/errors"
)

// wednesday is 2024-02-14, a Wednesday in a leap year (ISO week 7).
var wednesday = time.Date(2024, time.February, 14, 15, 30, 0, 0, time.UTC)

func fixedResolver(t time.Time) *Resolver {
	return NewResolver(func() time.Time { return t })
}

// alternatives splits "(a|b|c)" into its members.
func alternatives(t *testing.T, s string) []string {
	t.Helper()
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		t.Fatalf("expected alternation group, got %q", s)
	}
	return strings.Split(s[1:len(s)-1], "|")
}

func TestResolve_SingleDates(t *testing.T) {
	r := fixedResolver(wednesday)

	tests := []struct {
		template string
		want     string
	}{
		{"{{today}}", "2024-02-14"},
		{"{{date}}", "2024-02-14"},
		{"{{yesterday}}", "2024-02-13"},
		{"{{tomorrow}}", "2024-02-15"},
		{"due {{today}} or {{tomorrow}}", "due 2024-02-14 or 2024-02-15"},
		{"{{today:DD/MM/YYYY}}", "14/02/2024"},
		{"{{today:dddd, MMMM Do}}", "Wednesday, February 14th"},
		{"{{today:[Week] WW}}", "Week 07"},
		{"{{today:}}", "2024-02-14"},
		{"{{ today }}", "2024-02-14"},
		{"{{today:%Y%m%d}}", "20240214"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got, warnings := r.Resolve(tt.template)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.template, got, tt.want)
			}
			if len(warnings) != 0 {
				t.Errorf("unexpected warnings: %v", warnings)
			}
		})
	}
}

func TestResolve_UnknownVariablePassesThrough(t *testing.T) {
	r := fixedResolver(wednesday)

	for _, tmpl := range []string{"{{nonsense}}", "{{nonsense:YYYY}}", "plain text", "{today}", "{{}}"} {
		got, warnings := r.Resolve(tmpl)
		if got != tmpl {
			t.Errorf("Resolve(%q) = %q, want unchanged", tmpl, got)
		}
		if len(warnings) != 0 {
			t.Errorf("Resolve(%q) produced warnings: %v", tmpl, warnings)
		}
	}
}

func TestResolve_BadFormatFallsBack(t *testing.T) {
	r := fixedResolver(wednesday)

	tests := []string{
		"{{today:[YYYY}}",
		"{{today:%Q}}",
		"{{today:%}}",
		"{{today:[]}}",
		"{{today:HH:mm}}",
		"{{today:YYYY-MM-DD at noon}}",
	}

	for _, tmpl := range tests {
		t.Run(tmpl, func(t *testing.T) {
			got, warnings := r.Resolve(tmpl)
			if got != "2024-02-14" {
				t.Errorf("Resolve(%q) = %q, want default-formatted date", tmpl, got)
			}
			if len(warnings) != 1 {
				t.Fatalf("expected 1 warning, got %d", len(warnings))
			}
			if !errors.Is(warnings[0], errors.ErrTemplateFormat) {
				t.Errorf("warning %v should match ErrTemplateFormat", warnings[0])
			}
			if warnings[0].Variable != "today" {
				t.Errorf("warning variable = %q, want today", warnings[0].Variable)
			}
		})
	}
}

func TestResolve_WeekRanges(t *testing.T) {
	r := fixedResolver(wednesday)

	tests := []struct {
		variable string
		first    string
		last     string
	}{
		{"this-week", "2024-02-12", "2024-02-18"},
		{"last-week", "2024-02-05", "2024-02-11"},
		{"next-week", "2024-02-19", "2024-02-25"},
	}

	for _, tt := range tests {
		t.Run(tt.variable, func(t *testing.T) {
			got, _ := r.Resolve("{{" + tt.variable + "}}")
			days := alternatives(t, got)
			if len(days) != 7 {
				t.Fatalf("expected 7 alternatives, got %d", len(days))
			}
			if days[0] != tt.first || days[6] != tt.last {
				t.Errorf("range = %s..%s, want %s..%s", days[0], days[6], tt.first, tt.last)
			}
		})
	}
}

func TestResolve_WeekStartsMondayOnSunday(t *testing.T) {
	sunday := time.Date(2024, time.February, 18, 9, 0, 0, 0, time.UTC)
	got, _ := fixedResolver(sunday).Resolve("{{this-week:ddd}}")

	want := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if diff := cmp.Diff(want, alternatives(t, got)); diff != "" {
		t.Errorf("this-week mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_MonthRanges(t *testing.T) {
	r := fixedResolver(wednesday)

	tests := []struct {
		variable string
		count    int
		first    string
	}{
		{"this-month", 29, "2024-02-01"},
		{"last-month", 31, "2024-01-01"},
		{"next-month", 31, "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.variable, func(t *testing.T) {
			got, _ := r.Resolve("{{" + tt.variable + "}}")
			days := alternatives(t, got)
			if len(days) != tt.count {
				t.Errorf("expected %d alternatives, got %d", tt.count, len(days))
			}
			if days[0] != tt.first {
				t.Errorf("first day = %s, want %s", days[0], tt.first)
			}
		})
	}
}

func TestResolve_MonthRangeFromMonthEnd(t *testing.T) {
	// Offsetting from the 31st must not skip February.
	jan31 := time.Date(2023, time.January, 31, 12, 0, 0, 0, time.UTC)
	got, _ := fixedResolver(jan31).Resolve("{{next-month}}")

	days := alternatives(t, got)
	if len(days) != 28 || days[0] != "2023-02-01" {
		t.Errorf("next-month from Jan 31 = %d days starting %s, want 28 starting 2023-02-01", len(days), days[0])
	}
}

func TestResolve_YearRanges(t *testing.T) {
	r := fixedResolver(wednesday)

	tests := []struct {
		variable string
		count    int
	}{
		{"this-year", 366},
		{"last-year", 365},
		{"next-year", 365},
	}

	for _, tt := range tests {
		t.Run(tt.variable, func(t *testing.T) {
			got, _ := r.Resolve("{{" + tt.variable + "}}")
			if n := len(alternatives(t, got)); n != tt.count {
				t.Errorf("expected %d alternatives, got %d", tt.count, n)
			}
		})
	}
}

func TestResolve_MidnightDSTTransitions(t *testing.T) {
	// These zones start DST at 00:00, so that midnight does not exist.
	tests := []struct {
		zone     string
		now      [3]int
		variable string
		count    int
		first    string
		gapDay   string
	}{
		{"America/Sao_Paulo", [3]int{2016, 10, 16}, "this-week", 7, "2016-10-10", "2016-10-16"},
		{"America/Sao_Paulo", [3]int{2016, 10, 17}, "last-week", 7, "2016-10-10", "2016-10-16"},
		{"America/Sao_Paulo", [3]int{2016, 9, 1}, "next-month", 31, "2016-10-01", "2016-10-16"},
		{"America/Sao_Paulo", [3]int{2016, 10, 16}, "this-year", 366, "2016-01-01", "2016-10-16"},
		{"America/Havana", [3]int{2020, 3, 8}, "this-week", 7, "2020-03-02", "2020-03-08"},
		{"America/Havana", [3]int{2020, 3, 9}, "this-month", 31, "2020-03-01", "2020-03-08"},
		{"America/Havana", [3]int{2020, 12, 27}, "this-year", 366, "2020-01-01", "2020-03-08"},
	}

	for _, tt := range tests {
		t.Run(tt.zone+"/"+tt.variable, func(t *testing.T) {
			loc, err := time.LoadLocation(tt.zone)
			if err != nil {
				t.Fatalf("LoadLocation(%s): %v", tt.zone, err)
			}
			now := time.Date(tt.now[0], time.Month(tt.now[1]), tt.now[2], 12, 0, 0, 0, loc)

			got, _ := Resolve("{{"+tt.variable+"}}", now)
			days := alternatives(t, got)
			if len(days) != tt.count {
				t.Errorf("%d alternatives, want %d", len(days), tt.count)
			}
			if days[0] != tt.first {
				t.Errorf("first day = %s, want %s", days[0], tt.first)
			}

			seen := make(map[string]bool, len(days))
			for _, d := range days {
				if seen[d] {
					t.Errorf("day %s listed twice", d)
				}
				seen[d] = true
			}
			if !seen[tt.gapDay] {
				t.Errorf("transition day %s missing", tt.gapDay)
			}
		})
	}
}

func TestResolve_SingleDatesAcrossMidnightDST(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	now := time.Date(2016, time.October, 17, 0, 30, 0, 0, loc)

	got, _ := Resolve("{{yesterday}} {{today}} {{tomorrow}}", now)
	if want := "2016-10-16 2016-10-17 2016-10-18"; got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_RangeWithBadFormatWarnsOnce(t *testing.T) {
	got, warnings := fixedResolver(wednesday).Resolve("{{this-week:[oops}}")

	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	days := alternatives(t, got)
	if days[0] != "2024-02-12" {
		t.Errorf("fallback format not applied, first day = %q", days[0])
	}
}

func TestResolve_RangeCompilesAsPattern(t *testing.T) {
	got, _ := fixedResolver(wednesday).Resolve(`^- \[ \] .*{{this-week}}`)
	re := regexp.MustCompile(got)

	if !re.MatchString("- [ ] pay rent 2024-02-16") {
		t.Error("expected a date inside this week to match")
	}
	if re.MatchString("- [ ] pay rent 2024-02-20") {
		t.Error("expected a date outside this week not to match")
	}
}

func TestResolveAll_PreservesOrderAndLength(t *testing.T) {
	r := fixedResolver(wednesday)

	got, warnings := r.ResolveAll([]string{"TODO", "{{today}}", "{{tomorrow:[x}}"})
	want := []string{"TODO", "2024-02-14", "2024-02-15"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveAll mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(warnings))
	}
}

func TestParse(t *testing.T) {
	vars := Parse("{{today:YYYY}} {{bogus}} {{last-month}}")

	if len(vars) != 2 {
		t.Fatalf("expected 2 recognized variables, got %d", len(vars))
	}
	if vars[0].Name != "today" || vars[0].Format != "YYYY" || vars[0].Kind != KindSingle {
		t.Errorf("vars[0] = %+v", vars[0])
	}
	if vars[1].Name != "last-month" || vars[1].Kind != KindRange {
		t.Errorf("vars[1] = %+v", vars[1])
	}
	if !HasPlaceholders("x {{bogus}}") {
		t.Error("HasPlaceholders should report unrecognized placeholders too")
	}
	if HasPlaceholders("x {today}") {
		t.Error("HasPlaceholders should ignore single braces")
	}
}

func TestPackageResolve(t *testing.T) {
	got, _ := Resolve("{{yesterday:D MMM YY}}", wednesday)
	if got != "13 Feb 24" {
		t.Errorf("Resolve() = %q, want %q", got, "13 Feb 24")
	}
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 23: "23rd", 31: "31st"}
	for n, want := range tests {
		if got := ordinal(n); got != want {
			t.Errorf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

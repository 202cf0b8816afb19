package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustCompose(t *testing.T, patterns ...string) *Matcher {
	t.Helper()
	m, err := Compose(patterns)
	if err != nil {
		t.Fatalf("Compose(%q) error = %v", patterns, err)
	}
	return m
}

// shown inverts a VisibilityMap so expectations read as "visible".
func shown(v VisibilityMap) []bool {
	out := make([]bool, len(v))
	for i, h := range v {
		out[i] = !h
	}
	return out
}

func TestComputeVisibility_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		patterns []string
		opts     Options
		want     []bool
	}{
		{
			name:     "single match without children",
			lines:    []string{"alpha", "beta", "gamma"},
			patterns: []string{"be"},
			opts:     Options{HideEmptyLines: true},
			want:     []bool{false, true, false},
		},
		{
			name: "indented children follow their parent",
			lines: []string{
				"- [ ] Task A",
				"  - subtask 1",
				"  - subtask 2",
				"- [ ] Task B",
			},
			patterns: []string{"Task A"},
			opts:     Options{HideEmptyLines: true, IncludeChildItems: true},
			want:     []bool{true, true, true, false},
		},
		{
			name:     "blank line shown when empty-line hiding is off",
			lines:    []string{"foo", "", "bar"},
			patterns: []string{"foo"},
			opts:     Options{HideEmptyLines: false, IncludeChildItems: true},
			want:     []bool{true, true, false},
		},
		{
			name:     "blank line hidden when empty-line hiding is on",
			lines:    []string{"foo", "", "bar"},
			patterns: []string{"foo"},
			opts:     Options{HideEmptyLines: true, IncludeChildItems: true},
			want:     []bool{true, false, false},
		},
		{
			name:     "alternation of several patterns",
			lines:    []string{"# Title", "TODO: x", "plain"},
			patterns: []string{"^# ", "TODO"},
			opts:     DefaultOptions(),
			want:     []bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVisibility(tt.lines, mustCompose(t, tt.patterns...), tt.opts)
			if diff := cmp.Diff(tt.want, shown(got)); diff != "" {
				t.Errorf("ComputeVisibility() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeVisibility_NilMatcherShowsEverything(t *testing.T) {
	lines := []string{"a", "", "  ", "b"}
	for _, hide := range []bool{true, false} {
		got := ComputeVisibility(lines, nil, Options{HideEmptyLines: hide, IncludeChildItems: true})
		if len(got) != len(lines) {
			t.Fatalf("len = %d, want %d", len(got), len(lines))
		}
		if got.HiddenCount() != 0 {
			t.Errorf("HideEmptyLines=%v: %d lines hidden, want 0", hide, got.HiddenCount())
		}
	}
}

func TestComputeVisibility_MatchedLineAlwaysVisible(t *testing.T) {
	lines := []string{"keep", "drop", "   ", "keep again"}
	m := mustCompose(t, "keep", `^\s+$`)

	for _, opts := range []Options{
		{HideEmptyLines: true},
		{HideEmptyLines: false},
		{HideEmptyLines: true, IncludeChildItems: true, IncludeHeadingChildItems: true},
	} {
		got := ComputeVisibility(lines, m, opts)
		for i, line := range lines {
			if m.MatchString(line) && got.Hidden(i) {
				t.Errorf("opts %+v: matched line %d (%q) hidden", opts, i, line)
			}
		}
	}
}

func TestComputeVisibility_BlankLineOverride(t *testing.T) {
	lines := []string{"x", "", "y", " \t ", "z"}
	got := ComputeVisibility(lines, mustCompose(t, "nomatch"), Options{HideEmptyLines: false})

	want := []bool{false, true, false, true, false}
	if diff := cmp.Diff(want, shown(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeVisibility_PropagatedBlankStaysVisible(t *testing.T) {
	// A whitespace-only line indented under the seed is reached by
	// propagation and is not forced hidden.
	lines := []string{"- parent", "    ", "  - child", "next"}
	got := ComputeVisibility(lines, mustCompose(t, "parent"), Options{HideEmptyLines: true, IncludeChildItems: true})

	want := []bool{true, true, true, false}
	if diff := cmp.Diff(want, shown(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeVisibility_ChildBoundary(t *testing.T) {
	lines := []string{
		"  - seed",     // indent 2
		"    - child",  // 4
		"      - deep", // 6
		"  - sibling",  // 2: stops
		"    - orphan", // 4: not reached
		"\t\t\tx",      // tabs count as one each
	}

	tests := []struct {
		name string
		opts Options
		want []bool
	}{
		{
			name: "children included",
			opts: Options{HideEmptyLines: true, IncludeChildItems: true},
			want: []bool{true, true, true, false, false, false},
		},
		{
			name: "children excluded",
			opts: Options{HideEmptyLines: true},
			want: []bool{true, false, false, false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVisibility(lines, mustCompose(t, "seed"), tt.opts)
			if diff := cmp.Diff(tt.want, shown(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeVisibility_EmptyLineEndsChildBlock(t *testing.T) {
	lines := []string{"- seed", "  - child", "", "  - after gap"}
	got := ComputeVisibility(lines, mustCompose(t, "seed"), Options{HideEmptyLines: true, IncludeChildItems: true})

	want := []bool{true, true, false, false}
	if diff := cmp.Diff(want, shown(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeVisibility_HeadingSections(t *testing.T) {
	lines := []string{
		"# Intro",
		"text",
		"## Work",
		"task",
		"### Detail",
		"more",
		"## Home",
		"chores",
		"# Outro",
		"end",
	}

	tests := []struct {
		name    string
		pattern string
		want    []bool
	}{
		{
			name:    "level two stops at next level two",
			pattern: "^## Work",
			want:    []bool{false, false, true, true, true, true, false, false, false, false},
		},
		{
			name:    "level one runs to next level one",
			pattern: "^# Intro",
			want:    []bool{true, true, true, true, true, true, true, true, false, false},
		},
		{
			name:    "level three stops at shallower heading",
			pattern: "^### Detail",
			want:    []bool{false, false, false, false, true, true, false, false, false, false},
		},
		{
			name:    "non-heading seed contributes nothing",
			pattern: "^task$",
			want:    []bool{false, false, false, true, false, false, false, false, false, false},
		},
		{
			name:    "last section runs to end of document",
			pattern: "^# Outro",
			want:    []bool{false, false, false, false, false, false, false, false, true, true},
		},
	}

	opts := Options{HideEmptyLines: true, IncludeHeadingChildItems: true}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVisibility(lines, mustCompose(t, tt.pattern), opts)
			if diff := cmp.Diff(tt.want, shown(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeVisibility_HeadingBoundaryLineCanStillSeed(t *testing.T) {
	lines := []string{"## A", "a", "## B", "b"}
	got := ComputeVisibility(lines, mustCompose(t, "^## A", "^## B$"), Options{HideEmptyLines: true, IncludeHeadingChildItems: true})

	want := []bool{true, true, true, true}
	if diff := cmp.Diff(want, shown(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeVisibility_MarksAccumulate(t *testing.T) {
	// The heading section of the first seed and the child block of the
	// second overlap; neither removes what the other marked.
	lines := []string{
		"## Plan",
		"- one",
		"    - deep",
		"## Later",
		"- two",
		"  - under two",
		"- three",
	}
	opts := Options{HideEmptyLines: true, IncludeChildItems: true, IncludeHeadingChildItems: true}
	got := ComputeVisibility(lines, mustCompose(t, "^## Plan", "one", "two"), opts)

	want := []bool{true, true, true, false, true, true, false}
	if diff := cmp.Diff(want, shown(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeVisibility_IsPure(t *testing.T) {
	lines := []string{"a", "  b", "c"}
	m := mustCompose(t, "a")
	opts := DefaultOptions()

	first := ComputeVisibility(lines, m, opts)
	second := ComputeVisibility(lines, m, opts)
	if !first.Equal(second) {
		t.Errorf("repeated calls differ: %v vs %v", first, second)
	}
	if diff := cmp.Diff([]string{"a", "  b", "c"}, lines); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"# One", 1},
		{"### Three", 3},
		{"#NoSpace", 0},
		{"#", 0},
		{"", 0},
		{" # indented", 0},
		{"text # not", 0},
		{"###### Six", 6},
	}
	for _, tt := range tests {
		if got := headingLevel(tt.line); got != tt.want {
			t.Errorf("headingLevel(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestLeadingWhitespace(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"", 0},
		{"x", 0},
		{"  x", 2},
		{"\tx", 1},
		{" \t x", 3},
		{"   ", 3},
		{" x", 1},
	}
	for _, tt := range tests {
		if got := leadingWhitespace(tt.line); got != tt.want {
			t.Errorf("leadingWhitespace(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	vis := VisibilityMap{false, true, false}

	got := Apply(lines, vis)
	if diff := cmp.Diff([]string{"a", "c", "d"}, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
	if vis.VisibleCount() != 2 || vis.HiddenCount() != 1 {
		t.Errorf("counts = %d visible, %d hidden", vis.VisibleCount(), vis.HiddenCount())
	}
}

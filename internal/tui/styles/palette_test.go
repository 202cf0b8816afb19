package styles

import (
	"testing"

	"github.com/Iron-Ham/linefilter/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestBuiltinThemes_MatchConfig(t *testing.T) {
	if diff := cmp.Diff(config.ValidThemes(), BuiltinThemes()); diff != "" {
		t.Errorf("BuiltinThemes() differs from config.ValidThemes() (-config +styles):\n%s", diff)
	}
}

func TestIsValidTheme(t *testing.T) {
	tests := []struct {
		name  string
		theme string
		want  bool
	}{
		{"default theme", "default", true},
		{"monokai theme", "monokai", true},
		{"dracula theme", "dracula", true},
		{"nord theme", "nord", true},
		{"invalid theme", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "Default", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTheme(tt.theme)
			if got != tt.want {
				t.Errorf("IsValidTheme(%q) = %v, want %v", tt.theme, got, tt.want)
			}
		})
	}
}

func TestGetPalette(t *testing.T) {
	tests := []struct {
		theme       ThemeName
		wantPrimary string
	}{
		{ThemeDefault, "#A78BFA"},
		{ThemeMonokai, "#F92672"},
		{ThemeDracula, "#BD93F9"},
		{ThemeNord, "#88C0D0"},
		{"unknown", "#A78BFA"},
	}

	for _, tt := range tests {
		t.Run(string(tt.theme), func(t *testing.T) {
			p := GetPalette(tt.theme)
			if string(p.Primary) != tt.wantPrimary {
				t.Errorf("GetPalette(%q).Primary = %q, want %q", tt.theme, p.Primary, tt.wantPrimary)
			}
		})
	}
}

func TestPalettes_AllColorsSet(t *testing.T) {
	for _, name := range BuiltinThemes() {
		t.Run(name, func(t *testing.T) {
			p := GetPalette(ThemeName(name))
			colors := map[string]string{
				"Primary":   string(p.Primary),
				"Secondary": string(p.Secondary),
				"Warning":   string(p.Warning),
				"Error":     string(p.Error),
				"Muted":     string(p.Muted),
				"Surface":   string(p.Surface),
				"Text":      string(p.Text),
				"Border":    string(p.Border),
				"MatchBg":   string(p.MatchBg),
				"MatchFg":   string(p.MatchFg),
			}
			for field, c := range colors {
				if len(c) != 7 || c[0] != '#' {
					t.Errorf("%s.%s = %q, want #RRGGBB", name, field, c)
				}
			}
		})
	}
}

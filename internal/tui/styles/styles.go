package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors, replaced by SetActiveTheme
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	WarningColor   lipgloss.Color
	ErrorColor     lipgloss.Color
	MutedColor     lipgloss.Color
	SurfaceColor   lipgloss.Color
	TextColor      lipgloss.Color
	BorderColor    lipgloss.Color

	// Convenience styles for colors
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	// Header
	Header lipgloss.Style

	// Footer / status bar
	StatusBar lipgloss.Style

	// Help bar
	HelpBar lipgloss.Style
	HelpKey lipgloss.Style

	// Messages
	ErrorMsg   lipgloss.Style
	SuccessMsg lipgloss.Style
	WarningMsg lipgloss.Style

	// Document lines
	LineNumber   lipgloss.Style
	MatchedLine  lipgloss.Style
	HiddenMarker lipgloss.Style

	// Pinned filter chips
	FilterChip       lipgloss.Style
	FilterChipActive lipgloss.Style

	// Pattern input
	InputPrompt lipgloss.Style
	InputBox    lipgloss.Style

	// Dropdown / select lists
	DropdownItem         lipgloss.Style
	DropdownItemSelected lipgloss.Style
)

var activeTheme = ThemeDefault

func init() {
	apply(DefaultPalette())
}

// SetActiveTheme rebuilds every package-level style from the named theme.
//
// Note: This function is not thread-safe. It is designed to be called only
// before the Bubble Tea program starts or from its event loop.
func SetActiveTheme(name ThemeName) {
	if !IsValidTheme(string(name)) {
		name = ThemeDefault
	}
	activeTheme = name
	apply(GetPalette(name))
}

// ActiveTheme returns the theme last applied.
func ActiveTheme() ThemeName {
	return activeTheme
}

func apply(p *ColorPalette) {
	PrimaryColor = p.Primary
	SecondaryColor = p.Secondary
	WarningColor = p.Warning
	ErrorColor = p.Error
	MutedColor = p.Muted
	SurfaceColor = p.Surface
	TextColor = p.Text
	BorderColor = p.Border

	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Muted = lipgloss.NewStyle().Foreground(MutedColor)
	Text = lipgloss.NewStyle().Foreground(TextColor)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1)

	StatusBar = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Padding(0, 1)

	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	ErrorMsg = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SuccessMsg = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	WarningMsg = lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)

	LineNumber = lipgloss.NewStyle().
		Foreground(MutedColor).
		Width(5).
		Align(lipgloss.Right).
		MarginRight(1)

	MatchedLine = lipgloss.NewStyle().
		Background(p.MatchBg).
		Foreground(p.MatchFg)

	HiddenMarker = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	FilterChip = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	FilterChipActive = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(PrimaryColor).
		Bold(true).
		Padding(0, 1)

	InputPrompt = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 1)

	DropdownItem = lipgloss.NewStyle().
		Foreground(TextColor).
		Padding(0, 1)

	DropdownItemSelected = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(PrimaryColor).
		Bold(true).
		Padding(0, 1)
}

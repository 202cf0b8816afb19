package keymap

import tea "github.com/charmbracelet/bubbletea"

// MaxSavedSlots is the number of pinned saved patterns reachable by the
// digit keys.
const MaxSavedSlots = 9

// DefaultKeymap returns the viewer's key bindings.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name:        "default",
		Description: "Default linefilter viewer key bindings",
		Modes: map[Mode]*ModeBindings{
			ModeNormal:  defaultNormalBindings(),
			ModePattern: defaultPatternBindings(),
			ModeHelp:    defaultHelpBindings(),
		},
	}
}

func defaultNormalBindings() *ModeBindings {
	bindings := []KeyBinding{
		// Scrolling
		{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdScrollDown, Description: "Scroll down", Category: "Scrolling"},
		{KeyType: tea.KeyDown, Command: CmdScrollDown, Description: "Scroll down", Category: "Scrolling"},
		{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdScrollUp, Description: "Scroll up", Category: "Scrolling"},
		{KeyType: tea.KeyUp, Command: CmdScrollUp, Description: "Scroll up", Category: "Scrolling"},
		{KeyType: tea.KeyCtrlU, Command: CmdScrollHalfPageUp, Description: "Scroll half page up", Category: "Scrolling"},
		{KeyType: tea.KeyCtrlD, Command: CmdScrollHalfPageDn, Description: "Scroll half page down", Category: "Scrolling"},
		{KeyType: tea.KeyPgUp, Command: CmdScrollPageUp, Description: "Scroll page up", Category: "Scrolling"},
		{KeyType: tea.KeyCtrlB, Command: CmdScrollPageUp, Description: "Scroll page up", Category: "Scrolling"},
		{KeyType: tea.KeyPgDown, Command: CmdScrollPageDown, Description: "Scroll page down", Category: "Scrolling"},
		{KeyType: tea.KeyCtrlF, Command: CmdScrollPageDown, Description: "Scroll page down", Category: "Scrolling"},
		{KeyType: tea.KeyRunes, Rune: 'g', Command: CmdScrollToTop, Description: "Go to top", Category: "Scrolling"},
		{KeyType: tea.KeyRunes, Rune: 'G', Command: CmdScrollToBottom, Description: "Go to bottom", Category: "Scrolling"},

		// Filters
		{KeyType: tea.KeyRunes, Rune: '/', Command: CmdManualPattern, Description: "Filter by one pattern", Category: "Filters"},
		{KeyType: tea.KeyRunes, Rune: 'a', Command: CmdTogglePattern, Description: "Add or remove a pattern", Category: "Filters"},
		{KeyType: tea.KeyRunes, Rune: 'c', Command: CmdClearFilters, Description: "Clear filters", Category: "Filters"},
		{KeyType: tea.KeyRunes, Rune: 'r', Command: CmdReload, Description: "Reload document", Category: "Filters"},
	}

	for i := 1; i <= MaxSavedSlots; i++ {
		bindings = append(bindings, KeyBinding{
			KeyType:     tea.KeyRunes,
			Rune:        rune('0' + i),
			Command:     CmdToggleSaved,
			Description: "Toggle pinned pattern",
			Category:    "Filters",
		})
	}

	bindings = append(bindings,
		// Visibility flags
		KeyBinding{KeyType: tea.KeyRunes, Rune: 'e', Command: CmdToggleHideEmpty, Description: "Toggle hiding empty lines", Category: "Flags"},
		KeyBinding{KeyType: tea.KeyRunes, Rune: 'i', Command: CmdToggleChildren, Description: "Toggle indented children", Category: "Flags"},
		KeyBinding{KeyType: tea.KeyRunes, Rune: 'h', Command: CmdToggleHeadingChilds, Description: "Toggle heading sections", Category: "Flags"},

		// Display
		KeyBinding{KeyType: tea.KeyRunes, Rune: 'n', Command: CmdToggleLineNumbers, Description: "Toggle line numbers", Category: "Display"},
		KeyBinding{KeyType: tea.KeyRunes, Rune: 'm', Command: CmdToggleHiddenMarkers, Description: "Toggle hidden-line markers", Category: "Display"},
		KeyBinding{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "Toggle help", Category: "Display"},

		// Exit
		KeyBinding{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "Quit", Category: "Application"},
		KeyBinding{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Application"},
	)

	return &ModeBindings{Mode: ModeNormal, Bindings: bindings}
}

func defaultPatternBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModePattern,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyEnter, Command: CmdConfirm, Description: "Apply pattern", Category: "Pattern"},
			{KeyType: tea.KeyEsc, Command: CmdCancel, Description: "Cancel", Category: "Pattern"},
			{KeyType: tea.KeyCtrlC, Command: CmdCancel, Description: "Cancel", Category: "Pattern"},
		},
	}
}

func defaultHelpBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeHelp,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "Close help", Category: "Help"},
			{KeyType: tea.KeyEsc, Command: CmdToggleHelp, Description: "Close help", Category: "Help"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdToggleHelp, Description: "Close help", Category: "Help"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Application"},
		},
	}
}

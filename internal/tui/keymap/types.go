// Package keymap holds the viewer's key bindings as declarative, mode-aware
// tables so that Update dispatches on commands rather than raw keys.
package keymap

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the current input mode of the viewer.
type Mode string

const (
	ModeNormal  Mode = "normal"  // Reading the filtered document
	ModePattern Mode = "pattern" // Typing a pattern (after / or a)
	ModeHelp    Mode = "help"    // Full key reference shown
)

// Command represents a named action that can be triggered by a key binding.
type Command string

// Normal mode commands
const (
	// Scrolling
	CmdScrollDown       Command = "scroll_down"
	CmdScrollUp         Command = "scroll_up"
	CmdScrollHalfPageUp Command = "scroll_half_page_up"
	CmdScrollHalfPageDn Command = "scroll_half_page_down"
	CmdScrollPageUp     Command = "scroll_page_up"
	CmdScrollPageDown   Command = "scroll_page_down"
	CmdScrollToTop      Command = "scroll_to_top"
	CmdScrollToBottom   Command = "scroll_to_bottom"

	// Filters
	CmdManualPattern Command = "manual_pattern" // replace the set with one pattern
	CmdTogglePattern Command = "toggle_pattern" // add or remove one pattern
	CmdToggleSaved   Command = "toggle_saved"   // 1-9 keys
	CmdClearFilters  Command = "clear_filters"
	CmdReload        Command = "reload"

	// Visibility flags
	CmdToggleHideEmpty     Command = "toggle_hide_empty"
	CmdToggleChildren      Command = "toggle_children"
	CmdToggleHeadingChilds Command = "toggle_heading_children"

	// Display
	CmdToggleLineNumbers   Command = "toggle_line_numbers"
	CmdToggleHiddenMarkers Command = "toggle_hidden_markers"
	CmdToggleHelp          Command = "toggle_help"

	// Exit
	CmdQuit Command = "quit"
)

// Pattern mode commands
const (
	CmdConfirm Command = "confirm"
	CmdCancel  Command = "cancel"
)

// Modifier represents keyboard modifiers (Ctrl, Alt, Shift).
type Modifier uint8

const (
	ModNone Modifier = 0
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

// String returns a human-readable representation of modifiers.
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}
	var s string
	if m&ModCtrl != 0 {
		s += "ctrl+"
	}
	if m&ModAlt != 0 {
		s += "alt+"
	}
	if m&ModShift != 0 {
		s += "shift+"
	}
	return s
}

// KeyBinding represents a single key binding configuration.
type KeyBinding struct {
	// KeyType is the key for this binding. Rune keys use tea.KeyRunes and
	// set Rune.
	KeyType tea.KeyType

	// Rune is the character for rune-based keys (when KeyType is tea.KeyRunes).
	Rune rune

	// Modifiers contains the modifier keys that must be pressed.
	Modifiers Modifier

	// Command is the action to execute when this binding is triggered.
	Command Command

	// Description is a human-readable description for help display.
	Description string

	// Category groups related bindings together in help display.
	Category string
}

// Matches checks if a tea.KeyMsg matches this binding.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	wantAlt := kb.Modifiers&ModAlt != 0
	if msg.Alt != wantAlt {
		return false
	}

	if kb.KeyType != tea.KeyRunes {
		return msg.Type == kb.KeyType
	}

	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	return msg.Runes[0] == kb.Rune
}

// String returns a human-readable representation of the key binding.
func (kb KeyBinding) String() string {
	prefix := kb.Modifiers.String()

	if kb.KeyType != tea.KeyRunes {
		return prefix + kb.KeyType.String()
	}
	if kb.Rune == ' ' {
		return prefix + "space"
	}
	return prefix + string(kb.Rune)
}

// ModeBindings holds all key bindings for a specific mode.
type ModeBindings struct {
	Mode     Mode
	Bindings []KeyBinding
}

// GetBinding looks up the binding for a key in this mode.
func (mb *ModeBindings) GetBinding(msg tea.KeyMsg) (KeyBinding, bool) {
	for _, binding := range mb.Bindings {
		if binding.Matches(msg) {
			return binding, true
		}
	}
	return KeyBinding{}, false
}

// Keymap contains all key bindings organized by mode.
type Keymap struct {
	Name        string
	Description string
	Modes       map[Mode]*ModeBindings
}

// GetBinding looks up the binding for a key in a specific mode.
func (km *Keymap) GetBinding(msg tea.KeyMsg, mode Mode) (KeyBinding, bool) {
	mb, ok := km.Modes[mode]
	if !ok {
		return KeyBinding{}, false
	}
	return mb.GetBinding(msg)
}

// GetModeBindings returns all bindings for a specific mode.
func (km *Keymap) GetModeBindings(mode Mode) []KeyBinding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	return mb.Bindings
}

// GetBindingsForCommand returns all bindings that trigger a specific command.
func (km *Keymap) GetBindingsForCommand(cmd Command, mode Mode) []KeyBinding {
	var result []KeyBinding
	for _, binding := range km.GetModeBindings(mode) {
		if binding.Command == cmd {
			result = append(result, binding)
		}
	}
	return result
}

// GetCategories returns the categories of a mode's bindings in first-seen
// order.
func (km *Keymap) GetCategories(mode Mode) []string {
	seen := make(map[string]bool)
	var categories []string

	for _, binding := range km.GetModeBindings(mode) {
		if binding.Category != "" && !seen[binding.Category] {
			seen[binding.Category] = true
			categories = append(categories, binding.Category)
		}
	}
	return categories
}

// GetBindingsByCategory returns bindings grouped by category for a mode.
// Bindings that share a command and description are listed once, with the
// first key.
func (km *Keymap) GetBindingsByCategory(mode Mode) map[string][]KeyBinding {
	result := make(map[string][]KeyBinding)
	seen := make(map[string]bool)
	for _, binding := range km.GetModeBindings(mode) {
		key := string(binding.Command) + "\x00" + binding.Description
		if seen[key] {
			continue
		}
		seen[key] = true

		cat := binding.Category
		if cat == "" {
			cat = "Other"
		}
		result[cat] = append(result[cat], binding)
	}
	return result
}

package tui

import (
	"github.com/Iron-Ham/linefilter/internal/event"
	tea "github.com/charmbracelet/bubbletea"
)

// eventMsg carries an event published on the engine's bus
type eventMsg struct {
	event event.Event
}

// fileChangedMsg is sent when the watched document changed on disk
type fileChangedMsg struct {
	paths []string
}

// Commands

// waitForEvent delivers the next bus event. It returns nil when the model
// has no event channel.
func waitForEvent(ch <-chan event.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{event: ev}
	}
}

// waitForChange delivers the next file change notification.
func waitForChange(ch <-chan []string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		paths, ok := <-ch
		if !ok {
			return nil
		}
		return fileChangedMsg{paths: paths}
	}
}

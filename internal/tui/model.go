package tui

import (
	"fmt"

	"github.com/Iron-Ham/linefilter/internal/engine"
	"github.com/Iron-Ham/linefilter/internal/errors"
	"github.com/Iron-Ham/linefilter/internal/event"
	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/saved"
	"github.com/Iron-Ham/linefilter/internal/tui/keymap"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PinnedSource supplies the saved patterns bound to the digit keys.
// *saved.FileCatalog satisfies it.
type PinnedSource interface {
	Pinned() []saved.Item
}

// Options configures the viewer.
type Options struct {
	// Catalog supplies pinned saved patterns. May be nil.
	Catalog PinnedSource
	// Theme names the color theme; unknown names use the default.
	Theme string
	// WatchPath, when set, reloads the document whenever the file changes.
	WatchPath string

	ShowLineNumbers   bool
	ShowHiddenMarkers bool
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// row is one rendered body line: a document line, or a marker standing in
// for a run of hidden lines.
type row struct {
	line   int // index into lines; first hidden line for markers
	hidden int // > 0 for markers
}

// Model holds the viewer state
type Model struct {
	// Core components
	engine  *engine.Engine
	view    *engine.View
	catalog PinnedSource
	keymap  *keymap.Keymap

	events  <-chan event.Event
	changes <-chan []string

	// Document state, refreshed from the view
	lines   []string
	vis     filter.VisibilityMap
	matcher *filter.Matcher
	pinned  []saved.Item
	rows    []row

	// UI state
	mode      keymap.Mode
	input     textinput.Model
	inputCmd  keymap.Command
	offset    int
	width     int
	height    int
	quitting  bool
	status    string
	statusLvl statusKind

	showLineNumbers   bool
	showHiddenMarkers bool
}

// NewModel creates a viewer model for view.
func NewModel(eng *engine.Engine, view *engine.View, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "pattern: "
	ti.CharLimit = 512
	ti.Width = 60

	m := Model{
		engine:            eng,
		view:              view,
		catalog:           opts.Catalog,
		keymap:            keymap.DefaultKeymap(),
		input:             ti,
		mode:              keymap.ModeNormal,
		showLineNumbers:   opts.ShowLineNumbers,
		showHiddenMarkers: opts.ShowHiddenMarkers,
	}
	m.refresh()
	return m
}

// withChannels attaches the event and file change sources.
func (m Model) withChannels(events <-chan event.Event, changes <-chan []string) Model {
	m.events = events
	m.changes = changes
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), waitForChange(m.changes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-6, 10)
		m.clampOffset()
		return m, nil

	case eventMsg:
		m.handleEvent(msg.event)
		return m, waitForEvent(m.events)

	case fileChangedMsg:
		if _, err := m.view.Recompute(); err != nil {
			m.setStatus(statusError, fmt.Sprintf("reload failed: %v", err))
		}
		m.refresh()
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	binding, ok := m.keymap.GetBinding(msg, m.mode)

	if m.mode == keymap.ModePattern {
		if !ok {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		switch binding.Command {
		case keymap.CmdConfirm:
			m.confirmPattern()
		case keymap.CmdCancel:
			m.exitPatternMode()
		}
		return m, nil
	}

	if !ok {
		return m, nil
	}

	// Any handled key clears a stale status line
	m.status = ""

	switch binding.Command {
	case keymap.CmdQuit:
		m.quitting = true
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		if m.mode == keymap.ModeHelp {
			m.mode = keymap.ModeNormal
		} else {
			m.mode = keymap.ModeHelp
		}

	case keymap.CmdScrollDown:
		m.scroll(1)
	case keymap.CmdScrollUp:
		m.scroll(-1)
	case keymap.CmdScrollHalfPageDn:
		m.scroll(m.bodyHeight() / 2)
	case keymap.CmdScrollHalfPageUp:
		m.scroll(-m.bodyHeight() / 2)
	case keymap.CmdScrollPageDown:
		m.scroll(m.bodyHeight())
	case keymap.CmdScrollPageUp:
		m.scroll(-m.bodyHeight())
	case keymap.CmdScrollToTop:
		m.offset = 0
	case keymap.CmdScrollToBottom:
		m.offset = len(m.rows)
		m.clampOffset()

	case keymap.CmdManualPattern, keymap.CmdTogglePattern:
		return m, m.enterPatternMode(binding.Command)

	case keymap.CmdToggleSaved:
		m.toggleSaved(int(msg.Runes[0] - '1'))

	case keymap.CmdClearFilters:
		m.apply(m.view.Clear())

	case keymap.CmdReload:
		m.apply(m.view.Recompute())
		if m.status == "" {
			m.setStatus(statusInfo, "reloaded")
		}

	case keymap.CmdToggleHideEmpty:
		flags := m.view.State().Flags()
		flags.HideEmptyLines = !flags.HideEmptyLines
		m.apply(m.view.SetFlags(flags))
	case keymap.CmdToggleChildren:
		flags := m.view.State().Flags()
		flags.IncludeChildItems = !flags.IncludeChildItems
		m.apply(m.view.SetFlags(flags))
	case keymap.CmdToggleHeadingChilds:
		flags := m.view.State().Flags()
		flags.IncludeHeadingChildItems = !flags.IncludeHeadingChildItems
		m.apply(m.view.SetFlags(flags))

	case keymap.CmdToggleLineNumbers:
		m.showLineNumbers = !m.showLineNumbers
	case keymap.CmdToggleHiddenMarkers:
		m.showHiddenMarkers = !m.showHiddenMarkers
		m.buildRows()
	}

	return m, nil
}

func (m *Model) enterPatternMode(cmd keymap.Command) tea.Cmd {
	m.mode = keymap.ModePattern
	m.inputCmd = cmd
	m.input.SetValue("")
	if cmd == keymap.CmdTogglePattern {
		m.input.Placeholder = "add or remove a pattern"
	} else {
		m.input.Placeholder = "show only lines matching (empty clears)"
	}
	return m.input.Focus()
}

func (m *Model) exitPatternMode() {
	m.mode = keymap.ModeNormal
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) confirmPattern() {
	value := m.input.Value()

	var err error
	if m.inputCmd == keymap.CmdTogglePattern {
		_, err = m.view.Toggle(value)
	} else {
		_, err = m.view.ApplyManual(value)
	}
	if err != nil {
		// Stay in pattern mode so the input can be corrected
		m.setError(err)
		return
	}
	m.status = ""
	m.exitPatternMode()
	m.refresh()
}

func (m *Model) toggleSaved(slot int) {
	if slot < 0 || slot >= len(m.pinned) {
		m.setStatus(statusWarn, fmt.Sprintf("no pinned pattern on %d", slot+1))
		return
	}
	item := m.pinned[slot]
	if _, err := m.engine.ToggleSaved(m.view, item.ID); err != nil {
		m.setError(err)
		return
	}
	m.refresh()
}

// apply handles the result of a view mutation.
func (m *Model) apply(_ filter.VisibilityMap, err error) {
	if err != nil {
		m.setError(err)
	}
	m.refresh()
}

func (m *Model) handleEvent(ev event.Event) {
	id := m.view.ID()

	switch e := ev.(type) {
	case event.VisibilityChangedEvent:
		if e.DocumentID == id {
			m.refresh()
		}
	case event.CompositionFailedEvent:
		if e.DocumentID == id {
			m.setStatus(statusError, fmt.Sprintf("filter not applied, showing every line: %v", e.Err))
		}
	case event.TemplateFormatWarningEvent:
		if e.DocumentID == id {
			m.setStatus(statusWarn, e.Err.Error())
		}
	case event.ScanRecoveredEvent:
		if e.DocumentID == id {
			m.setStatus(statusWarn, "visibility scan failed; showing last good result")
		}
	case event.PersistenceFailedEvent:
		if e.DocumentID == id {
			msg := fmt.Sprintf("filters not saved: %v", e.Err)
			if errors.IsRetryable(e.Err) {
				msg += " (the next change tries again)"
			}
			m.setStatus(statusError, msg)
		}
	case event.DocumentRenamedEvent:
		if e.NewID == id {
			m.setStatus(statusInfo, fmt.Sprintf("filters moved from %s", e.OldID))
		}
	case event.SavedCatalogChangedEvent:
		m.loadPinned()
	}
}

// setError shows err at the level its severity calls for. Errors not meant
// for end users are marked as unexpected.
func (m *Model) setError(err error) {
	msg := err.Error()
	if !errors.IsUserFacing(err) {
		msg = "unexpected error: " + msg
	}
	if errors.IsWarning(err) {
		m.setStatus(statusWarn, msg)
		return
	}
	m.setStatus(statusError, msg)
}

func (m *Model) setStatus(kind statusKind, msg string) {
	m.status = msg
	m.statusLvl = kind
}

// refresh re-reads everything derived from the view.
func (m *Model) refresh() {
	if lines, err := m.view.Source().Lines(); err == nil {
		m.lines = lines
	}
	m.vis = m.view.Visibility()

	m.matcher = nil
	if matcher, err := filter.Compose(m.view.ResolvedPatterns()); err == nil {
		m.matcher = matcher
	}

	m.loadPinned()
	m.buildRows()
}

func (m *Model) loadPinned() {
	m.pinned = nil
	if m.catalog == nil {
		return
	}
	pinned := m.catalog.Pinned()
	if len(pinned) > keymap.MaxSavedSlots {
		pinned = pinned[:keymap.MaxSavedSlots]
	}
	m.pinned = pinned
}

func (m *Model) buildRows() {
	rows := make([]row, 0, len(m.lines))
	for i := 0; i < len(m.lines); {
		if !m.vis.Hidden(i) {
			rows = append(rows, row{line: i})
			i++
			continue
		}
		start := i
		for i < len(m.lines) && m.vis.Hidden(i) {
			i++
		}
		if m.showHiddenMarkers {
			rows = append(rows, row{line: start, hidden: i - start})
		}
	}
	m.rows = rows
	m.clampOffset()
}

func (m *Model) scroll(delta int) {
	m.offset += delta
	m.clampOffset()
}

func (m *Model) clampOffset() {
	maxOffset := max(len(m.rows)-m.bodyHeight(), 0)
	m.offset = min(max(m.offset, 0), maxOffset)
}

// hiddenCount counts hidden lines among the current lines.
func (m Model) hiddenCount() int {
	n := 0
	for i := range m.lines {
		if m.vis.Hidden(i) {
			n++
		}
	}
	return n
}

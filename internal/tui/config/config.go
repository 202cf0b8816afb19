// Package config provides the interactive settings editor behind
// "linefilter config edit".
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Iron-Ham/linefilter/internal/config"
	"github.com/Iron-Ham/linefilter/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

// ConfigItem represents a single configuration item
type ConfigItem struct {
	Key         string
	Label       string
	Description string
	Type        string   // "string", "bool", "int", "select"
	Options     []string // For select type
	Category    string
}

// Category represents a group of config items
type Category struct {
	Name  string
	Items []ConfigItem
}

// Lines rendered around the item list: header (3), config path (2),
// description or overlay (2), messages (1), help (2).
const chromeLines = 10

// Model is the Bubbletea model for the interactive config UI
type Model struct {
	categories     []Category
	categoryIndex  int
	itemIndex      int
	width          int
	height         int
	scrollOffset   int
	editing        bool
	textInput      textinput.Model
	selectIndex    int // For select-type options
	errorMsg       string
	infoMsg        string
	quitting       bool
	configModified bool
}

// New creates a new config model
func New() Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40

	categories := []Category{
		{
			Name: "Filter",
			Items: []ConfigItem{
				{
					Key:         "filter.hide_empty_lines",
					Label:       "Hide Empty Lines",
					Description: "Hide blank lines while a filter is active",
					Type:        "bool",
					Category:    "filter",
				},
				{
					Key:         "filter.include_child_items",
					Label:       "Include Child Items",
					Description: "Show lines indented beneath a matching line",
					Type:        "bool",
					Category:    "filter",
				},
				{
					Key:         "filter.include_heading_child_items",
					Label:       "Include Heading Children",
					Description: "Show every line under a matching heading until the next heading of the same or higher level",
					Type:        "bool",
					Category:    "filter",
				},
				{
					Key:         "filter.enable_template_variables",
					Label:       "Template Variables",
					Description: "Expand {{date}}, {{time}}, {{datetime}} and friends before matching",
					Type:        "bool",
					Category:    "filter",
				},
			},
		},
		{
			Name: "Persistence",
			Items: []ConfigItem{
				{
					Key:         "persistence.backend",
					Label:       "Backend",
					Description: "Where each document's filter set is stored (none = in memory only)",
					Type:        "select",
					Options:     config.ValidBackends(),
					Category:    "persistence",
				},
				{
					Key:         "persistence.dir",
					Label:       "Store Directory",
					Description: "Directory for the filter store (leave empty for the data directory)",
					Type:        "string",
					Category:    "persistence",
				},
			},
		},
		{
			Name: "Saved Patterns",
			Items: []ConfigItem{
				{
					Key:         "saved.file",
					Label:       "Catalog File",
					Description: "YAML file holding named saved patterns (leave empty for the default)",
					Type:        "string",
					Category:    "saved",
				},
			},
		},
		{
			Name: "Logging",
			Items: []ConfigItem{
				{
					Key:         "logging.enabled",
					Label:       "Enabled",
					Description: "Write structured JSON logs",
					Type:        "bool",
					Category:    "logging",
				},
				{
					Key:         "logging.level",
					Label:       "Level",
					Description: "Minimum level written to the log",
					Type:        "select",
					Options:     config.ValidLogLevels(),
					Category:    "logging",
				},
				{
					Key:         "logging.file",
					Label:       "Log File",
					Description: "Log file path (leave empty for the data directory)",
					Type:        "string",
					Category:    "logging",
				},
				{
					Key:         "logging.max_size_mb",
					Label:       "Max Size (MB)",
					Description: "Rotate the log after it reaches this size",
					Type:        "int",
					Category:    "logging",
				},
				{
					Key:         "logging.max_backups",
					Label:       "Max Backups",
					Description: "Rotated log files to keep (0 = keep all)",
					Type:        "int",
					Category:    "logging",
				},
				{
					Key:         "logging.max_age_days",
					Label:       "Max Age (days)",
					Description: "Delete rotated logs older than this (0 = never)",
					Type:        "int",
					Category:    "logging",
				},
				{
					Key:         "logging.compress",
					Label:       "Compress Backups",
					Description: "Gzip rotated log files",
					Type:        "bool",
					Category:    "logging",
				},
			},
		},
		{
			Name: "Viewer",
			Items: []ConfigItem{
				{
					Key:         "tui.theme",
					Label:       "Theme",
					Description: "Color theme for the interactive viewer",
					Type:        "select",
					Options:     config.ValidThemes(),
					Category:    "tui",
				},
				{
					Key:         "tui.show_line_numbers",
					Label:       "Line Numbers",
					Description: "Show source line numbers next to visible lines",
					Type:        "bool",
					Category:    "tui",
				},
				{
					Key:         "tui.show_hidden_markers",
					Label:       "Hidden Markers",
					Description: "Show a marker where lines were hidden",
					Type:        "bool",
					Category:    "tui",
				},
			},
		},
	}

	return Model{
		categories: categories,
		textInput:  ti,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureSelectionVisible()
		return m, nil

	case tea.KeyMsg:
		// Clear messages on any key
		m.errorMsg = ""
		m.infoMsg = ""

		if m.editing {
			return m.handleEditingKeypress(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			if m.configModified {
				m.infoMsg = "Changes saved!"
			}
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.itemIndex--
			if m.itemIndex < 0 {
				// Move to previous category
				m.categoryIndex--
				if m.categoryIndex < 0 {
					m.categoryIndex = len(m.categories) - 1
				}
				m.itemIndex = len(m.categories[m.categoryIndex].Items) - 1
			}

		case "down", "j":
			m.itemIndex++
			if m.itemIndex >= len(m.categories[m.categoryIndex].Items) {
				// Move to next category
				m.categoryIndex++
				if m.categoryIndex >= len(m.categories) {
					m.categoryIndex = 0
				}
				m.itemIndex = 0
			}

		case "tab":
			m.categoryIndex++
			if m.categoryIndex >= len(m.categories) {
				m.categoryIndex = 0
			}
			m.itemIndex = 0

		case "shift+tab":
			m.categoryIndex--
			if m.categoryIndex < 0 {
				m.categoryIndex = len(m.categories) - 1
			}
			m.itemIndex = 0

		case "g":
			m.categoryIndex = 0
			m.itemIndex = 0

		case "G":
			m.categoryIndex = len(m.categories) - 1
			m.itemIndex = len(m.categories[m.categoryIndex].Items) - 1

		case "enter", " ":
			item := m.currentItem()
			switch item.Type {
			case "bool":
				current := viper.GetBool(item.Key)
				viper.Set(item.Key, !current)
				m.saveConfig()
			case "select":
				m.editing = true
				m.selectIndex = m.getCurrentSelectIndex()
			default:
				m.editing = true
				m.textInput.SetValue(m.getCurrentValue())
				m.textInput.Focus()
			}

		case "r":
			m.resetCurrentToDefault()
		}
		m.ensureSelectionVisible()
	}

	return m, cmd
}

func (m *Model) handleEditingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.currentItem()

	switch msg.String() {
	case "esc":
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "enter":
		if item.Type == "select" {
			viper.Set(item.Key, item.Options[m.selectIndex])
			m.saveConfig()
			m.editing = false
		} else {
			value := m.textInput.Value()
			if err := m.validateAndSet(item, value); err != nil {
				m.errorMsg = err.Error()
				return m, nil
			}
			m.saveConfig()
			m.editing = false
			m.textInput.SetValue("")
		}
		return m, nil

	case "up", "k":
		if item.Type == "select" {
			m.selectIndex--
			if m.selectIndex < 0 {
				m.selectIndex = len(item.Options) - 1
			}
			return m, nil
		}

	case "down", "j":
		if item.Type == "select" {
			m.selectIndex++
			if m.selectIndex >= len(item.Options) {
				m.selectIndex = 0
			}
			return m, nil
		}
	}

	if item.Type != "select" {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	header := styles.Header.Width(m.width - 4).Render("linefilter Configuration")
	b.WriteString(header)
	b.WriteString("\n\n")

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = config.ConfigFile() + " (not created)"
	}
	b.WriteString(styles.Muted.Render(fmt.Sprintf("Config file: %s", configPath)))
	b.WriteString("\n\n")

	lines := m.itemLines()
	start, end := m.visibleRange(len(lines))
	if start > 0 {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↑ %d more", start)))
		b.WriteString("\n")
	}
	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if end < len(lines) {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↓ %d more", len(lines)-end)))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.renderEditOverlay())
	} else {
		b.WriteString(styles.Muted.Render(m.currentItem().Description))
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + m.errorMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.SuccessMsg.Render(m.infoMsg))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// itemLines renders every category header, item and separator in order.
func (m Model) itemLines() []string {
	var lines []string
	for ci, cat := range m.categories {
		isActiveCategory := ci == m.categoryIndex

		catStyle := styles.Muted.Bold(true)
		if isActiveCategory {
			catStyle = styles.Primary.Bold(true)
		}
		lines = append(lines, catStyle.Render(fmt.Sprintf("[ %s ]", cat.Name)))

		for ii, item := range cat.Items {
			lines = append(lines, m.renderItem(item, isActiveCategory && ii == m.itemIndex))
		}
		lines = append(lines, "")
	}
	return lines
}

// totalLines is the length of itemLines.
func (m Model) totalLines() int {
	n := 0
	for _, cat := range m.categories {
		n += len(cat.Items) + 2
	}
	return n
}

// currentSelectionLine returns the index within itemLines of the selected item.
func (m Model) currentSelectionLine() int {
	line := 0
	for ci := 0; ci < m.categoryIndex; ci++ {
		line += len(m.categories[ci].Items) + 2
	}
	return line + 1 + m.itemIndex
}

// availableLines is how many item lines fit on screen. Zero means no limit.
func (m Model) availableLines() int {
	if m.height == 0 {
		return 0
	}
	return max(m.height-chromeLines, 3)
}

func (m *Model) ensureSelectionVisible() {
	avail := m.availableLines()
	if avail == 0 {
		m.scrollOffset = 0
		return
	}
	line := m.currentSelectionLine()
	if line < m.scrollOffset {
		m.scrollOffset = line
		if m.itemIndex == 0 {
			// Keep the category header in view
			m.scrollOffset = max(line-1, 0)
		}
	}
	if line >= m.scrollOffset+avail {
		m.scrollOffset = line - avail + 1
	}
	m.scrollOffset = min(m.scrollOffset, max(m.totalLines()-avail, 0))
}

func (m Model) visibleRange(total int) (int, int) {
	avail := m.availableLines()
	if avail == 0 || total <= avail {
		return 0, total
	}
	start := min(m.scrollOffset, total-avail)
	return start, start + avail
}

func (m Model) renderItem(item ConfigItem, selected bool) string {
	value := m.getDisplayValue(item)

	label := item.Label
	if len(label) > 25 {
		label = label[:22] + "..."
	}
	paddedLabel := fmt.Sprintf("%-25s", label)

	if selected {
		cursor := styles.Secondary.Render(">")
		labelStyled := styles.Text.Bold(true).Render(paddedLabel)
		valueStyled := styles.Primary.Render(value)
		return fmt.Sprintf("  %s %s  %s", cursor, labelStyled, valueStyled)
	}
	labelStyled := styles.Muted.Render(paddedLabel)
	valueStyled := styles.Text.Render(value)
	return fmt.Sprintf("    %s  %s", labelStyled, valueStyled)
}

func (m Model) renderEditOverlay() string {
	item := m.currentItem()
	var b strings.Builder

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PrimaryColor).
		Padding(1, 2).
		Width(50)

	var content string
	if item.Type == "select" {
		content = fmt.Sprintf("Select %s:\n\n", item.Label)
		for i, opt := range item.Options {
			if i == m.selectIndex {
				content += styles.DropdownItemSelected.Render(fmt.Sprintf(" > %s ", opt)) + "\n"
			} else {
				content += styles.DropdownItem.Render(fmt.Sprintf("   %s ", opt)) + "\n"
			}
		}
		content += "\n" + styles.Muted.Render("j/k or arrows to select, enter to confirm, esc to cancel")
	} else {
		content = fmt.Sprintf("Edit %s:\n\n", item.Label)
		content += m.textInput.View()
		content += "\n\n" + styles.Muted.Render("enter to save, esc to cancel")
	}

	b.WriteString("\n")
	b.WriteString(borderStyle.Render(content))

	return b.String()
}

func (m Model) renderHelp() string {
	helpStyle := styles.HelpBar
	keyStyle := styles.HelpKey

	if m.editing {
		return helpStyle.Render(
			keyStyle.Render("enter") + " save  " +
				keyStyle.Render("esc") + " cancel",
		)
	}

	return helpStyle.Render(
		keyStyle.Render("j/k") + " navigate  " +
			keyStyle.Render("tab") + " next category  " +
			keyStyle.Render("g/G") + " top/bottom  " +
			keyStyle.Render("enter/space") + " edit  " +
			keyStyle.Render("r") + " reset  " +
			keyStyle.Render("q") + " quit",
	)
}

func (m Model) currentItem() ConfigItem {
	return m.categories[m.categoryIndex].Items[m.itemIndex]
}

func (m Model) getCurrentValue() string {
	return m.getDisplayValue(m.currentItem())
}

func (m Model) getDisplayValue(item ConfigItem) string {
	switch item.Type {
	case "bool":
		return strconv.FormatBool(viper.GetBool(item.Key))
	case "int":
		return strconv.Itoa(viper.GetInt(item.Key))
	default:
		return viper.GetString(item.Key)
	}
}

func (m Model) getCurrentSelectIndex() int {
	item := m.currentItem()
	if i := slices.Index(item.Options, viper.GetString(item.Key)); i >= 0 {
		return i
	}
	return 0
}

func (m *Model) validateAndSet(item ConfigItem, value string) error {
	switch item.Type {
	case "int":
		intVal, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("expected integer value")
		}
		if intVal < 0 {
			return fmt.Errorf("value must be non-negative")
		}
		viper.Set(item.Key, intVal)
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("expected true or false")
		}
		viper.Set(item.Key, value == "true")
	case "select":
		if !slices.Contains(item.Options, value) {
			return fmt.Errorf("invalid option: %s", value)
		}
		viper.Set(item.Key, value)
	default:
		if strings.ContainsRune(value, '\x00') {
			return fmt.Errorf("value contains invalid null character")
		}
		viper.Set(item.Key, value)
	}
	return nil
}

func (m *Model) saveConfig() {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to create config directory: %v", err)
		return
	}

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to save config: %v", err)
		return
	}

	m.infoMsg = "Saved!"
	m.configModified = true
}

// defaultValues maps every editable key to its default.
func defaultValues() map[string]any {
	defaults := config.Default()
	return map[string]any{
		// Filter
		"filter.hide_empty_lines":            defaults.Filter.HideEmptyLines,
		"filter.include_child_items":         defaults.Filter.IncludeChildItems,
		"filter.include_heading_child_items": defaults.Filter.IncludeHeadingChildItems,
		"filter.enable_template_variables":   defaults.Filter.EnableTemplateVariables,
		// Persistence
		"persistence.backend": defaults.Persistence.Backend,
		"persistence.dir":     defaults.Persistence.Dir,
		// Saved
		"saved.file": defaults.Saved.File,
		// Logging
		"logging.enabled":      defaults.Logging.Enabled,
		"logging.level":        defaults.Logging.Level,
		"logging.file":         defaults.Logging.File,
		"logging.max_size_mb":  defaults.Logging.MaxSizeMB,
		"logging.max_backups":  defaults.Logging.MaxBackups,
		"logging.max_age_days": defaults.Logging.MaxAgeDays,
		"logging.compress":     defaults.Logging.Compress,
		// Viewer
		"tui.theme":               defaults.TUI.Theme,
		"tui.show_line_numbers":   defaults.TUI.ShowLineNumbers,
		"tui.show_hidden_markers": defaults.TUI.ShowHiddenMarkers,
	}
}

func (m *Model) resetCurrentToDefault() {
	item := m.currentItem()
	if defaultVal, ok := defaultValues()[item.Key]; ok {
		viper.Set(item.Key, defaultVal)
		m.saveConfig()
		if m.errorMsg == "" {
			m.infoMsg = fmt.Sprintf("Reset %s to default", item.Label)
		}
	}
}

// Run starts the interactive config UI
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

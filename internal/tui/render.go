package tui

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/tui/keymap"
	"github.com/Iron-Ham/linefilter/internal/tui/styles"
	"github.com/Iron-Ham/linefilter/internal/util"
	"github.com/dustin/go-humanize"
)

// Layout constants
const (
	headerLines  = 3 // title, border, margin
	chipLines    = 1
	statusLines  = 1
	helpLines    = 2 // margin + keys
	inputLines   = 3 // bordered input box
	lineNumWidth = 6 // LineNumber width plus margin
)

// bodyHeight returns how many rows fit between the chrome. Zero height
// (before the first WindowSizeMsg) shows every row.
func (m Model) bodyHeight() int {
	if m.height == 0 {
		return len(m.rows)
	}
	chrome := headerLines + chipLines + statusLines + helpLines
	if m.mode == keymap.ModePattern {
		chrome += inputLines
	}
	return max(m.height-chrome, 1)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.mode == keymap.ModeHelp {
		b.WriteString(m.renderHelpScreen())
		return b.String()
	}

	b.WriteString(m.renderChips())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.mode == keymap.ModePattern {
		b.WriteString(styles.InputBox.Render(m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := "linefilter  " + m.view.ID()
	if m.width > 0 {
		title = util.TruncateString(title, max(m.width-4, 4))
		return styles.Header.Width(m.width - 2).Render(title)
	}
	return styles.Header.Render(title)
}

// renderChips shows pinned saved patterns with their digit and any other
// active patterns after them.
func (m Model) renderChips() string {
	active := m.view.Patterns()

	var chips []string
	pinnedPatterns := make([]string, 0, len(m.pinned))
	for i, item := range m.pinned {
		label := fmt.Sprintf("%d %s", i+1, item.Label())
		pinnedPatterns = append(pinnedPatterns, item.Pattern)
		if slices.Contains(active, item.Pattern) {
			chips = append(chips, styles.FilterChipActive.Render(label))
		} else {
			chips = append(chips, styles.FilterChip.Render(label))
		}
	}
	for _, p := range active {
		if !slices.Contains(pinnedPatterns, p) {
			chips = append(chips, styles.FilterChipActive.Render(p))
		}
	}

	if len(chips) == 0 {
		return styles.Muted.Render("no filters  (/ to filter, a to add)")
	}
	line := strings.Join(chips, " ")
	if m.width > 0 {
		line = util.TruncateANSI(line, m.width)
	}
	return line
}

func (m Model) renderBody() string {
	var b strings.Builder

	height := m.bodyHeight()
	end := min(m.offset+height, len(m.rows))
	for _, r := range m.rows[m.offset:end] {
		b.WriteString(m.renderRow(r))
		b.WriteString("\n")
	}
	// Pad so the status bar stays at the bottom
	for i := end - m.offset; i < height; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(r row) string {
	if r.hidden > 0 {
		marker := fmt.Sprintf("··· %s hidden %s", humanize.Comma(int64(r.hidden)), util.Plural(r.hidden, "line"))
		if m.showLineNumbers {
			return styles.LineNumber.Render("") + styles.HiddenMarker.Render(marker)
		}
		return styles.HiddenMarker.Render(marker)
	}

	text := util.ExpandTabs(m.lines[r.line], util.DefaultTabWidth)
	width := m.width
	var prefix string
	if m.showLineNumbers {
		prefix = styles.LineNumber.Render(strconv.Itoa(r.line + 1))
		width -= lineNumWidth
	}
	if m.width > 0 {
		text = util.TruncateString(text, max(width, 4))
	}
	if m.matcher != nil && m.matcher.MatchString(m.lines[r.line]) {
		text = highlightMatches(text, m.matcher.Regex())
	}
	return prefix + text
}

// highlightMatches styles each span of text the expression hits. A seed line
// whose match is not in the displayed text is styled whole.
func highlightMatches(text string, re *regexp.Regexp) string {
	var b strings.Builder
	last := 0
	for _, span := range re.FindAllStringIndex(text, -1) {
		if span[0] == span[1] {
			continue
		}
		b.WriteString(text[last:span[0]])
		b.WriteString(styles.MatchedLine.Render(text[span[0]:span[1]]))
		last = span[1]
	}
	if last == 0 {
		return styles.MatchedLine.Render(text)
	}
	b.WriteString(text[last:])
	return b.String()
}

func (m Model) renderStatus() string {
	total := len(m.lines)
	hidden := m.hiddenCount()

	parts := []string{
		fmt.Sprintf("%s of %s %s", humanize.Comma(int64(total-hidden)), humanize.Comma(int64(total)), util.Plural(total, "line")),
		flagSummary(m.view.State().Flags()),
	}
	if len(m.rows) > m.bodyHeight() {
		parts = append(parts, fmt.Sprintf("%d%%", m.scrollPercent()))
	}
	bar := styles.StatusBar.Render(strings.Join(parts, " · "))

	if m.status == "" {
		return bar
	}
	var msg string
	switch m.statusLvl {
	case statusError:
		msg = styles.ErrorMsg.Render(m.status)
	case statusWarn:
		msg = styles.WarningMsg.Render(m.status)
	default:
		msg = styles.SuccessMsg.Render(m.status)
	}
	line := bar + " " + msg
	if m.width > 0 {
		line = util.TruncateANSI(line, m.width)
	}
	return line
}

func (m Model) scrollPercent() int {
	maxOffset := len(m.rows) - m.bodyHeight()
	if maxOffset <= 0 {
		return 100
	}
	return m.offset * 100 / maxOffset
}

func flagSummary(f filter.Options) string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	empty := "show"
	if f.HideEmptyLines {
		empty = "hide"
	}
	return fmt.Sprintf("empty:%s children:%s headings:%s", empty, onOff(f.IncludeChildItems), onOff(f.IncludeHeadingChildItems))
}

func (m Model) renderHelp() string {
	keyStyle := styles.HelpKey

	if m.mode == keymap.ModePattern {
		return styles.HelpBar.Render(
			keyStyle.Render("enter") + " apply  " +
				keyStyle.Render("esc") + " cancel",
		)
	}

	return styles.HelpBar.Render(
		keyStyle.Render("/") + " filter  " +
			keyStyle.Render("a") + " add/remove  " +
			keyStyle.Render("1-9") + " pinned  " +
			keyStyle.Render("c") + " clear  " +
			keyStyle.Render("e/i/h") + " flags  " +
			keyStyle.Render("?") + " help  " +
			keyStyle.Render("q") + " quit",
	)
}

// renderHelpScreen lists every normal-mode binding by category.
func (m Model) renderHelpScreen() string {
	var b strings.Builder
	byCategory := m.keymap.GetBindingsByCategory(keymap.ModeNormal)

	for _, cat := range m.keymap.GetCategories(keymap.ModeNormal) {
		b.WriteString(styles.Primary.Bold(true).Render(cat))
		b.WriteString("\n")
		for _, binding := range byCategory[cat] {
			key := binding.String()
			if binding.Command == keymap.CmdToggleSaved {
				key = "1-9"
			}
			b.WriteString(fmt.Sprintf("  %s  %s\n", styles.HelpKey.Render(fmt.Sprintf("%-8s", key)), styles.Text.Render(binding.Description)))
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.HelpBar.Render(styles.HelpKey.Render("?") + " close help"))
	return b.String()
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/linefilter/internal/config"
	"github.com/Iron-Ham/linefilter/internal/logging"
)

// logsOptions holds the flags of the logs command.
type logsOptions struct {
	tail      int
	follow    bool
	level     string
	since     string
	grep      string
	document  string
	component string
	format    string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View linefilter's debug log",
		Long: `View and filter linefilter's debug log.

Examples:
  # Show the last 50 entries
  linefilter logs

  # Show everything about one document
  linefilter logs -n 0 --document /home/me/notes.md

  # Follow the log in real time
  linefilter logs -f

  # Warnings and errors from the last hour
  linefilter logs --level warn --since 1h

  # Export as CSV
  linefilter logs -n 0 --format csv > linefilter.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runLogs(cmd, cfg.Logging.LogFile(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.tail, "tail", "n", 50, "Number of entries to show (0 for all)")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().StringVar(&opts.level, "level", "", "Filter by minimum level (debug/info/warn/error)")
	cmd.Flags().StringVar(&opts.since, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	cmd.Flags().StringVar(&opts.grep, "grep", "", "Filter logs matching pattern (regex)")
	cmd.Flags().StringVar(&opts.document, "document", "", "Only entries about this document")
	cmd.Flags().StringVar(&opts.component, "component", "", "Only entries from this component (engine, persist, watch, ...)")
	cmd.Flags().StringVar(&opts.format, "format", "pretty", "Output format: pretty, text, json or csv")

	return cmd
}

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// levelColor returns the ANSI color code for a log level
func levelColor(level string) string {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return colorGray
	case logging.LevelInfo:
		return colorBlue
	case logging.LevelWarn:
		return colorYellow
	case logging.LevelError:
		return colorRed
	default:
		return colorReset
	}
}

// formatLogEntry formats a log entry for terminal output
func formatLogEntry(entry logging.LogEntry) string {
	var sb strings.Builder

	sb.WriteString(colorGray)
	sb.WriteString("[")
	sb.WriteString(entry.Timestamp.Format("15:04:05.000"))
	sb.WriteString("]")
	sb.WriteString(colorReset)

	sb.WriteString(" ")
	sb.WriteString(levelColor(entry.Level))
	sb.WriteString("[")
	sb.WriteString(strings.ToUpper(entry.Level))
	sb.WriteString("]")
	sb.WriteString(colorReset)

	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	if entry.Component != "" {
		writeField(&sb, "component", entry.Component)
	}
	if entry.DocumentID != "" {
		writeField(&sb, "document", entry.DocumentID)
	}

	// Sorted so repeated runs print attributes in the same order
	keys := make([]string, 0, len(entry.Attrs))
	for key := range entry.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		writeField(&sb, key, fmt.Sprintf("%v", entry.Attrs[key]))
	}

	return sb.String()
}

func writeField(sb *strings.Builder, key, value string) {
	sb.WriteString(" ")
	sb.WriteString(colorCyan)
	sb.WriteString(key)
	sb.WriteString("=")
	sb.WriteString(colorReset)
	sb.WriteString(value)
}

// logSelector combines the structured filter with the --grep expression.
type logSelector struct {
	filter logging.LogFilter
	grep   *regexp.Regexp
}

func newLogSelector(opts logsOptions, now time.Time) (*logSelector, error) {
	sel := &logSelector{
		filter: logging.LogFilter{
			DocumentID: opts.document,
			Component:  opts.component,
		},
	}
	if opts.level != "" {
		sel.filter.Level = logging.ParseLevel(opts.level)
	}
	if opts.since != "" {
		duration, err := time.ParseDuration(opts.since)
		if err != nil {
			return nil, fmt.Errorf("invalid duration format: %w", err)
		}
		sel.filter.StartTime = now.Add(-duration)
	}
	if opts.grep != "" {
		re, err := regexp.Compile(opts.grep)
		if err != nil {
			return nil, fmt.Errorf("invalid grep pattern: %w", err)
		}
		sel.grep = re
	}
	return sel, nil
}

func (s *logSelector) apply(entries []logging.LogEntry) []logging.LogEntry {
	entries = logging.FilterLogs(entries, s.filter)
	if s.grep == nil {
		return entries
	}

	var kept []logging.LogEntry
	for _, entry := range entries {
		// Search the message and attribute values
		searchText := entry.Message
		for _, v := range entry.Attrs {
			searchText += " " + fmt.Sprintf("%v", v)
		}
		if s.grep.MatchString(searchText) {
			kept = append(kept, entry)
		}
	}
	return kept
}

func runLogs(cmd *cobra.Command, logPath string, opts logsOptions) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No logs found.")
		fmt.Fprintln(out, "Logs are stored at:", logPath)
		return nil
	}

	sel, err := newLogSelector(opts, time.Now())
	if err != nil {
		return err
	}

	if opts.follow {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return followLogs(ctx, out, logPath, sel)
	}

	entries, err := logging.ReadLogs(logPath)
	if err != nil {
		return err
	}
	entries = sel.apply(entries)

	if opts.tail > 0 && len(entries) > opts.tail {
		entries = entries[len(entries)-opts.tail:]
	}

	if opts.format != "pretty" {
		return logging.ExportLogEntries(out, entries, opts.format)
	}

	for _, entry := range entries {
		fmt.Fprintln(out, formatLogEntry(entry))
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
	}
	return nil
}

// followLogs implements tail -f behavior for the log file
func followLogs(ctx context.Context, out io.Writer, logPath string, sel *logSelector) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Fprintf(out, "Following logs... (Ctrl+C to stop)\n\n")

	reader := bufio.NewReader(file)
	var partial string
	for {
		chunk, err := reader.ReadString('\n')
		partial += chunk
		if err != nil {
			if err != io.EOF {
				return fmt.Errorf("error reading log file: %w", err)
			}
			// No new data, wait briefly and try again
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		line := strings.TrimSpace(partial)
		partial = ""
		if line == "" {
			continue
		}

		entries, err := logging.ParseLogs(strings.NewReader(line))
		if err != nil || len(entries) == 0 {
			// If we can't parse as JSON, display raw line
			fmt.Fprintln(out, line)
			continue
		}
		for _, entry := range sel.apply(entries) {
			fmt.Fprintln(out, formatLogEntry(entry))
		}
	}
}

// Package config provides CLI commands for managing linefilter configuration.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/linefilter/internal/config"
	tuiconfig "github.com/Iron-Ham/linefilter/internal/tui/config"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

// runInteractive opens the settings editor. Replaced in tests.
var runInteractive = tuiconfig.Run

// keyKind says how a value given on the command line is checked and typed.
type keyKind int

const (
	kindBool keyKind = iota
	kindInt
	kindPath
	kindChoice
)

// settableKey describes one key accepted by set and reset.
type settableKey struct {
	kind    keyKind
	choices func() []string
	def     func(*appconfig.Config) any
}

// settableKeys lists every key set and reset accept.
var settableKeys = map[string]settableKey{
	"filter.hide_empty_lines":            {kind: kindBool, def: func(c *appconfig.Config) any { return c.Filter.HideEmptyLines }},
	"filter.include_child_items":         {kind: kindBool, def: func(c *appconfig.Config) any { return c.Filter.IncludeChildItems }},
	"filter.include_heading_child_items": {kind: kindBool, def: func(c *appconfig.Config) any { return c.Filter.IncludeHeadingChildItems }},
	"filter.enable_template_variables":   {kind: kindBool, def: func(c *appconfig.Config) any { return c.Filter.EnableTemplateVariables }},
	"persistence.backend":                {kind: kindChoice, choices: appconfig.ValidBackends, def: func(c *appconfig.Config) any { return c.Persistence.Backend }},
	"persistence.dir":                    {kind: kindPath, def: func(c *appconfig.Config) any { return c.Persistence.Dir }},
	"saved.file":                         {kind: kindPath, def: func(c *appconfig.Config) any { return c.Saved.File }},
	"logging.enabled":                    {kind: kindBool, def: func(c *appconfig.Config) any { return c.Logging.Enabled }},
	"logging.level":                      {kind: kindChoice, choices: appconfig.ValidLogLevels, def: func(c *appconfig.Config) any { return c.Logging.Level }},
	"logging.file":                       {kind: kindPath, def: func(c *appconfig.Config) any { return c.Logging.File }},
	"logging.max_size_mb":                {kind: kindInt, def: func(c *appconfig.Config) any { return c.Logging.MaxSizeMB }},
	"logging.max_backups":                {kind: kindInt, def: func(c *appconfig.Config) any { return c.Logging.MaxBackups }},
	"logging.max_age_days":               {kind: kindInt, def: func(c *appconfig.Config) any { return c.Logging.MaxAgeDays }},
	"logging.compress":                   {kind: kindBool, def: func(c *appconfig.Config) any { return c.Logging.Compress }},
	"tui.theme":                          {kind: kindChoice, choices: appconfig.ValidThemes, def: func(c *appconfig.Config) any { return c.TUI.Theme }},
	"tui.show_line_numbers":              {kind: kindBool, def: func(c *appconfig.Config) any { return c.TUI.ShowLineNumbers }},
	"tui.show_hidden_markers":            {kind: kindBool, def: func(c *appconfig.Config) any { return c.TUI.ShowHiddenMarkers }},
}

// Register adds the config command to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify linefilter configuration",
		Long: `View or modify linefilter configuration.

Without arguments, opens an interactive configuration UI.
Use 'config show' to display configuration non-interactively.
Use subcommands to modify settings or create a config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  linefilter config set filter.hide_empty_lines false
  linefilter config set persistence.backend sqlite
  linefilter config set tui.theme nord

Valid keys:
` + keyHelp(),
			Args: cobra.ExactArgs(2),
			RunE: runConfigSet,
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create a default config file",
			Long:  `Create a default config file at ~/.config/linefilter/config.yaml with all available options.`,
			Args:  cobra.NoArgs,
			RunE:  runConfigInit,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Open config file in your editor",
			Long: `Open the config file in your preferred editor.

Uses $EDITOR environment variable, or falls back to common editors (vim, nano, vi).
If no config file exists, creates one with default values first.`,
			Args: cobra.NoArgs,
			RunE: runConfigEdit,
		},
		&cobra.Command{
			Use:   "reset [key]",
			Short: "Reset configuration to defaults",
			Long: `Reset configuration values to their defaults.

Without arguments, resets all configuration to defaults.
With a key argument, resets only that specific key.

Examples:
  linefilter config reset                    # Reset all to defaults
  linefilter config reset persistence.backend # Reset only the backend`,
			Args: cobra.MaximumNArgs(1),
			RunE: runConfigReset,
		},
	)
	return cmd
}

// keyHelp lists the settable keys, one per line, sorted.
func keyHelp() string {
	keys := sortedKeys()
	var sb strings.Builder
	for _, key := range keys {
		sk := settableKeys[key]
		switch sk.kind {
		case kindBool:
			fmt.Fprintf(&sb, "  %-36s true/false\n", key)
		case kindInt:
			fmt.Fprintf(&sb, "  %-36s non-negative integer\n", key)
		case kindPath:
			fmt.Fprintf(&sb, "  %-36s path (empty for the default)\n", key)
		case kindChoice:
			fmt.Fprintf(&sb, "  %-36s %s\n", key, strings.Join(sk.choices(), ", "))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func sortedKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for key := range settableKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "filter:")
	fmt.Fprintf(out, "  hide_empty_lines: %v\n", cfg.Filter.HideEmptyLines)
	fmt.Fprintf(out, "  include_child_items: %v\n", cfg.Filter.IncludeChildItems)
	fmt.Fprintf(out, "  include_heading_child_items: %v\n", cfg.Filter.IncludeHeadingChildItems)
	fmt.Fprintf(out, "  enable_template_variables: %v\n", cfg.Filter.EnableTemplateVariables)

	fmt.Fprintln(out, "persistence:")
	fmt.Fprintf(out, "  backend: %s\n", cfg.Persistence.Backend)
	fmt.Fprintf(out, "  dir: %s\n", cfg.Persistence.StoreDir())
	if len(cfg.Persistence.Ignore) > 0 {
		fmt.Fprintln(out, "  ignore:")
		for _, pattern := range cfg.Persistence.Ignore {
			fmt.Fprintf(out, "    - %s\n", pattern)
		}
	}

	fmt.Fprintln(out, "saved:")
	fmt.Fprintf(out, "  file: %s\n", cfg.Saved.Path())

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  file: %s\n", cfg.Logging.LogFile())
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)
	fmt.Fprintf(out, "  max_age_days: %d\n", cfg.Logging.MaxAgeDays)
	fmt.Fprintf(out, "  compress: %v\n", cfg.Logging.Compress)

	fmt.Fprintln(out, "tui:")
	fmt.Fprintf(out, "  theme: %s\n", cfg.TUI.Theme)
	fmt.Fprintf(out, "  show_line_numbers: %v\n", cfg.TUI.ShowLineNumbers)
	fmt.Fprintf(out, "  show_hidden_markers: %v\n", cfg.TUI.ShowHiddenMarkers)

	return nil
}

// parseValue checks value against the kind of key and returns it typed.
func parseValue(key, value string) (any, error) {
	sk, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'linefilter config set --help' to see valid keys", key)
	}

	switch sk.kind {
	case kindBool:
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case kindInt:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return intVal, nil
	case kindChoice:
		if !slices.Contains(sk.choices(), value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(sk.choices(), ", "))
		}
		return value, nil
	default:
		if strings.ContainsRune(value, '\x00') {
			return nil, fmt.Errorf("invalid value for %s: path contains invalid null character", key)
		}
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	typedValue, err := parseValue(key, args[1])
	if err != nil {
		return err
	}

	viper.Set(key, typedValue)

	configFile, err := writeConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// configTemplate is written by init.
const configTemplate = `# linefilter configuration

# How filters decide which lines stay visible
filter:
  # Hide blank lines that no match reached. When false, blank lines always show
  hide_empty_lines: true
  # Show the more-indented lines under a matching line
  include_child_items: true
  # Show the whole section under a matching markdown heading
  include_heading_child_items: false
  # Expand {{today}}, {{this-week}} and similar placeholders in patterns
  enable_template_variables: false

# Where each document's filters are remembered
persistence:
  # Backend: file, sqlite or none
  backend: file
  # Data directory (empty uses ~/.local/share/linefilter)
  dir: ""
  # Globs of document paths whose filters are never saved
  ignore: []

# Saved patterns
saved:
  # Catalog file (empty uses <data dir>/saved.yaml)
  file: ""

# Debug logging
logging:
  enabled: true
  # Level: debug, info, warn or error
  level: info
  # Log file (empty uses <data dir>/linefilter.log)
  file: ""
  # Rotate after this many megabytes
  max_size_mb: 10
  # Rotated files to keep (0 keeps all)
  max_backups: 3
  # Remove rotated files older than this many days (0 keeps them)
  max_age_days: 0
  # Gzip rotated files
  compress: false

# Interactive viewer
tui:
  # Theme: default, monokai, dracula or nord
  theme: default
  show_line_numbers: true
  show_hidden_markers: true
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'linefilter config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize linefilter's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := appconfig.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/linefilter/config.yaml\n")
	fmt.Fprintf(out, "  3. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: LINEFILTER_* (e.g., LINEFILTER_FILTER_HIDE_EMPTY_LINES)")
	fmt.Fprintln(out, "Data directory:", appconfig.DataDir())

	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file doesn't exist, creating with defaults...\n")
		if err := runConfigInit(cmd, args); err != nil {
			return err
		}
	}

	editor, err := findEditor()
	if err != nil {
		return err
	}

	editorCmd := execCommand(editor, configFile)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file saved: %s\n", configFile)
	return nil
}

// findEditor picks $EDITOR, then $VISUAL, then the first common editor on
// PATH.
func findEditor() (string, error) {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor, nil
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor, nil
	}
	for _, e := range []string{"vim", "nano", "vi"} {
		if _, err := execLookPath(e); err == nil {
			return e, nil
		}
	}
	return "", fmt.Errorf("no editor found. Set $EDITOR environment variable")
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	defaults := appconfig.Default()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for key, sk := range settableKeys {
			viper.Set(key, sk.def(defaults))
		}
		fmt.Fprintln(out, "Reset all configuration to defaults.")
	} else {
		key := args[0]
		sk, ok := settableKeys[key]
		if !ok {
			return fmt.Errorf("unknown configuration key: %s\nRun 'linefilter config set --help' to see valid keys", key)
		}
		value := sk.def(defaults)
		viper.Set(key, value)
		fmt.Fprintf(out, "Reset %s to default: %v\n", key, value)
	}

	configFile, err := writeConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// writeConfig writes viper's settings to the user config file.
func writeConfig() (string, error) {
	configDir := appconfig.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := appconfig.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

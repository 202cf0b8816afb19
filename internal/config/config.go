package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/linefilter/internal/filter"
	"github.com/Iron-Ham/linefilter/internal/logging"
)

// Config represents the complete linefilter configuration
type Config struct {
	Filter      FilterConfig      `mapstructure:"filter"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Saved       SavedConfig       `mapstructure:"saved"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	TUI         TUIConfig         `mapstructure:"tui"`
}

// FilterConfig holds the behavior flags applied to every document
type FilterConfig struct {
	// HideEmptyLines hides blank lines that no match or propagation reached.
	// When false, blank lines are always shown (default: true)
	HideEmptyLines bool `mapstructure:"hide_empty_lines"`
	// IncludeChildItems shows the more-indented lines under a match (default: true)
	IncludeChildItems bool `mapstructure:"include_child_items"`
	// IncludeHeadingChildItems shows a matched heading's section (default: false)
	IncludeHeadingChildItems bool `mapstructure:"include_heading_child_items"`
	// EnableTemplateVariables expands {{today}} style placeholders before
	// patterns are combined (default: false)
	EnableTemplateVariables bool `mapstructure:"enable_template_variables"`
}

// Options returns the visibility flags as filter options.
func (f FilterConfig) Options() filter.Options {
	return filter.Options{
		HideEmptyLines:           f.HideEmptyLines,
		IncludeChildItems:        f.IncludeChildItems,
		IncludeHeadingChildItems: f.IncludeHeadingChildItems,
	}
}

// PersistenceConfig controls where each document's filter set is kept
type PersistenceConfig struct {
	// Backend is "file", "sqlite" or "none" (default: "file")
	Backend string `mapstructure:"backend"`
	// Dir holds the store's data. Empty means DataDir().
	// Supports ~ for home directory expansion.
	Dir string `mapstructure:"dir"`
	// Ignore lists glob patterns of document paths whose filters are never saved
	Ignore []string `mapstructure:"ignore"`
}

// SavedConfig controls the saved pattern catalog
type SavedConfig struct {
	// File is the catalog path. Empty means DataDir()/saved.yaml
	File string `mapstructure:"file"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// File is the log file path. Empty means DataDir()/linefilter.log
	File string `mapstructure:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAgeDays removes rotated files older than this many days, 0 keeps them (default: 0)
	MaxAgeDays int `mapstructure:"max_age_days"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
}

// TUIConfig controls the interactive viewer
type TUIConfig struct {
	// Theme is the color theme for the viewer (default: "default")
	// Options: "default", "monokai", "dracula", "nord"
	Theme string `mapstructure:"theme"`
	// ShowLineNumbers prefixes each shown line with its number in the document
	ShowLineNumbers bool `mapstructure:"show_line_numbers"`
	// ShowHiddenMarkers draws a marker where hidden lines were skipped
	ShowHiddenMarkers bool `mapstructure:"show_hidden_markers"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Filter: FilterConfig{
			HideEmptyLines:           true,
			IncludeChildItems:        true,
			IncludeHeadingChildItems: false,
			EnableTemplateVariables:  false,
		},
		Persistence: PersistenceConfig{
			Backend: "file",
			Dir:     "", // Empty means use DataDir()
			Ignore:  []string{},
		},
		Saved: SavedConfig{
			File: "",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 0,
			Compress:   false,
		},
		TUI: TUIConfig{
			Theme:             "default",
			ShowLineNumbers:   true,
			ShowHiddenMarkers: true,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Filter defaults
	viper.SetDefault("filter.hide_empty_lines", defaults.Filter.HideEmptyLines)
	viper.SetDefault("filter.include_child_items", defaults.Filter.IncludeChildItems)
	viper.SetDefault("filter.include_heading_child_items", defaults.Filter.IncludeHeadingChildItems)
	viper.SetDefault("filter.enable_template_variables", defaults.Filter.EnableTemplateVariables)

	// Persistence defaults
	viper.SetDefault("persistence.backend", defaults.Persistence.Backend)
	viper.SetDefault("persistence.dir", defaults.Persistence.Dir)
	viper.SetDefault("persistence.ignore", defaults.Persistence.Ignore)

	// Saved defaults
	viper.SetDefault("saved.file", defaults.Saved.File)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// TUI defaults
	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.show_line_numbers", defaults.TUI.ShowLineNumbers)
	viper.SetDefault("tui.show_hidden_markers", defaults.TUI.ShowHiddenMarkers)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "linefilter")
	}
	// Fall back to ~/.config/linefilter
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linefilter"
	}
	return filepath.Join(home, ".config", "linefilter")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the directory for filter records, saved patterns and logs
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "linefilter")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linefilter"
	}
	return filepath.Join(home, ".local", "share", "linefilter")
}

// StoreDir returns the resolved persistence directory.
func (p *PersistenceConfig) StoreDir() string {
	if p.Dir == "" {
		return DataDir()
	}
	return expandHome(p.Dir)
}

// Path returns the resolved saved catalog path.
func (s *SavedConfig) Path() string {
	if s.File == "" {
		return filepath.Join(DataDir(), "saved.yaml")
	}
	return expandHome(s.File)
}

// LogFile returns the resolved log file path.
func (l *LoggingConfig) LogFile() string {
	if l.File == "" {
		return filepath.Join(DataDir(), "linefilter.log")
	}
	return expandHome(l.File)
}

// LoggerOptions converts the logging section into logging.Options.
func (l *LoggingConfig) LoggerOptions() logging.Options {
	return logging.Options{
		Level:      l.Level,
		File:       l.LogFile(),
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ValidBackends returns the list of valid persistence backends
func ValidBackends() []string {
	return []string{"file", "sqlite", "none"}
}

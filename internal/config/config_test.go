package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/linefilter/internal/filter"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default filter flags
	if !cfg.Filter.HideEmptyLines {
		t.Error("Filter.HideEmptyLines should be true by default")
	}
	if !cfg.Filter.IncludeChildItems {
		t.Error("Filter.IncludeChildItems should be true by default")
	}
	if cfg.Filter.IncludeHeadingChildItems {
		t.Error("Filter.IncludeHeadingChildItems should be false by default")
	}
	if cfg.Filter.EnableTemplateVariables {
		t.Error("Filter.EnableTemplateVariables should be false by default")
	}

	// Verify default persistence config
	if cfg.Persistence.Backend != "file" {
		t.Errorf("Persistence.Backend = %q, want %q", cfg.Persistence.Backend, "file")
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("Logging.MaxSizeMB = %d, want 10", cfg.Logging.MaxSizeMB)
	}

	if cfg.TUI.Theme != "default" {
		t.Errorf("TUI.Theme = %q, want %q", cfg.TUI.Theme, "default")
	}
}

func TestFilterConfig_Options(t *testing.T) {
	got := Default().Filter.Options()
	if got != filter.DefaultOptions() {
		t.Errorf("Default().Filter.Options() = %+v, want %+v", got, filter.DefaultOptions())
	}

	custom := FilterConfig{IncludeHeadingChildItems: true}
	want := filter.Options{IncludeHeadingChildItems: true}
	if custom.Options() != want {
		t.Errorf("Options() = %+v, want %+v", custom.Options(), want)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/linefilter"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "linefilter")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/linefilter/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestResolvedPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	home, _ := os.UserHomeDir()

	tests := []struct {
		name string
		got  func(c *Config) string
		set  func(c *Config)
		want string
	}{
		{
			name: "store dir default",
			got:  func(c *Config) string { return c.Persistence.StoreDir() },
			want: "/data/linefilter",
		},
		{
			name: "store dir explicit",
			got:  func(c *Config) string { return c.Persistence.StoreDir() },
			set:  func(c *Config) { c.Persistence.Dir = "/var/lf" },
			want: "/var/lf",
		},
		{
			name: "store dir home",
			got:  func(c *Config) string { return c.Persistence.StoreDir() },
			set:  func(c *Config) { c.Persistence.Dir = "~/lf" },
			want: filepath.Join(home, "lf"),
		},
		{
			name: "saved default",
			got:  func(c *Config) string { return c.Saved.Path() },
			want: "/data/linefilter/saved.yaml",
		},
		{
			name: "log default",
			got:  func(c *Config) string { return c.Logging.LogFile() },
			want: "/data/linefilter/linefilter.log",
		},
		{
			name: "log explicit",
			got:  func(c *Config) string { return c.Logging.LoggerOptions().File },
			set:  func(c *Config) { c.Logging.File = "/tmp/lf.log" },
			want: "/tmp/lf.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if tt.set != nil {
				tt.set(cfg)
			}
			if got := tt.got(cfg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGet(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Persistence.Backend != "file" {
		t.Errorf("Get().Persistence.Backend = %q, want %q", cfg.Persistence.Backend, "file")
	}
}

func TestLoad_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`filter:
  include_heading_child_items: true
  enable_template_variables: true
persistence:
  backend: sqlite
  ignore:
    - "**/secret/*"
tui:
  theme: nord
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Filter.IncludeHeadingChildItems || !cfg.Filter.EnableTemplateVariables {
		t.Errorf("Filter = %+v, want heading children and templates on", cfg.Filter)
	}
	if !cfg.Filter.HideEmptyLines {
		t.Error("unset keys should keep their defaults")
	}
	if cfg.Persistence.Backend != "sqlite" {
		t.Errorf("Persistence.Backend = %q, want sqlite", cfg.Persistence.Backend)
	}
	if len(cfg.Persistence.Ignore) != 1 || cfg.Persistence.Ignore[0] != "**/secret/*" {
		t.Errorf("Persistence.Ignore = %v", cfg.Persistence.Ignore)
	}
	if cfg.TUI.Theme != "nord" {
		t.Errorf("TUI.Theme = %q, want nord", cfg.TUI.Theme)
	}
}

func TestLoad_Invalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("persistence.backend", "redis")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject an unknown backend")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Load() error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 1 || verrs[0].Field != "persistence.backend" {
		t.Errorf("Load() errors = %v", verrs)
	}

	if cfg := Get(); cfg.Persistence.Backend != "file" {
		t.Errorf("Get() should fall back to defaults, got backend %q", cfg.Persistence.Backend)
	}
}

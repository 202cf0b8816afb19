package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

// hasField reports whether errs contains an error for field.
func hasField(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		field   string
		wantErr bool
	}{
		{"file backend", func(c *Config) { c.Persistence.Backend = "file" }, "persistence.backend", false},
		{"sqlite backend", func(c *Config) { c.Persistence.Backend = "sqlite" }, "persistence.backend", false},
		{"none backend", func(c *Config) { c.Persistence.Backend = "none" }, "persistence.backend", false},
		{"empty backend", func(c *Config) { c.Persistence.Backend = "" }, "persistence.backend", false},
		{"unknown backend", func(c *Config) { c.Persistence.Backend = "redis" }, "persistence.backend", true},
		{"null byte in dir", func(c *Config) { c.Persistence.Dir = "/tmp/\x00x" }, "persistence.dir", true},
		{"overlong dir", func(c *Config) { c.Persistence.Dir = "/" + strings.Repeat("a", 5000) }, "persistence.dir", true},
		{"valid ignore glob", func(c *Config) { c.Persistence.Ignore = []string{"**/*.secret.md"} }, "persistence.ignore[0]", false},
		{"blank ignore glob", func(c *Config) { c.Persistence.Ignore = []string{"a", " "} }, "persistence.ignore[1]", true},
		{"invalid ignore glob", func(c *Config) { c.Persistence.Ignore = []string{"[unclosed"} }, "persistence.ignore[0]", true},
		{"null byte in saved file", func(c *Config) { c.Saved.File = "x\x00" }, "saved.file", true},
		{"valid level", func(c *Config) { c.Logging.Level = "debug" }, "logging.level", false},
		{"empty level", func(c *Config) { c.Logging.Level = "" }, "logging.level", false},
		{"invalid level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level", true},
		{"case sensitive level", func(c *Config) { c.Logging.Level = "INFO" }, "logging.level", true},
		{"zero max size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb", true},
		{"huge max size", func(c *Config) { c.Logging.MaxSizeMB = 5000 }, "logging.max_size_mb", true},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups", true},
		{"zero backups", func(c *Config) { c.Logging.MaxBackups = 0 }, "logging.max_backups", false},
		{"negative max age", func(c *Config) { c.Logging.MaxAgeDays = -3 }, "logging.max_age_days", true},
		{"valid theme", func(c *Config) { c.TUI.Theme = "dracula" }, "tui.theme", false},
		{"empty theme", func(c *Config) { c.TUI.Theme = "" }, "tui.theme", false},
		{"unknown theme", func(c *Config) { c.TUI.Theme = "neon" }, "tui.theme", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()

			if got := hasField(errs, tt.field); got != tt.wantErr {
				t.Errorf("error for %s = %v, want %v (errors: %v)", tt.field, got, tt.wantErr, errs)
			}
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Persistence.Backend = "bogus"
	cfg.Logging.Level = "bogus"
	cfg.TUI.Theme = "bogus"

	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(errs), errs)
	}
}

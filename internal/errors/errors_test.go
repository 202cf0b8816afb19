package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// PatternError Tests
// -----------------------------------------------------------------------------

func TestNewPatternError(t *testing.T) {
	cause := errors.New("missing closing ]")
	err := NewPatternError("pattern does not compile", cause)

	if err.message != "pattern does not compile" {
		t.Errorf("message = %q, want %q", err.message, "pattern does not compile")
	}
	if err.cause != cause {
		t.Errorf("cause = %v, want %v", err.cause, cause)
	}
	if err.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityError)
	}
	if IsWarning(err) {
		t.Error("a rejected pattern is not a warning")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestPatternError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PatternError
		want string
	}{
		{
			name: "no context",
			err:  NewPatternError("rejected", nil),
			want: "pattern error: rejected",
		},
		{
			name: "raw only",
			err:  NewPatternError("rejected", nil).WithPattern("["),
			want: "pattern error [pattern=[]: rejected",
		},
		{
			name: "resolved equal to raw is omitted",
			err:  NewPatternError("rejected", nil).WithPattern("a(").WithResolved("a("),
			want: "pattern error [pattern=a(]: rejected",
		},
		{
			name: "resolved differs",
			err:  NewPatternError("rejected", errors.New("boom")).WithPattern("{{today}}(").WithResolved("2024-01-02("),
			want: "pattern error [pattern={{today}}(, resolved=2024-01-02(]: rejected: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPatternError_Is(t *testing.T) {
	err := NewPatternError("rejected", nil)

	if !errors.Is(err, ErrInvalidPattern) {
		t.Error("PatternError should match ErrInvalidPattern")
	}
	if !errors.Is(err, &PatternError{}) {
		t.Error("PatternError should match *PatternError")
	}
	if errors.Is(err, ErrCompositionFailed) {
		t.Error("PatternError should not match ErrCompositionFailed")
	}
}

// -----------------------------------------------------------------------------
// CompositionError Tests
// -----------------------------------------------------------------------------

func TestCompositionError(t *testing.T) {
	cause := errors.New("invalid repeat count")
	err := NewCompositionError(cause).WithPatternCount(2).WithOffender("a{2,1}")

	want := "composition error [patterns=2, offender=a{2,1}]: could not combine active filters: invalid repeat count"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrCompositionFailed) {
		t.Error("CompositionError should match ErrCompositionFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("CompositionError should match its cause")
	}
	if GetSeverity(err) != SeverityError {
		t.Errorf("GetSeverity() = %v, want error", GetSeverity(err))
	}
}

// -----------------------------------------------------------------------------
// TemplateFormatWarning Tests
// -----------------------------------------------------------------------------

func TestTemplateFormatWarning(t *testing.T) {
	err := NewTemplateFormatWarning("today", "[YYYY", "YYYY-MM-DD", nil)

	if !strings.Contains(err.Error(), "variable=today") {
		t.Errorf("Error() = %q, want variable context", err.Error())
	}
	if !errors.Is(err, ErrTemplateFormat) {
		t.Error("TemplateFormatWarning should match ErrTemplateFormat")
	}
	if !IsWarning(err) {
		t.Error("TemplateFormatWarning should be a warning")
	}
}

// -----------------------------------------------------------------------------
// PersistenceError Tests
// -----------------------------------------------------------------------------

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewPersistenceError("set", cause).WithDocumentID("/notes/a.md")

	want := "persistence error [document=/notes/a.md]: set failed: disk full"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrPersistence) {
		t.Error("PersistenceError should match ErrPersistence")
	}
	if !IsRetryable(err) {
		t.Error("PersistenceError should be retryable")
	}
	if IsUserFacing(err) {
		t.Error("PersistenceError should not be user-facing")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("saved pattern", "work")
	if got := err.Error(); got != "saved pattern 'work' not found" {
		t.Errorf("Error() = %q", got)
	}

	if !errors.Is(err, &NotFoundError{}) {
		t.Error("NotFoundError should match its type")
	}
	if !IsUserFacing(err) || !IsWarning(err) {
		t.Error("NotFoundError should be a user-facing warning")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("saved pattern", "work")
	if got := err.Error(); got != "saved pattern 'work' already exists" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, &AlreadyExistsError{}) {
		t.Error("AlreadyExistsError should match its type")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("name cannot be empty").WithField("name").WithValue("  ")

	want := "validation error [field=name, value=  ]: name cannot be empty"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestClassificationOfPlainErrors(t *testing.T) {
	plain := errors.New("plain")

	if IsRetryable(plain) {
		t.Error("plain error should not be retryable")
	}
	if IsUserFacing(plain) {
		t.Error("plain error should not be user-facing")
	}
	if GetSeverity(plain) != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want error", GetSeverity(plain))
	}
	if GetSeverity(nil) != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want debug", GetSeverity(nil))
	}
	if IsWarning(nil) {
		t.Error("nil should not be a warning")
	}
}

func TestClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewPatternError("rejected", nil))

	if !IsUserFacing(err) {
		t.Error("wrapped PatternError should stay user-facing")
	}
	if GetSeverity(err) != SeverityError {
		t.Errorf("GetSeverity() = %v, want error", GetSeverity(err))
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	err := Wrap(ErrPersistence, "flush")
	if err.Error() != "flush: persistence failed" {
		t.Errorf("Wrap() = %q", err.Error())
	}
	if !errors.Is(err, ErrPersistence) {
		t.Error("Wrap should preserve the chain")
	}

	err = Wrapf(ErrDocumentUnreadable, "read %s", "a.md")
	if err.Error() != "read a.md: document unreadable" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
}

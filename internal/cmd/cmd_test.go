package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/linefilter/internal/event"
	"github.com/Iron-Ham/linefilter/internal/watch"
)

const tasks = `# Tasks
- TODO write docs
  - sub item
- done thing

- TODO ship
`

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// run executes args against a fresh command tree.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommand(newRootCmd(), args...)
}

// setupTestEnvironment points configuration and data at temporary
// directories and returns the data directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", dataHome)
	viper.Reset()
	t.Cleanup(viper.Reset)

	return filepath.Join(dataHome, "linefilter")
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "linefilter", root.Use)

	expectedCmds := []string{"apply", "filter", "saved", "resolve", "watch", "view", "logs", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range root.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		assert.True(t, cmdMap[expected], "expected subcommand %q not found", expected)
	}
}

func TestApply_PatternsPersist(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	out, err := run(t, "apply", doc, "-p", "TODO")
	require.NoError(t, err)
	want := "- TODO write docs\n  - sub item\n- TODO ship\n"
	assert.Equal(t, want, out)

	// The set is remembered for the next run
	out, err = run(t, "apply", doc)
	require.NoError(t, err)
	assert.Equal(t, want, out)

	out, err = run(t, "filter", "show", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "1. TODO")
	assert.Contains(t, out, "3 of 6 lines shown")
}

func TestApply_NoFiltersShowsEverything(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	out, err := run(t, "apply", doc)
	require.NoError(t, err)
	assert.Equal(t, tasks, out)
}

func TestApply_FlagOverrides(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	out, err := run(t, "apply", doc, "-p", "TODO", "--children=false", "--hide-empty=false")
	require.NoError(t, err)
	assert.Equal(t, "- TODO write docs\n\n- TODO ship\n", out)
}

func TestApply_AnnotateAndStats(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	out, err := run(t, "apply", doc, "-p", "ship", "--annotate", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "- # Tasks\n")
	assert.Contains(t, out, "+ - TODO ship\n")
	assert.Contains(t, out, "shown 1 of 6 lines (5 hidden) using 1 pattern\n")
}

func TestApply_InvalidPattern(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	_, err := run(t, "apply", doc, "-p", "(")
	require.Error(t, err)

	// Nothing was stored
	out, err := run(t, "filter", "show", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "no active filters")
}

func TestApply_MissingFile(t *testing.T) {
	setupTestEnvironment(t)

	_, err := run(t, "apply", filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestFilter_ToggleAndClear(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	out, err := run(t, "filter", "toggle", doc, "TODO")
	require.NoError(t, err)
	assert.Contains(t, out, "1. TODO")

	out, err = run(t, "filter", "toggle", doc, "done")
	require.NoError(t, err)
	assert.Contains(t, out, "1. TODO")
	assert.Contains(t, out, "2. done")
	assert.Contains(t, out, "4 of 6 lines shown")

	out, err = run(t, "filter", "toggle", doc, "TODO")
	require.NoError(t, err)
	assert.NotContains(t, out, "TODO")
	assert.Contains(t, out, "1. done")

	out, err = run(t, "filter", "clear", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "no active filters")
	assert.Contains(t, out, "6 of 6 lines shown")
}

func TestFilter_ManualAndSet(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	_, err := run(t, "filter", "set", doc, "TODO", "done")
	require.NoError(t, err)

	out, err := run(t, "filter", "manual", doc, "ship")
	require.NoError(t, err)
	assert.Contains(t, out, "1. ship")
	assert.NotContains(t, out, "2.")

	out, err = run(t, "filter", "manual", doc, "")
	require.NoError(t, err)
	assert.Contains(t, out, "no active filters")
}

func TestFilter_Rename(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	_, err := run(t, "filter", "toggle", doc, "TODO")
	require.NoError(t, err)

	moved := filepath.Join(filepath.Dir(doc), "renamed.md")
	require.NoError(t, os.Rename(doc, moved))

	out, err := run(t, "filter", "rename", doc, moved)
	require.NoError(t, err)
	assert.Contains(t, out, "Moved filters")

	out, err = run(t, "filter", "show", moved)
	require.NoError(t, err)
	assert.Contains(t, out, "1. TODO")
}

func TestSaved_Lifecycle(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	out, err := run(t, "saved", "add", "--name", "shipping", "--pin", "ship")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved shipping")

	out, err = run(t, "saved", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "shipping")
	assert.Contains(t, out, "yes")

	out, err = run(t, "filter", "saved", doc, "shipping")
	require.NoError(t, err)
	assert.Contains(t, out, "1. ship")

	_, err = run(t, "saved", "edit", "shipping", "--pattern", "ship|docs")
	require.NoError(t, err)

	out, err = run(t, "saved", "unpin", "shipping")
	require.NoError(t, err)
	assert.Contains(t, out, "Unpinned shipping")

	out, err = run(t, "saved", "list", "--pinned")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved patterns.")

	out, err = run(t, "saved", "rm", "shipping")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed shipping")

	out, err = run(t, "saved", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved patterns.")
}

func TestSaved_Errors(t *testing.T) {
	setupTestEnvironment(t)

	_, err := run(t, "saved", "add", "[")
	assert.Error(t, err, "invalid pattern")

	_, err = run(t, "saved", "rm", "nothing")
	assert.Error(t, err, "unknown reference")

	_, err = run(t, "saved", "edit", "nothing")
	assert.Error(t, err, "edit without changes")
}

func TestResolve(t *testing.T) {
	setupTestEnvironment(t)

	out, err := run(t, "resolve", "--at", "2026-03-04", "due {{today}}", "{{tomorrow:DD/MM}}", "plain")
	require.NoError(t, err)
	assert.Equal(t, "due 2026-03-04\n05/03\nplain\n", out)

	_, err = run(t, "resolve", "--at", "March 4", "{{today}}")
	assert.Error(t, err)

	_, err = run(t, "resolve", "--check", "({{today}}")
	assert.Error(t, err)
}

func TestResolve_Explain(t *testing.T) {
	setupTestEnvironment(t)

	out, err := run(t, "resolve", "--at", "2026-03-04", "--explain", "due {{today:DD/MM}} {{bogus}}", "{{bogus}}", "plain")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"due 04/03 {{bogus}}",
		"  {{today:DD/MM}}  single, format DD/MM",
		"{{bogus}}",
		"  no known variables; placeholders are left as text",
		"plain",
		"  no placeholders",
		"",
	}, "\n"), out)

	out, err = run(t, "resolve", "--at", "2026-03-04", "--explain", "{{this-week:ddd}}")
	require.NoError(t, err)
	assert.Contains(t, out, "  {{this-week:ddd}}  range, format ddd\n")
	assert.Contains(t, out, "(Mon|Tue|Wed|Thu|Fri|Sat|Sun)")
}

func TestLogs(t *testing.T) {
	dataDir := setupTestEnvironment(t)

	out, err := run(t, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "No logs found.")

	logLines := strings.Join([]string{
		`{"time":"2026-01-02T10:00:00Z","level":"INFO","msg":"visibility recomputed","component":"engine"}`,
		`{"time":"2026-01-02T10:00:01Z","level":"WARN","msg":"filter composition failed","component":"engine","document_id":"/notes.md"}`,
		`{"time":"2026-01-02T10:00:02Z","level":"ERROR","msg":"write failed","component":"persist"}`,
	}, "\n") + "\n"
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "linefilter.log"), []byte(logLines), 0644))

	out, err = run(t, "logs", "--level", "warn", "--format", "text")
	require.NoError(t, err)
	assert.NotContains(t, out, "visibility recomputed")
	assert.Contains(t, out, "WARN - filter composition failed (component=engine, document=/notes.md)")
	assert.Contains(t, out, "ERROR - write failed")

	out, err = run(t, "logs", "--component", "persist")
	require.NoError(t, err)
	assert.Contains(t, out, "write failed")
	assert.NotContains(t, out, "composition")

	out, err = run(t, "logs", "-n", "1", "--grep", "fail")
	require.NoError(t, err)
	assert.Contains(t, out, "write failed")
	assert.NotContains(t, out, "composition")

	_, err = run(t, "logs", "--grep", "(")
	assert.Error(t, err)
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test
// to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchView_ReprintsOnChange(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	root := newRootCmd()
	root.SetArgs([]string{"filter", "toggle", doc, "TODO"})
	root.SetOut(new(bytes.Buffer))
	require.NoError(t, root.Execute())

	rt, err := openRuntime(nil)
	require.NoError(t, err)
	defer rt.Close()

	view, err := rt.open(context.Background(), doc)
	require.NoError(t, err)
	defer view.Close()

	w, err := watch.New(watch.WithDebounce(10 * time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- watchView(ctx, out, w, view) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "- TODO ship")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(doc, []byte(tasks+"- TODO celebrate\n"), 0644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "- TODO celebrate")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchView did not return after cancel")
	}
}

func TestWarningText(t *testing.T) {
	msg := warningText(event.NewCompositionFailedEvent("/notes.md", fmt.Errorf("bad")))
	assert.Contains(t, msg, "showing every line")

	msg = warningText(event.NewTemplateFormatWarningEvent("/notes.md", "today", "QQ%", fmt.Errorf("bad")))
	assert.Equal(t, `invalid format "QQ%" for {{today}}, using the default`, msg)

	assert.Empty(t, warningText(event.NewFilterChangedEvent("/notes.md", "toggle", nil, nil)))
}

func TestView_RequiresTerminal(t *testing.T) {
	setupTestEnvironment(t)
	doc := writeDoc(t, tasks)

	_, err := run(t, "view", doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a terminal")
}

func TestSetVersion(t *testing.T) {
	orig := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = orig })

	SetVersion("1.2.3", "abc123")
	assert.Equal(t, "1.2.3 (abc123)", rootCmd.Version)
}

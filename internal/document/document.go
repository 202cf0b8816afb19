// Package document supplies the line sequences the engine filters.
//
// A Source is re-read on every recompute, so implementations return the
// current content each time rather than a cached copy.
package document

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Iron-Ham/linefilter/internal/errors"
)

// Source is a document as the engine sees it: an identity and its lines.
type Source interface {
	// ID returns the document identity used as the persistence key.
	ID() string
	// Lines returns the current lines, without line terminators.
	Lines() ([]string, error)
}

// File is a document backed by a file on disk.
type File struct {
	path string
}

// NewFile creates a File for path. The identity is the cleaned absolute
// path, so "./a.md" and "a.md" name the same document.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}
	return &File{path: filepath.Clean(abs)}, nil
}

// ID implements Source.
func (f *File) ID() string { return f.path }

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Lines implements Source.
func (f *File) Lines() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.Join(errors.ErrDocumentUnreadable, err)
	}
	return SplitLines(data), nil
}

// SplitLines splits data into lines, accepting "\n" and "\r\n" endings. A
// final line terminator does not start an extra empty line.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return []string{}
	}

	lines := make([]string, 0, bytes.Count(data, []byte{'\n'})+1)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

// JoinLines is the inverse of SplitLines for "\n"-terminated output.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Memory is an in-memory document whose content can be replaced. It is safe
// for concurrent use.
type Memory struct {
	id string

	mu    sync.RWMutex
	lines []string
}

// NewMemory creates a Memory document.
func NewMemory(id string, lines []string) *Memory {
	return &Memory{id: id, lines: slices.Clone(lines)}
}

// ID implements Source.
func (m *Memory) ID() string { return m.id }

// Lines implements Source.
func (m *Memory) Lines() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.lines), nil
}

// SetLines replaces the content.
func (m *Memory) SetLines(lines []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = slices.Clone(lines)
}

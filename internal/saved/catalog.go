// Package saved manages user-named, reusable filter patterns.
//
// Items keep a stable ID across edits. Pinned items are the ones a front end
// offers as standing toggles; the engine only ever sees their pattern text.
package saved

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/linefilter/internal/errors"
)

// minPrefixLen is the shortest ID prefix accepted by Lookup.
const minPrefixLen = 4

// Item is one saved pattern.
type Item struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name,omitempty"`
	Pattern string `yaml:"pattern"`
	Pinned  bool   `yaml:"pinned,omitempty"`
}

// Label returns the name, or the pattern when the item is unnamed.
func (i Item) Label() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Pattern
}

// Validator checks a pattern before it is stored.
type Validator func(pattern string) error

// Edit describes changes to an item. Nil fields are left as they are.
type Edit struct {
	Name    *string
	Pattern *string
}

// catalogFile is the on-disk layout.
type catalogFile struct {
	Version int    `yaml:"version"`
	Items   []Item `yaml:"items"`
}

// FileCatalog stores items in a YAML file, rewritten atomically on every
// change. It is safe for concurrent use within one process.
type FileCatalog struct {
	path     string
	validate Validator

	mu    sync.RWMutex
	items []Item
}

// Open loads the catalog at path. A missing file is an empty catalog. A nil
// validate accepts any non-blank pattern.
func Open(path string, validate Validator) (*FileCatalog, error) {
	c := &FileCatalog{path: path, validate: validate}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read saved patterns: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	c.items = file.Items
	return c, nil
}

// Path returns the backing file.
func (c *FileCatalog) Path() string {
	return c.path
}

// List returns every item in insertion order.
func (c *FileCatalog) List() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Pinned returns the pinned items in insertion order.
func (c *FileCatalog) Pinned() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Item
	for _, it := range c.items {
		if it.Pinned {
			out = append(out, it)
		}
	}
	return out
}

// Get returns the item with exactly this ID.
func (c *FileCatalog) Get(id string) (Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i], nil
	}
	return Item{}, notFound(id)
}

// Lookup resolves ref as an exact ID, then an exact name, then a unique ID
// prefix of at least four characters.
func (c *FileCatalog) Lookup(ref string) (Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, err := c.resolve(ref)
	if err != nil {
		return Item{}, err
	}
	return c.items[i], nil
}

// Add validates and stores a new item.
func (c *FileCatalog) Add(name, pattern string) (Item, error) {
	name = strings.TrimSpace(name)
	if err := c.check(pattern); err != nil {
		return Item{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if name != "" && c.indexOfName(name) >= 0 {
		return Item{}, errors.NewAlreadyExistsError("saved pattern", name)
	}

	item := Item{ID: uuid.NewString(), Name: name, Pattern: pattern}
	next := append(slices.Clone(c.items), item)
	if err := c.save(next); err != nil {
		return Item{}, err
	}
	c.items = next
	return item, nil
}

// Update applies e to the item ref resolves to. The ID is kept.
func (c *FileCatalog) Update(ref string, e Edit) (Item, error) {
	if e.Pattern != nil {
		if err := c.check(*e.Pattern); err != nil {
			return Item{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.resolve(ref)
	if err != nil {
		return Item{}, err
	}

	item := c.items[i]
	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		if name != "" {
			if j := c.indexOfName(name); j >= 0 && j != i {
				return Item{}, errors.NewAlreadyExistsError("saved pattern", name)
			}
		}
		item.Name = name
	}
	if e.Pattern != nil {
		item.Pattern = *e.Pattern
	}

	return item, c.replace(i, item)
}

// Remove deletes the item ref resolves to and returns it.
func (c *FileCatalog) Remove(ref string) (Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.resolve(ref)
	if err != nil {
		return Item{}, err
	}

	removed := c.items[i]
	next := slices.Delete(slices.Clone(c.items), i, i+1)
	if err := c.save(next); err != nil {
		return Item{}, err
	}
	c.items = next
	return removed, nil
}

// SetPinned pins or unpins the item ref resolves to.
func (c *FileCatalog) SetPinned(ref string, pinned bool) (Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.resolve(ref)
	if err != nil {
		return Item{}, err
	}

	item := c.items[i]
	if item.Pinned == pinned {
		return item, nil
	}
	item.Pinned = pinned
	return item, c.replace(i, item)
}

// check runs the validator. Blank patterns are always rejected.
func (c *FileCatalog) check(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return errors.NewValidationError("pattern cannot be empty").WithField("pattern")
	}
	if c.validate != nil {
		return c.validate(pattern)
	}
	return nil
}

// replace swaps item i and saves. Callers hold c.mu.
func (c *FileCatalog) replace(i int, item Item) error {
	next := slices.Clone(c.items)
	next[i] = item
	if err := c.save(next); err != nil {
		return err
	}
	c.items = next
	return nil
}

func (c *FileCatalog) resolve(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, notFound(ref)
	}
	if i := c.indexOf(ref); i >= 0 {
		return i, nil
	}
	if i := c.indexOfName(ref); i >= 0 {
		return i, nil
	}
	if len(ref) < minPrefixLen {
		return -1, notFound(ref)
	}

	match := -1
	for i, it := range c.items {
		if strings.HasPrefix(it.ID, ref) {
			if match >= 0 {
				return -1, errors.NewValidationError("ambiguous saved pattern reference").WithField("ref").WithValue(ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, notFound(ref)
	}
	return match, nil
}

func (c *FileCatalog) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.ID == id })
}

func (c *FileCatalog) indexOfName(name string) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.Name != "" && it.Name == name })
}

func (c *FileCatalog) save(items []Item) error {
	data, err := yaml.Marshal(catalogFile{Version: 1, Items: items})
	if err != nil {
		return fmt.Errorf("failed to encode saved patterns: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return atomicWriteFile(c.path, data, 0644)
}

func notFound(ref string) error {
	return errors.Join(errors.ErrSavedItemNotFound, errors.NewNotFoundError("saved pattern", ref))
}

// atomicWriteFile writes through a temp file in the same directory.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

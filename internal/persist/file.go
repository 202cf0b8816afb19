package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileFormatVersion is written into every FileStore document.
const fileFormatVersion = 1

// fileData is the on-disk layout of a FileStore.
type fileData struct {
	Version   int                 `json:"version"`
	Documents map[string][]string `json:"documents"`
}

// FileStore keeps every record in one JSON file. Each change rewrites the
// whole file through a temp file and rename, so a crash leaves either the
// old or the new content.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore at path. The parent directory is created
// if it doesn't exist; the file itself is created on the first write.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (fs *FileStore) Path() string {
	return fs.path
}

// Get implements Store.
func (fs *FileStore) Get(ctx context.Context, id string) ([]string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.load()
	if err != nil {
		return nil, false, err
	}
	patterns, ok := data.Documents[id]
	return cloneRecord(patterns), ok, nil
}

// Set implements Store.
func (fs *FileStore) Set(ctx context.Context, id string, patterns []string) error {
	return fs.update(func(docs map[string][]string) bool {
		if len(patterns) == 0 {
			_, existed := docs[id]
			delete(docs, id)
			return existed
		}
		docs[id] = cloneRecord(patterns)
		return true
	})
}

// Remove implements Store.
func (fs *FileStore) Remove(ctx context.Context, id string) error {
	return fs.update(func(docs map[string][]string) bool {
		_, existed := docs[id]
		delete(docs, id)
		return existed
	})
}

// Rename implements Store.
func (fs *FileStore) Rename(ctx context.Context, oldID, newID string) error {
	return fs.update(func(docs map[string][]string) bool {
		patterns, ok := docs[oldID]
		if !ok || oldID == newID {
			return false
		}
		delete(docs, oldID)
		docs[newID] = patterns
		return true
	})
}

// Close implements Store.
func (fs *FileStore) Close() error { return nil }

// update loads the file, applies fn and writes the result back when fn
// reports a change.
func (fs *FileStore) update(fn func(docs map[string][]string) bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.load()
	if err != nil {
		return err
	}
	if !fn(data.Documents) {
		return nil
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode filter records: %w", err)
	}
	return atomicWriteFile(fs.path, encoded, 0644)
}

// load reads the file. A missing file is an empty store.
func (fs *FileStore) load() (*fileData, error) {
	data := &fileData{Version: fileFormatVersion, Documents: make(map[string][]string)}

	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fs.path, err)
	}
	if data.Documents == nil {
		data.Documents = make(map[string][]string)
	}
	data.Version = fileFormatVersion
	return data, nil
}

// atomicWriteFile writes data to a temp file in the same directory and
// renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileSystemBackend implements Store as a single JSON document on disk.
//
// Every operation re-reads the document, so writes made by another process
// are observed on the next call. Mutations rewrite the whole document via
// AtomicWriteFile; concurrent writers from different processes resolve as
// last writer wins unless the backend was opened with Lock.
type FileSystemBackend struct {
	path     string
	mu       sync.Mutex
	lockFile *os.File
	closed   bool
}

// FileSystemOptions configures NewFileSystemBackend.
type FileSystemOptions struct {
	// Path overrides the store file location. When empty the path is derived
	// from the store name via StoreFilePath.
	Path string

	// Lock takes an exclusive lock file next to the store for the lifetime
	// of the backend. A second locked backend on the same store fails.
	Lock bool
}

// NewFileSystemBackend creates a new file system store.
func NewFileSystemBackend(name string, opts FileSystemOptions) (*FileSystemBackend, error) {
	path, lockPath := opts.Path, opts.Path+".lock"
	if path == "" {
		if name == "" {
			return nil, fmt.Errorf("store name cannot be empty")
		}
		var err error
		if path, err = storeFilePath(name); err != nil {
			return nil, fmt.Errorf("failed to get store file path: %w", err)
		}
		if lockPath, err = storeLockFilePath(name); err != nil {
			return nil, fmt.Errorf("failed to get lock file path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	backend := &FileSystemBackend{path: path}

	if opts.Lock {
		lockFile, ok, err := AcquireLockHandle(lockPath)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire store lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("failed to acquire store lock: %w", ErrWouldBlock)
		}
		backend.lockFile = lockFile
	}

	return backend, nil
}

// Path returns the location of the store document.
func (b *FileSystemBackend) Path() string { return b.path }

// load reads the current document. A missing file is an empty store.
func (b *FileSystemBackend) load() (*Document, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{Entries: make(map[string]string)}, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal store: %w", err)
	}
	if doc.Version != "" && doc.Version != currentSchemaVersion {
		slog.Warn("store schema version mismatch", "path", b.path, "version", doc.Version, "expected", currentSchemaVersion)
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]string)
	}
	return &doc, nil
}

func (b *FileSystemBackend) save(doc *Document) error {
	doc.Version = currentSchemaVersion
	doc.UpdatedAt = time.Now()
	if doc.StoreID == "" {
		doc.StoreID = uuid.NewString()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	if err := AtomicWriteFile(b.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}

// update applies fn to the current document and persists the result.
func (b *FileSystemBackend) update(fn func(entries map[string]string) bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	doc, err := b.load()
	if err != nil {
		return err
	}
	if !fn(doc.Entries) {
		return nil
	}
	return b.save(doc)
}

// Get returns the value stored under key.
func (b *FileSystemBackend) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", false, ErrClosed
	}
	doc, err := b.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Entries[key]
	return v, ok, nil
}

// Set stores value under key.
func (b *FileSystemBackend) Set(key, value string) error {
	return b.update(func(entries map[string]string) bool {
		entries[key] = value
		return true
	})
}

// Remove deletes key. Removing a missing key does not touch the file.
func (b *FileSystemBackend) Remove(key string) error {
	return b.update(func(entries map[string]string) bool {
		if _, ok := entries[key]; !ok {
			return false
		}
		delete(entries, key)
		return true
	})
}

// Keys returns all keys in lexical order.
func (b *FileSystemBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	doc, err := b.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc.Entries))
	for k := range doc.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the store lock, if any.
func (b *FileSystemBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true

	if b.lockFile == nil {
		return nil
	}
	if err := releaseFileLock(b.lockFile); err != nil {
		return fmt.Errorf("failed to release store lock: %w", err)
	}
	b.lockFile = nil
	return nil
}

// Ensure FileSystemBackend implements Store at compile time
var _ Store = (*FileSystemBackend)(nil)

// Package workspace keeps the ordered set of named scripts on top of a
// storage.Store.
//
// The persisted layout is one index entry under IndexKey holding the names
// joined by IndexSeparator, in creation order, plus one entry per name
// holding that file's content.
package workspace

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joeycumines/jseditorx/internal/storage"
)

const (
	// IndexKey is the store key holding the comma-joined file names.
	IndexKey = "files"
	// IndexSeparator separates names in the index entry.
	IndexSeparator = ","
)

// File is a named script.
type File struct {
	Name    string
	Content string
}

// Workspace is the file index plus per-file content. It holds no state of
// its own; every call reads through to the store.
type Workspace struct {
	store  storage.Store
	logger *slog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New returns a Workspace backed by store.
func New(store storage.Store, opts ...Option) *Workspace {
	w := &Workspace{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ValidateName reports whether name may be used to create a file.
func ValidateName(name string) error {
	if name == "" || strings.Contains(name, IndexSeparator) || name == IndexKey {
		return ErrInvalidName
	}
	return nil
}

// List returns all file names in creation order. A missing or empty index
// yields an empty list.
func (w *Workspace) List() ([]string, error) {
	raw, ok, err := w.store.Get(IndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read file index: %w", err)
	}
	if !ok {
		return []string{}, nil
	}
	return parseIndex(raw), nil
}

func parseIndex(raw string) []string {
	names := []string{}
	for _, name := range strings.Split(raw, IndexSeparator) {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Exists reports whether name is in the index.
func (w *Workspace) Exists(name string) (bool, error) {
	names, err := w.List()
	if err != nil {
		return false, err
	}
	return indexOf(names, name) >= 0, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Create adds a new file. Validation happens before any mutation. The
// content entry is written before the index entry, so a failed index write
// leaves at worst an unindexed content entry.
func (w *Workspace) Create(name, content string) (File, error) {
	if err := ValidateName(name); err != nil {
		return File{}, &NameError{Op: "create", Name: name, Err: err}
	}

	names, err := w.List()
	if err != nil {
		return File{}, err
	}
	if indexOf(names, name) >= 0 {
		return File{}, &NameError{Op: "create", Name: name, Err: ErrDuplicateName}
	}

	if err := w.store.Set(name, content); err != nil {
		return File{}, fmt.Errorf("failed to write content of %q: %w", name, err)
	}
	names = append(names, name)
	if err := w.store.Set(IndexKey, strings.Join(names, IndexSeparator)); err != nil {
		return File{}, fmt.Errorf("failed to write file index: %w", err)
	}

	w.logger.Debug("workspace file created", "name", name, "bytes", len(content))
	return File{Name: name, Content: content}, nil
}

// Save overwrites the content of name. The name is not validated and the
// index is not touched.
func (w *Workspace) Save(name, content string) error {
	if err := w.store.Set(name, content); err != nil {
		return fmt.Errorf("failed to write content of %q: %w", name, err)
	}
	w.logger.Debug("workspace file saved", "name", name, "bytes", len(content))
	return nil
}

// Delete removes name from the index and drops its content. Deleting a name
// that does not exist succeeds.
func (w *Workspace) Delete(name string) error {
	names, err := w.List()
	if err != nil {
		return err
	}
	if i := indexOf(names, name); i >= 0 {
		names = append(names[:i], names[i+1:]...)
		if err := w.store.Set(IndexKey, strings.Join(names, IndexSeparator)); err != nil {
			return fmt.Errorf("failed to write file index: %w", err)
		}
	}
	if name != IndexKey {
		if err := w.store.Remove(name); err != nil {
			return fmt.Errorf("failed to remove content of %q: %w", name, err)
		}
	}
	w.logger.Debug("workspace file deleted", "name", name)
	return nil
}

// Load returns the content of name.
func (w *Workspace) Load(name string) (string, error) {
	if name == IndexKey {
		return "", &NameError{Op: "load", Name: name, Err: ErrNotFound}
	}
	content, ok, err := w.store.Get(name)
	if err != nil {
		return "", fmt.Errorf("failed to read content of %q: %w", name, err)
	}
	if !ok {
		return "", &NameError{Op: "load", Name: name, Err: ErrNotFound}
	}
	return content, nil
}

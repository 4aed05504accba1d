package storage

import (
	"fmt"
	"sort"
)

// DefaultStoreName is the store used when no name is configured.
const DefaultStoreName = "default"

// Options are passed to every BackendFactory. Backends ignore fields that do
// not apply to them.
type Options struct {
	Path string
	Lock bool
}

// BackendFactory is a function that creates a new Store instance.
type BackendFactory func(name string, opts Options) (Store, error)

// BackendRegistry maps backend names to their factory functions.
var BackendRegistry = make(map[string]BackendFactory)

func init() {
	// Register the file system backend as the default
	BackendRegistry["fs"] = func(name string, opts Options) (Store, error) {
		return NewFileSystemBackend(name, FileSystemOptions{Path: opts.Path, Lock: opts.Lock})
	}

	// Register an in-memory backend for testing and throwaway sessions
	BackendRegistry["memory"] = func(name string, opts Options) (Store, error) {
		return NewInMemoryBackend(name)
	}
}

// GetBackend retrieves a backend by name and creates an instance.
func GetBackend(backend, name string, opts Options) (Store, error) {
	factory, ok := BackendRegistry[backend]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
	if name == "" {
		name = DefaultStoreName
	}
	return factory(name, opts)
}

// BackendNames lists the registered backends in sorted order.
func BackendNames() []string {
	names := make([]string, 0, len(BackendRegistry))
	for k := range BackendRegistry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

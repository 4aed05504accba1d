package storage

import (
	"fmt"
	"sort"
	"sync"
)

// InMemoryBackend implements Store using process memory. Instances created
// with the same name share their entries, which mirrors how two fs stores
// opened on the same file observe each other's writes.
type InMemoryBackend struct {
	name   string
	mu     sync.RWMutex
	closed bool
}

// Global in-memory storage shared across all instances, keyed by store name.
var globalInMemoryStore = struct {
	sync.RWMutex
	stores map[string]map[string]string
}{
	stores: make(map[string]map[string]string),
}

// NewInMemoryBackend creates a new in-memory store.
func NewInMemoryBackend(name string) (*InMemoryBackend, error) {
	if name == "" {
		return nil, fmt.Errorf("store name cannot be empty")
	}

	globalInMemoryStore.Lock()
	if _, ok := globalInMemoryStore.stores[name]; !ok {
		globalInMemoryStore.stores[name] = make(map[string]string)
	}
	globalInMemoryStore.Unlock()

	return &InMemoryBackend{name: name}, nil
}

func (b *InMemoryBackend) check() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// Get returns the value stored under key.
func (b *InMemoryBackend) Get(key string) (string, bool, error) {
	if err := b.check(); err != nil {
		return "", false, err
	}
	globalInMemoryStore.RLock()
	defer globalInMemoryStore.RUnlock()
	v, ok := globalInMemoryStore.stores[b.name][key]
	return v, ok, nil
}

// Set stores value under key.
func (b *InMemoryBackend) Set(key, value string) error {
	if err := b.check(); err != nil {
		return err
	}
	globalInMemoryStore.Lock()
	defer globalInMemoryStore.Unlock()
	entries, ok := globalInMemoryStore.stores[b.name]
	if !ok {
		// cleared by ClearAllInMemoryStores while this instance was open
		entries = make(map[string]string)
		globalInMemoryStore.stores[b.name] = entries
	}
	entries[key] = value
	return nil
}

// Remove deletes key.
func (b *InMemoryBackend) Remove(key string) error {
	if err := b.check(); err != nil {
		return err
	}
	globalInMemoryStore.Lock()
	defer globalInMemoryStore.Unlock()
	delete(globalInMemoryStore.stores[b.name], key)
	return nil
}

// Keys returns all keys in lexical order.
func (b *InMemoryBackend) Keys() ([]string, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	globalInMemoryStore.RLock()
	defer globalInMemoryStore.RUnlock()
	entries := globalInMemoryStore.stores[b.name]
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the instance closed (the shared entries are kept).
func (b *InMemoryBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

// ClearAllInMemoryStores clears all entries from the in-memory store (for testing).
func ClearAllInMemoryStores() {
	globalInMemoryStore.Lock()
	globalInMemoryStore.stores = make(map[string]map[string]string)
	globalInMemoryStore.Unlock()
}

// Ensure InMemoryBackend implements Store at compile time
var _ Store = (*InMemoryBackend)(nil)

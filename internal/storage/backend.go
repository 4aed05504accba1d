package storage

import "errors"

// ErrClosed is returned by operations on a Store after Close.
var ErrClosed = errors.New("storage: store is closed")

// Store is the durable mapping from string key to string value that the
// workspace persists into. Implementations must be safe for concurrent use
// within a process; across processes the last writer wins.
type Store interface {
	// Get returns the value stored under key. It MUST return ("", false, nil)
	// if the key does not exist.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any existing value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Keys returns all keys in lexical order.
	Keys() ([]string, error)

	// Close performs any necessary cleanup of backend resources, such as releasing file locks.
	Close() error
}

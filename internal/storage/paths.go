package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// To enable testing without polluting the user's config directory,
// these functions are defined as variables. The test suite can then
// override them to point to a temporary directory.
var (
	storeDirectory    = StoreDirectory
	storeFilePath     = StoreFilePath
	storeLockFilePath = StoreLockFilePath
)

// SetTestPaths overrides the path functions for testing.
// This should only be used in tests.
func SetTestPaths(dir string) {
	storeDirectory = func() (string, error) { return dir, nil }
	storeFilePath = func(name string) (string, error) {
		return filepath.Join(dir, name+".store.json"), nil
	}
	storeLockFilePath = func(name string) (string, error) {
		return filepath.Join(dir, name+".store.lock"), nil
	}
}

// ResetPaths resets the path functions to their defaults.
// This should only be used in tests.
func ResetPaths() {
	storeDirectory = StoreDirectory
	storeFilePath = StoreFilePath
	storeLockFilePath = StoreLockFilePath
}

// StoreDirectory returns the directory where store files are kept.
// Uses os.UserConfigDir() to resolve to {UserConfigDir}/jseditorx/stores/
func StoreDirectory() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "jseditorx", "stores"), nil
}

// StoreFilePath returns the absolute path to a store file.
// File naming: {name}.store.json
func StoreFilePath(name string) (string, error) {
	dir, err := storeDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".store.json"), nil
}

// StoreLockFilePath returns the absolute path to a store lock file.
// File naming: {name}.store.lock
func StoreLockFilePath(name string) (string, error) {
	dir, err := storeDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".store.lock"), nil
}

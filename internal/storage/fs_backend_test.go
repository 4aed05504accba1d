package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTest overrides the paths to use a temporary directory for the duration of a test.
// This is critical to avoid polluting the user's actual config directory.
func setupTest(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "jseditorx", "stores")
	SetTestPaths(dir)
	t.Cleanup(ResetPaths)
	return dir
}

func TestNewFileSystemBackend(t *testing.T) {
	dir := setupTest(t)

	t.Run("creates directory without writing", func(t *testing.T) {
		backend, err := NewFileSystemBackend("fresh", FileSystemOptions{})
		require.NoError(t, err)
		defer backend.Close()

		require.Equal(t, filepath.Join(dir, "fresh.store.json"), backend.Path())
		_, err = os.Stat(dir)
		require.NoError(t, err)
		_, err = os.Stat(backend.Path())
		require.True(t, os.IsNotExist(err), "store file should be created lazily")
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewFileSystemBackend("", FileSystemOptions{})
		require.Error(t, err)
	})

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "custom.json")
		backend, err := NewFileSystemBackend("", FileSystemOptions{Path: path})
		require.NoError(t, err)
		defer backend.Close()
		require.Equal(t, path, backend.Path())
	})
}

func TestFileSystemBackend_Lock(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("lock semantics are covered on unix")
	}
	setupTest(t)

	backend1, err := NewFileSystemBackend("locked", FileSystemOptions{Lock: true})
	require.NoError(t, err)

	lockPath, err := storeLockFilePath("locked")
	require.NoError(t, err)
	_, err = os.Stat(lockPath)
	require.NoError(t, err, "lock file was not created")

	_, err = NewFileSystemBackend("locked", FileSystemOptions{Lock: true})
	require.ErrorIs(t, err, ErrWouldBlock)

	// unlocked backends are unaffected
	unlocked, err := NewFileSystemBackend("locked", FileSystemOptions{})
	require.NoError(t, err)
	require.NoError(t, unlocked.Close())

	require.NoError(t, backend1.Close())
	_, err = os.Stat(lockPath)
	require.True(t, os.IsNotExist(err), "lock file should be removed on close")

	backend2, err := NewFileSystemBackend("locked", FileSystemOptions{Lock: true})
	require.NoError(t, err)
	require.NoError(t, backend2.Close())
}

func TestFileSystemBackend_RoundTrip(t *testing.T) {
	setupTest(t)

	backend, err := NewFileSystemBackend("roundtrip", FileSystemOptions{})
	require.NoError(t, err)
	defer backend.Close()

	v, ok, err := backend.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)

	require.NoError(t, backend.Set("files", "a,b"))
	require.NoError(t, backend.Set("a", "console.log(1)"))
	require.NoError(t, backend.Set("b", ""))

	v, ok, err = backend.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "console.log(1)", v)

	v, ok, err = backend.Get("b")
	require.NoError(t, err)
	require.True(t, ok, "empty values are still present")
	require.Empty(t, v)

	keys, err := backend.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "files"}, keys)

	require.NoError(t, backend.Remove("a"))
	require.NoError(t, backend.Remove("a"))
	_, ok, err = backend.Get("a")
	require.NoError(t, err)
	require.False(t, ok)

	// the document on disk is readable by a second instance
	other, err := NewFileSystemBackend("roundtrip", FileSystemOptions{})
	require.NoError(t, err)
	defer other.Close()
	v, ok, err = other.Get("files")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a,b", v)
}

func TestFileSystemBackend_Document(t *testing.T) {
	setupTest(t)

	backend, err := NewFileSystemBackend("doc", FileSystemOptions{})
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Set("k", "v"))

	data, err := os.ReadFile(backend.Path())
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, currentSchemaVersion, doc.Version)
	require.NotEmpty(t, doc.StoreID)
	require.False(t, doc.UpdatedAt.IsZero())
	require.Equal(t, map[string]string{"k": "v"}, doc.Entries)

	id := doc.StoreID
	require.NoError(t, backend.Set("k2", "v2"))
	data, err = os.ReadFile(backend.Path())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, id, doc.StoreID, "store id is stable across writes")
}

func TestFileSystemBackend_ErrorScenarios(t *testing.T) {
	setupTest(t)

	t.Run("corrupted file", func(t *testing.T) {
		backend, err := NewFileSystemBackend("corrupt", FileSystemOptions{})
		require.NoError(t, err)
		defer backend.Close()

		require.NoError(t, os.WriteFile(backend.Path(), []byte("{not json"), 0644))

		_, _, err = backend.Get("x")
		require.Error(t, err)
		require.Error(t, backend.Set("x", "y"))
		_, err = backend.Keys()
		require.Error(t, err)
	})

	t.Run("null entries", func(t *testing.T) {
		backend, err := NewFileSystemBackend("null-entries", FileSystemOptions{})
		require.NoError(t, err)
		defer backend.Close()

		require.NoError(t, os.WriteFile(backend.Path(), []byte(`{"version":"1.0.0","entries":null}`), 0644))
		require.NoError(t, backend.Set("x", "y"))
		v, ok, err := backend.Get("x")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "y", v)
	})

	t.Run("closed", func(t *testing.T) {
		backend, err := NewFileSystemBackend("closed", FileSystemOptions{})
		require.NoError(t, err)
		require.NoError(t, backend.Close())
		require.NoError(t, backend.Close(), "double close is safe")

		_, _, err = backend.Get("x")
		require.ErrorIs(t, err, ErrClosed)
		require.ErrorIs(t, backend.Set("x", "y"), ErrClosed)
		require.ErrorIs(t, backend.Remove("x"), ErrClosed)
		_, err = backend.Keys()
		require.ErrorIs(t, err, ErrClosed)
	})
}

func TestFileSystemBackend_LastWriterWins(t *testing.T) {
	setupTest(t)

	a, err := NewFileSystemBackend("shared", FileSystemOptions{})
	require.NoError(t, err)
	defer a.Close()
	b, err := NewFileSystemBackend("shared", FileSystemOptions{})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set("x", "from a"))
	require.NoError(t, b.Set("x", "from b"))
	require.NoError(t, a.Set("y", "only a"))

	v, _, err := a.Get("x")
	require.NoError(t, err)
	require.Equal(t, "from b", v)

	keys, err := b.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, keys)
}

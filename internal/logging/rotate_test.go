package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRotatingFileWriter_BasicWrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "jsx.log")

	w, err := NewRotatingFileWriter(path, 0, -1)
	require.NoError(t, err)
	defer w.Close()
	require.Equal(t, int64(1024*1024), w.maxSizeBytes)
	require.Equal(t, 0, w.maxFiles)

	n, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.Equal(t, 6, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestRotatingFileWriter_AppendsToExisting(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "jsx.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	w, err := newRotatingFileWriter(path, 1024, 1)
	require.NoError(t, err)
	require.Equal(t, int64(4), w.currentSize)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old\nnew\n", string(data))
}

func TestRotatingFileWriter_Rotates(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "jsx.log")

	w, err := newRotatingFileWriter(path, 10, 2)
	require.NoError(t, err)
	defer w.Close()

	for _, line := range []string{"aaaaaaaa\n", "bbbbbbbb\n", "cccccccc\n", "dddddddd\n"} {
		_, err := w.Write([]byte(line))
		require.NoError(t, err)
	}

	read := func(p string) string {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		return string(data)
	}
	require.Equal(t, "dddddddd\n", read(path))
	require.Equal(t, "cccccccc\n", read(path+".1"))
	require.Equal(t, "bbbbbbbb\n", read(path+".2"))
	_, err = os.Stat(path + ".3")
	require.True(t, os.IsNotExist(err), "backups beyond maxFiles are deleted")
}

func TestRotatingFileWriter_NoBackups(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "jsx.log")

	w, err := newRotatingFileWriter(path, 5, 0)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second\n", string(data))
}

func TestRotatingFileWriter_IgnoresUnrelatedFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "jsx.log")
	for _, name := range []string{"jsx.log.old", "jsx.log.0", "other.log.1"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	w, err := newRotatingFileWriter(path, 4, 1)
	require.NoError(t, err)
	defer w.Close()
	require.Empty(t, w.listBackups())

	_, err = w.Write([]byte("1234"))
	require.NoError(t, err)
	_, err = w.Write([]byte("5678"))
	require.NoError(t, err)
	require.Equal(t, []int{1}, w.listBackups())

	for _, name := range []string{"jsx.log.old", "jsx.log.0", "other.log.1"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}
}

func TestRotatingFileWriter_Close(t *testing.T) {
	t.Parallel()
	w, err := NewRotatingFileWriter(filepath.Join(t.TempDir(), "jsx.log"), 1, 1)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, err = w.Write([]byte("x"))
	require.ErrorIs(t, err, os.ErrClosed)
}

func TestRotatingFileWriter_Concurrent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "jsx.log")
	w, err := newRotatingFileWriter(path, 1<<20, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = w.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 400, strings.Count(string(data), "line\n"))
}

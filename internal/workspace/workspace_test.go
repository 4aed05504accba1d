package workspace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/joeycumines/jseditorx/internal/storage"
	"github.com/stretchr/testify/require"
)

// newTestStore returns an empty in-memory store private to the test.
func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewInMemoryBackend("workspace/" + t.Name())
	require.NoError(t, err)
	keys, err := store.Keys()
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, store.Remove(k))
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newTestWorkspace returns a workspace over a fresh in-memory store.
func newTestWorkspace(t *testing.T) (*Workspace, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	return New(store), store
}

// failingStore fails Set for one key.
type failingStore struct {
	storage.Store
	failKey string
}

func (s *failingStore) Set(key, value string) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	return s.Store.Set(key, value)
}

func TestList_EmptyWorkspace(t *testing.T) {
	ws, store := newTestWorkspace(t)

	names, err := ws.List()
	require.NoError(t, err)
	require.Empty(t, names)

	keys, err := store.Keys()
	require.NoError(t, err)
	require.Empty(t, keys, "listing must not create the index")
}

func TestList_IgnoresEmptySegments(t *testing.T) {
	ws, store := newTestWorkspace(t)
	require.NoError(t, store.Set(IndexKey, ",a,,b,"))

	names, err := ws.List()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, store.Set(IndexKey, ""))
	names, err = ws.List()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestCreate_PreservesOrder(t *testing.T) {
	ws, store := newTestWorkspace(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		f, err := ws.Create(name, "// "+name)
		require.NoError(t, err)
		require.Equal(t, File{Name: name, Content: "// " + name}, f)
	}

	names, err := ws.List()
	require.NoError(t, err)
	require.Equal(t, []string{"zeta", "alpha", "mid"}, names)

	raw, ok, err := store.Get(IndexKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "zeta,alpha,mid", raw)

	for _, name := range names {
		content, err := ws.Load(name)
		require.NoError(t, err)
		require.Equal(t, "// "+name, content)
	}
}

func TestCreate_InvalidName(t *testing.T) {
	for _, tc := range []struct {
		name    string
		message string
	}{
		{"", "File name cannot be empty!"},
		{"a,b", "Special characters are not allowed!"},
		{",", "Special characters are not allowed!"},
		{IndexKey, "Special characters are not allowed!"},
	} {
		t.Run(fmt.Sprintf("%q", tc.name), func(t *testing.T) {
			ws, store := newTestWorkspace(t)
			_, err := ws.Create("keep", "")
			require.NoError(t, err)

			_, err = ws.Create(tc.name, "content")
			require.ErrorIs(t, err, ErrInvalidName)
			var ne *NameError
			require.ErrorAs(t, err, &ne)
			require.Equal(t, "create", ne.Op)
			require.Equal(t, tc.name, ne.Name)
			require.Equal(t, tc.message, UserMessage(err))

			names, err := ws.List()
			require.NoError(t, err)
			require.Equal(t, []string{"keep"}, names)
			keys, err := store.Keys()
			require.NoError(t, err)
			require.Equal(t, []string{"files", "keep"}, keys)
		})
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	ws, _ := newTestWorkspace(t)

	_, err := ws.Create("main", "first")
	require.NoError(t, err)

	_, err = ws.Create("main", "second")
	require.ErrorIs(t, err, ErrDuplicateName)
	require.Equal(t, "This file name is already in use!", UserMessage(err))

	content, err := ws.Load("main")
	require.NoError(t, err)
	require.Equal(t, "first", content, "a rejected create must not overwrite content")

	names, err := ws.List()
	require.NoError(t, err)
	require.Equal(t, []string{"main"}, names)
}

func TestCreate_IndexWriteFailure(t *testing.T) {
	mem := newTestStore(t)
	ws := New(&failingStore{Store: mem, failKey: IndexKey})

	_, err := ws.Create("orphan", "x")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidName)

	names, err := ws.List()
	require.NoError(t, err)
	require.Empty(t, names, "the index never points at missing content")
}

func TestCreate_ContentWriteFailure(t *testing.T) {
	mem := newTestStore(t)
	ws := New(&failingStore{Store: mem, failKey: "broken"})

	_, err := ws.Create("broken", "x")
	require.Error(t, err)

	_, ok, err := mem.Get(IndexKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ws, _ := newTestWorkspace(t)

	_, err := ws.Create("a", "")
	require.NoError(t, err)

	for _, content := range []string{"", "x", "multi\nline\n", "unicode ✓ 日本", "a,b,c"} {
		require.NoError(t, ws.Save("a", content))
		got, err := ws.Load("a")
		require.NoError(t, err)
		require.Equal(t, content, got)
	}

	// Save does not validate or index
	require.NoError(t, ws.Save("unindexed", "y"))
	names, err := ws.List()
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, names)
}

func TestLoad_NotFound(t *testing.T) {
	ws, _ := newTestWorkspace(t)

	_, err := ws.Load("ghost")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, "File not found: ghost", UserMessage(err))

	_, err = ws.Create("real", "")
	require.NoError(t, err)
	_, err = ws.Load(IndexKey)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ws, store := newTestWorkspace(t)

	for _, name := range []string{"a", "b", "c"} {
		_, err := ws.Create(name, name)
		require.NoError(t, err)
	}

	require.NoError(t, ws.Delete("b"))

	names, err := ws.List()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, names)

	_, err = ws.Load("b")
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := ws.Exists("b")
	require.NoError(t, err)
	require.False(t, exists)

	// idempotent
	require.NoError(t, ws.Delete("b"))
	require.NoError(t, ws.Delete("never"))

	keys, err := store.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c", "files"}, keys)

	// deleting the last file leaves an empty index
	require.NoError(t, ws.Delete("a"))
	require.NoError(t, ws.Delete("c"))
	names, err = ws.List()
	require.NoError(t, err)
	require.Empty(t, names)

	// a name can be reused after deletion
	_, err = ws.Create("a", "again")
	require.NoError(t, err)
}

func TestDelete_ReservedKeyKeepsIndex(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	_, err := ws.Create("a", "")
	require.NoError(t, err)

	require.NoError(t, ws.Delete(IndexKey))

	names, err := ws.List()
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, names)
}

func TestUserMessage(t *testing.T) {
	require.Empty(t, UserMessage(nil))
	require.Equal(t, "boom", UserMessage(errors.New("boom")))
	wrapped := fmt.Errorf("saving: %w", &NameError{Op: "create", Name: "x", Err: ErrDuplicateName})
	require.Equal(t, "This file name is already in use!", UserMessage(wrapped))
	require.Equal(t, `workspace create "x": duplicate file name`, (&NameError{Op: "create", Name: "x", Err: ErrDuplicateName}).Error())
}

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("ok name.js"))
	require.NoError(t, ValidateName("files2"))
	require.ErrorIs(t, ValidateName(""), ErrInvalidName)
	require.ErrorIs(t, ValidateName("x,y"), ErrInvalidName)
	require.ErrorIs(t, ValidateName("files"), ErrInvalidName)
}

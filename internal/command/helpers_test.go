package command

import (
	"bytes"
	"flag"
	"io"
	"testing"

	"github.com/joeycumines/jseditorx/internal/storage"
	"github.com/joeycumines/jseditorx/internal/workspace"
	"github.com/stretchr/testify/require"
)

// execute parses args with cmd's flags and runs it.
func execute(t *testing.T, cmd Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	var out, errOut bytes.Buffer
	err = cmd.Execute(fs.Args(), &out, &errOut)
	return out.String(), errOut.String(), err
}

// memoryStore returns the name of an empty in-memory store private to the
// test, and a workspace over it.
func memoryStore(t *testing.T) (string, *workspace.Workspace) {
	t.Helper()
	name := "command/" + t.Name()
	store, err := storage.NewInMemoryBackend(name)
	require.NoError(t, err)
	keys, err := store.Keys()
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, store.Remove(k))
	}
	t.Cleanup(func() { _ = store.Close() })
	return name, workspace.New(store)
}

//go:build unix

package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEditText_RoundTrip(t *testing.T) {
	t.Parallel()
	var seen string
	editor := []string{"sh", "-c", `cat "$0" > "$0.seen"; printf 'edited' > "$0"`}
	var out bytes.Buffer

	text, err := editText(context.Background(), editor, "my file", "original", nil, &out, &out)
	require.NoError(t, err)
	require.Equal(t, "edited", text)

	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "jsx-my_file-*.js.seen"))
	require.NoError(t, err)
	for _, m := range matches {
		data, err := os.ReadFile(m)
		require.NoError(t, err)
		seen = string(data)
		_ = os.Remove(m)
	}
	require.Equal(t, "original", seen)

	leftovers, err := filepath.Glob(filepath.Join(os.TempDir(), "jsx-my_file-*.js"))
	require.NoError(t, err)
	require.Empty(t, leftovers, "temp file is removed")
}

func TestEditText_EditorFailure(t *testing.T) {
	t.Parallel()
	_, err := editText(context.Background(), []string{"sh", "-c", "exit 3"}, "", "x", nil, nil, nil)
	require.ErrorContains(t, err, "editor sh failed")
}

func TestServe_EditUsesConfiguredEditor(t *testing.T) {
	h := newHarness(t, ":clear\n:edit\n", WithEditor(`sh -c "printf 'from editor' > \"\$0\""`))
	h.serve(t)
	require.Equal(t, "from editor", h.shell.Session().Buffer())
	require.True(t, h.shell.Session().Dirty())
}

func TestResolveEditor(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "ed -s")
	require.Equal(t, []string{"code", "--wait"}, resolveEditor("code --wait"))
	require.Equal(t, []string{"ed", "-s"}, resolveEditor(""))
}

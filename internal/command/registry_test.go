package command

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type testCommand struct {
	*BaseCommand
}

func (c *testCommand) Execute(args []string, stdout, stderr io.Writer) error {
	return nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	registry.Register(&testCommand{NewBaseCommand("zeta", "last", "zeta")})
	registry.Register(&testCommand{NewBaseCommand("alpha", "first", "alpha [x]")})

	cmd, err := registry.Get("alpha")
	require.NoError(t, err)
	require.Equal(t, "alpha", cmd.Name())
	require.Equal(t, "first", cmd.Description())
	require.Equal(t, "alpha [x]", cmd.Usage())

	_, err = registry.Get("nonexistent")
	require.EqualError(t, err, "command not found: nonexistent")

	require.Equal(t, []string{"alpha", "zeta"}, registry.List())
	require.True(t, registry.Has("zeta"))
	require.False(t, registry.Has("beta"))

	registry.Register(&testCommand{NewBaseCommand("alpha", "replaced", "alpha")})
	cmd, _ = registry.Get("alpha")
	require.Equal(t, "replaced", cmd.Description())
}

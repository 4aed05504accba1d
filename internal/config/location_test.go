package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetConfigPathEnvOverride(t *testing.T) {
	t.Setenv(ConfigEnvVar, "/tmp/custom-config")

	got, err := GetConfigPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom-config", got)
}

func TestGetConfigPathDefault(t *testing.T) {
	dir := t.TempDir()
	homeVar := "HOME"
	if runtime.GOOS == "windows" {
		homeVar = "USERPROFILE"
	}
	t.Setenv(homeVar, dir)
	t.Setenv(ConfigEnvVar, "")

	got, err := GetConfigPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".jseditorx", "config"), got)
}

func TestEnsureConfigDirCreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config")
	t.Setenv(ConfigEnvVar, configPath)

	require.NoError(t, EnsureConfigDir())
	info, err := os.Stat(filepath.Dir(configPath))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestEnsureConfigDirFailsWhenParentIsFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("error semantics differ on Windows")
	}
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, nil, 0644))
	t.Setenv(ConfigEnvVar, filepath.Join(parent, "sub", "config"))

	require.Error(t, EnsureConfigDir())
}

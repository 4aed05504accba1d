package command

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/joeycumines/jseditorx/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestResolveLogConfig_Defaults(t *testing.T) {
	t.Setenv("JSX_LOG_LEVEL", "")
	os.Unsetenv("JSX_LOG_LEVEL")
	t.Setenv("JSX_LOG_FILE", "")
	os.Unsetenv("JSX_LOG_FILE")

	lc, err := resolveLogConfig("", "", 0, config.NewConfig())
	require.NoError(t, err)
	require.Equal(t, logging.Config{
		Level:      slog.LevelInfo,
		BufferSize: 1000,
		MaxSizeMB:  10,
		MaxFiles:   5,
	}, lc)
}

func TestResolveLogConfig_FlagOverridesConfig(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.level", "warn")
	cfg.SetGlobalOption("log.file", "/should/not/use/this")
	cfg.SetGlobalOption("log.buffer-size", "10")

	lc, err := resolveLogConfig("/tmp/flag.log", "debug", 500, cfg)
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lc.Level)
	require.Equal(t, "/tmp/flag.log", lc.File)
	require.Equal(t, 500, lc.BufferSize)
}

func TestResolveLogConfig_ConfigFallback(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.file", "/tmp/config.log")
	cfg.SetGlobalOption("log.level", "warn")
	cfg.SetGlobalOption("log.buffer-size", "2000")
	cfg.SetGlobalOption("log.max-size-mb", "5")
	cfg.SetGlobalOption("log.max-files", "0")

	lc, err := resolveLogConfig("", "", 0, cfg)
	require.NoError(t, err)
	require.Equal(t, logging.Config{
		Level:      slog.LevelWarn,
		File:       "/tmp/config.log",
		BufferSize: 2000,
		MaxSizeMB:  5,
		MaxFiles:   0,
	}, lc)
}

func TestResolveLogConfig_UnparseableMaxFiles(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.max-files", "lots")

	lc, err := resolveLogConfig("", "info", 0, cfg)
	require.NoError(t, err)
	require.Equal(t, -1, lc.MaxFiles)
}

func TestResolveLogConfig_InvalidLevel(t *testing.T) {
	t.Parallel()
	_, err := resolveLogConfig("", "invalid", 1000, config.NewConfig())
	require.ErrorContains(t, err, "invalid log level")
}

func TestResolveLogConfig_NilConfig(t *testing.T) {
	t.Parallel()
	lc, err := resolveLogConfig("", "error", 0, nil)
	require.NoError(t, err)
	require.Equal(t, slog.LevelError, lc.Level)
}

func TestLogFlagsSetupWritesFile(t *testing.T) {
	t.Parallel()
	logPath := filepath.Join(t.TempDir(), "jsx.log")
	f := logFlags{file: logPath, level: "debug"}

	logger, err := f.setup(config.NewConfig())
	require.NoError(t, err)
	logger.Debug("hello", "k", "v")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
	require.Len(t, logger.Ring.Entries(), 1)
}

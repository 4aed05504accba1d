package command

import (
	"flag"
	"strconv"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/joeycumines/jseditorx/internal/logging"
)

// logFlags are the logging flags shared by commands that run scripts.
type logFlags struct {
	file       string
	level      string
	bufferSize int
}

func (f *logFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.file, "log-file", "", "Write JSON logs to this file (default: log.file)")
	fs.StringVar(&f.level, "log-level", "", "Log level: debug, info, warn, error (default: log.level)")
	fs.IntVar(&f.bufferSize, "log-buffer", 0, "Number of log entries kept in memory (default: log.buffer-size)")
}

// setup builds the command's logger. The caller must Close it.
func (f *logFlags) setup(cfg *config.Config) (*logging.Logger, error) {
	lc, err := resolveLogConfig(f.file, f.level, f.bufferSize, cfg)
	if err != nil {
		return nil, err
	}
	return logging.Setup(lc)
}

// resolveLogConfig resolves log configuration from flags and config defaults.
// Flag values take precedence; config values (including their environment
// overrides) are used when flags have their zero value.
func resolveLogConfig(flagPath, flagLevel string, flagBufferSize int, cfg *config.Config) (logging.Config, error) {
	schema := config.DefaultSchema()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	var lc logging.Config

	// Resolve log level: flag → config → info.
	levelStr := flagLevel
	if levelStr == "" {
		levelStr = schema.Resolve(cfg, "log.level")
	}
	level, err := logging.ParseLevel(levelStr)
	if err != nil {
		return lc, err
	}
	lc.Level = level

	// Resolve buffer size: flag → config → default.
	lc.BufferSize = flagBufferSize
	if lc.BufferSize <= 0 {
		lc.BufferSize = schema.ResolveInt(cfg, "log.buffer-size")
	}

	// Resolve log path: flag → config → "".
	lc.File = flagPath
	if lc.File == "" {
		lc.File = schema.Resolve(cfg, "log.file")
	}

	lc.MaxSizeMB = schema.ResolveInt(cfg, "log.max-size-mb")
	// Zero keeps no backups; unparseable values select the default.
	lc.MaxFiles = -1
	if n, err := strconv.Atoi(schema.Resolve(cfg, "log.max-files")); err == nil {
		lc.MaxFiles = n
	}

	return lc, nil
}

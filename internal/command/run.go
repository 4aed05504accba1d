package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/joeycumines/jseditorx/internal/shell"
	"github.com/joeycumines/jseditorx/internal/workspace"
)

// ErrScriptFailed is returned by run when the script throws or there is no
// code to run. The result has already been reported.
var ErrScriptFailed = errors.New("script failed")

// RunCommand evaluates a script once and prints the result.
type RunCommand struct {
	*BaseCommand
	config *config.Config
	stdin  io.Reader

	code    string
	file    string
	timeout time.Duration
	quiet   bool
	store   storeFlags
	log     logFlags
}

// NewRunCommand creates the run command.
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Run JavaScript from an argument, a file or the workspace",
			"run [options] [NAME]",
		),
		config: cfg,
		stdin:  os.Stdin,
	}
}

// SetupFlags configures the flags for the run command.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.code, "e", "", "Code to run")
	fs.StringVar(&c.file, "file", "", "Run the contents of this file (\"-\" for stdin)")
	fs.DurationVar(&c.timeout, "timeout", 0, "Interrupt the script after this long (default: [run] timeout, then sandbox.timeout)")
	fs.BoolVar(&c.quiet, "quiet", false, "Print only script output; errors go to stderr")
	c.store.register(fs)
	c.log.register(fs)
}

// Execute runs the script.
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	logger, err := c.log.setup(c.config)
	if err != nil {
		return err
	}
	defer logger.Close()

	code, source, err := c.source(args, logger.Logger)
	if err != nil {
		return err
	}

	schema := config.DefaultSchema()
	timeout := c.timeout
	if timeout <= 0 {
		timeout = schema.ResolveSectionDuration(c.config, "run", "timeout")
	}
	quiet := c.quiet || schema.ResolveSectionBool(c.config, "run", "quiet")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := newSandbox(c.config, timeout, logger.Logger).Run(ctx, code)
	logger.Info("run finished", "source", source, "run_id", res.RunID, "elapsed", res.Elapsed, "ok", res.OK())

	if quiet {
		for _, line := range res.Output {
			_, _ = fmt.Fprintln(stdout, line)
		}
		switch {
		case res.Empty:
			_, _ = fmt.Fprintln(stderr, shell.EmptyMessage)
		case res.Err != nil:
			_, _ = fmt.Fprintln(stderr, res.Err.Error())
		}
	} else {
		shell.RenderResult(stdout, stylesFor(stdout, c.config), res)
	}

	if !res.OK() {
		return ErrScriptFailed
	}
	return nil
}

// source returns the code selected by -e, -file or NAME, and a label for it.
func (c *RunCommand) source(args []string, logger *slog.Logger) (code, label string, err error) {
	selected := 0
	for _, set := range []bool{c.code != "", c.file != "", len(args) > 0} {
		if set {
			selected++
		}
	}
	if selected != 1 || len(args) > 1 {
		return "", "", fmt.Errorf("exactly one of -e CODE, -file PATH or NAME is required")
	}

	switch {
	case c.code != "":
		return c.code, "-e", nil
	case c.file == "-":
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "stdin", nil
	case c.file != "":
		data, err := os.ReadFile(c.file)
		if err != nil {
			return "", "", fmt.Errorf("failed to read script: %w", err)
		}
		return string(data), c.file, nil
	}

	ws, store, err := c.store.openWorkspace(c.config, logger)
	if err != nil {
		return "", "", err
	}
	defer store.Close()
	content, err := ws.Load(args[0])
	if err != nil {
		return "", "", errors.New(workspace.UserMessage(err))
	}
	logger.Debug("loaded script from workspace", "file", args[0])
	return content, args[0], nil
}

package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/joeycumines/jseditorx/internal/session"
	"github.com/joeycumines/jseditorx/internal/shell"
)

// ShellCommand starts the interactive editor shell.
type ShellCommand struct {
	*BaseCommand
	config *config.Config
	stdin  io.Reader

	open     string
	noBanner bool
	timeout  time.Duration
	store    storeFlags
	log      logFlags
}

// NewShellCommand creates the shell command.
func NewShellCommand(cfg *config.Config) *ShellCommand {
	return &ShellCommand{
		BaseCommand: NewBaseCommand(
			"shell",
			"Edit, save and run scripts interactively",
			"shell [options]",
		),
		config: cfg,
		stdin:  os.Stdin,
	}
}

// SetupFlags configures the flags for the shell command.
func (c *ShellCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.open, "open", "", "Open this file at startup (default: [shell] open)")
	fs.BoolVar(&c.noBanner, "no-banner", false, "Start with an empty scratch buffer")
	fs.DurationVar(&c.timeout, "timeout", 0, "Interrupt scripts after this long (default: sandbox.timeout)")
	c.store.register(fs)
	c.log.register(fs)
}

// Execute runs the shell until :quit or end of input.
func (c *ShellCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}

	logger, err := c.log.setup(c.config)
	if err != nil {
		return err
	}
	defer logger.Close()

	ws, store, err := c.store.openWorkspace(c.config, logger.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	schema := config.DefaultSchema()
	styles := stylesFor(stdout, c.config)
	dialogs := shell.NewLineDialogs(c.stdin, stdout, styles)

	sessOpts := []session.Option{session.WithLogger(logger.Logger)}
	if c.noBanner || !schema.ResolveSectionBool(c.config, "shell", "banner") {
		sessOpts = append(sessOpts, session.WithBuffer(""))
	}
	sess := session.New(ws, dialogs, sessOpts...)

	interactive := isTerminal(c.stdin) && isTerminal(stdout)
	sh := shell.New(sess, newSandbox(c.config, c.timeout, logger.Logger), dialogs, stdout,
		shell.WithStyles(styles),
		shell.WithLogger(logger.Logger),
		shell.WithLogRing(logger.Ring),
		shell.WithEditor(c.config.GetString("editor")),
		shell.WithPrefix(schema.Resolve(c.config, "prompt.prefix")),
		shell.WithStdin(c.stdin),
		shell.WithInterrupt(interactive),
	)

	open := c.open
	if open == "" {
		open = schema.ResolveSection(c.config, "shell", "open")
	}
	if open != "" {
		_ = sh.OpenFile(open)
	}

	logger.Info("shell started", "interactive", interactive, "file", sess.CurrentFile())
	defer logger.Info("shell stopped")

	if interactive {
		sh.Greet()
		return sh.RunPrompt(context.Background())
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return sh.Serve(ctx, dialogs)
}

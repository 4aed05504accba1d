package command

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/joeycumines/jseditorx/internal/logging"
	"github.com/joeycumines/jseditorx/internal/shell"
	"github.com/joeycumines/jseditorx/internal/storage"
	"github.com/joeycumines/jseditorx/internal/workspace"
)

// FilesCommand manages workspace files without opening the shell.
type FilesCommand struct {
	*BaseCommand
	config *config.Config
	stdin  io.Reader

	force bool
	store storeFlags
	log   logFlags
}

// NewFilesCommand creates the files command.
func NewFilesCommand(cfg *config.Config) *FilesCommand {
	return &FilesCommand{
		BaseCommand: NewBaseCommand(
			"files",
			"List, print, import, export and delete workspace files",
			"files [options] [ls | cat NAME | rm NAME | import NAME PATH | export NAME PATH]",
		),
		config: cfg,
		stdin:  os.Stdin,
	}
}

// SetupFlags configures the flags for the files command.
func (c *FilesCommand) SetupFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "import: overwrite an existing file")
	c.store.register(fs)
	c.log.register(fs)
}

// Execute runs a files subcommand; ls is the default.
func (c *FilesCommand) Execute(args []string, stdout, stderr io.Writer) error {
	logger, err := c.log.setup(c.config)
	if err != nil {
		return err
	}
	defer logger.Close()

	sub := "ls"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	want := map[string]int{"ls": 0, "cat": 1, "rm": 1, "import": 2, "export": 2}
	n, ok := want[sub]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Unknown files subcommand: %s\n", sub)
		return fmt.Errorf("unknown subcommand: %s", sub)
	}
	if len(args) != n {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", c.Usage())
		return fmt.Errorf("invalid arguments")
	}

	ws, store, err := c.store.openWorkspace(c.config, logger.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	switch sub {
	case "ls":
		return c.list(ws, stdout)
	case "cat":
		content, err := ws.Load(args[0])
		if err != nil {
			return userError(err)
		}
		_, _ = fmt.Fprint(stdout, content)
		return nil
	case "rm":
		return c.remove(ws, args[0], stdout, logger)
	case "import":
		return c.importFile(ws, args[0], args[1], stdout, logger)
	default:
		return c.exportFile(ws, args[0], args[1], stdout)
	}
}

// userError converts a workspace error to its user-facing message.
func userError(err error) error {
	return errors.New(workspace.UserMessage(err))
}

func (c *FilesCommand) list(ws *workspace.Workspace, stdout io.Writer) error {
	names, err := ws.List()
	if err != nil {
		return err
	}
	entries := make([]shell.FileEntry, 0, len(names))
	for _, name := range names {
		content, err := ws.Load(name)
		if err != nil && !errors.Is(err, workspace.ErrNotFound) {
			return err
		}
		entries = append(entries, shell.FileEntry{Name: name, Size: len(content)})
	}
	shell.RenderFileList(stdout, stylesFor(stdout, c.config), entries)
	return nil
}

func (c *FilesCommand) remove(ws *workspace.Workspace, name string, stdout io.Writer, logger *logging.Logger) error {
	exists, err := ws.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return userError(&workspace.NameError{Op: "delete", Name: name, Err: workspace.ErrNotFound})
	}
	if err := ws.Delete(name); err != nil {
		return err
	}
	logger.Info("file deleted", "file", name)
	_, _ = fmt.Fprintf(stdout, "Deleted %s\n", name)
	return nil
}

func (c *FilesCommand) importFile(ws *workspace.Workspace, name, path string, stdout io.Writer, logger *logging.Logger) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(c.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	_, err = ws.Create(name, string(data))
	if errors.Is(err, workspace.ErrDuplicateName) && c.force {
		err = ws.Save(name, string(data))
	}
	if err != nil {
		return userError(err)
	}
	logger.Info("file imported", "file", name, "from", path, "bytes", len(data))
	_, _ = fmt.Fprintf(stdout, "Imported %s (%d bytes)\n", name, len(data))
	return nil
}

func (c *FilesCommand) exportFile(ws *workspace.Workspace, name, path string, stdout io.Writer) error {
	content, err := ws.Load(name)
	if err != nil {
		return userError(err)
	}
	if path == "-" {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}
	if err := storage.AtomicWriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(stdout, "Exported %s to %s\n", name, path)
	return nil
}

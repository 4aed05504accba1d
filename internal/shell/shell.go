// Package shell is the line-oriented front end of jsx. Plain input lines
// are appended to the buffer; lines starting with ":" are commands that run,
// save, open and delete files.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/joeycumines/jseditorx/internal/logging"
	"github.com/joeycumines/jseditorx/internal/sandbox"
	"github.com/joeycumines/jseditorx/internal/session"
	"github.com/joeycumines/jseditorx/internal/workspace"
)

// DefaultPrefix is the interactive prompt prefix.
const DefaultPrefix = "jsx> "

// defaultLogLines is the number of entries :log shows without an argument.
const defaultLogLines = 20

// LineReader supplies input lines. io.EOF ends the shell.
type LineReader interface {
	ReadLine() (string, error)
}

// Shell wires user intents to a session and a sandbox.
type Shell struct {
	session *session.Session
	sandbox *sandbox.Sandbox
	dialogs session.Dialogs
	out     io.Writer
	stdin   io.Reader
	styles  Styles
	logger  *slog.Logger
	ring    *logging.RingHandler
	editor  string
	prefix  string

	interruptible bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithStyles sets the output styles. The default is PlainStyles.
func WithStyles(st Styles) Option {
	return func(s *Shell) { s.styles = st }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLogRing enables :log over the given ring.
func WithLogRing(ring *logging.RingHandler) Option {
	return func(s *Shell) { s.ring = ring }
}

// WithEditor sets the editor command line used by :edit, taking precedence
// over $VISUAL and $EDITOR.
func WithEditor(editor string) Option {
	return func(s *Shell) { s.editor = editor }
}

// WithPrefix sets the interactive prompt prefix.
func WithPrefix(prefix string) Option {
	return func(s *Shell) { s.prefix = prefix }
}

// WithStdin sets the terminal input handed to the editor.
func WithStdin(r io.Reader) Option {
	return func(s *Shell) { s.stdin = r }
}

// WithInterrupt makes SIGINT stop a running script instead of the process.
func WithInterrupt(enabled bool) Option {
	return func(s *Shell) { s.interruptible = enabled }
}

// New returns a shell over sess and sb. dialogs should be the same value the
// session was built with.
func New(sess *session.Session, sb *sandbox.Sandbox, dialogs session.Dialogs, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		session: sess,
		sandbox: sb,
		dialogs: dialogs,
		out:     out,
		stdin:   os.Stdin,
		styles:  PlainStyles(),
		logger:  slog.Default(),
		prefix:  DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the session the shell drives.
func (s *Shell) Session() *session.Session { return s.session }

func (s *Shell) println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Shell) alert(err error) {
	s.dialogs.Alert(workspace.UserMessage(err))
}

// RunRequested prints the running indicator, then evaluates the buffer and
// renders the result. It blocks until the script finishes.
func (s *Shell) RunRequested(ctx context.Context) *sandbox.Result {
	s.println(s.styles.render(s.styles.Success, RunningMessage))
	if s.interruptible {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}
	res := s.sandbox.Run(ctx, s.session.Buffer())
	if !res.Empty {
		attrs := []any{"run_id", res.RunID, "file", s.session.CurrentFile(), "elapsed", res.Elapsed, "output_lines", len(res.Output)}
		if res.Err != nil {
			s.logger.Info("script failed", append(attrs, "kind", res.Err.Kind, "message", res.Err.Message, "line", res.Err.Line)...)
		} else {
			s.logger.Info("script completed", attrs...)
		}
	}
	RenderResult(s.out, s.styles, res)
	return res
}

// SaveRequested saves the buffer, asking for a name when no file is open.
// Name errors are alerted and returned; a cancelled prompt returns
// session.ErrCancelled silently.
func (s *Shell) SaveRequested() error {
	err := s.session.Save()
	switch {
	case errors.Is(err, session.ErrCancelled):
		return err
	case err != nil:
		s.alert(err)
		return err
	}
	s.println(s.styles.render(s.styles.Success, "Saved "+s.session.CurrentFile()))
	return nil
}

// EditEvent replaces the buffer with text.
func (s *Shell) EditEvent(text string) {
	s.session.Edit(text)
}

// OpenFile switches to the indexed file name.
func (s *Shell) OpenFile(name string) error {
	ok, err := s.session.Workspace().Exists(name)
	if err == nil && !ok {
		err = &workspace.NameError{Op: "open", Name: name, Err: workspace.ErrNotFound}
	}
	if err == nil {
		err = s.session.Open(name)
	}
	if err != nil {
		s.alert(err)
		return err
	}
	return nil
}

// DeleteFile asks for confirmation, then deletes name. It reports whether
// the file was deleted.
func (s *Shell) DeleteFile(name string) (bool, error) {
	if !s.dialogs.Confirm(`Are you sure you want to delete "` + name + `"?`) {
		return false, nil
	}
	if err := s.session.Remove(name); err != nil {
		s.alert(err)
		return false, err
	}
	s.println(s.styles.render(s.styles.Success, "Deleted "+name))
	return true, nil
}

// CreateFile creates and opens a file. An empty name is asked for. With
// seedWithBuffer the file starts with the current buffer.
func (s *Shell) CreateFile(name string, seedWithBuffer bool) error {
	if name == "" {
		v, ok := s.dialogs.PromptText(session.SaveNamePrompt)
		if !ok {
			return session.ErrCancelled
		}
		name = v
	}
	if err := s.session.Create(name, seedWithBuffer); err != nil {
		s.alert(err)
		return err
	}
	s.println(s.styles.render(s.styles.Success, "Created "+name))
	return nil
}

// appendLine adds line to the end of the buffer.
func (s *Shell) appendLine(line string) {
	buf := s.session.Buffer()
	if buf != "" && !strings.HasSuffix(buf, "\n") {
		buf += "\n"
	}
	s.EditEvent(buf + line + "\n")
}

// Execute handles one input line and reports whether the shell should keep
// reading. A line starting with "::" is appended with one colon removed.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		s.appendLine(line)
		return true
	}
	if strings.HasPrefix(trimmed, "::") {
		s.appendLine(strings.Replace(line, "::", ":", 1))
		return true
	}

	args := splitArgs(trimmed[1:])
	if len(args) == 0 {
		return true
	}
	cmd := lookupCommand(args[0])
	if cmd == nil {
		s.dialogs.Alert(fmt.Sprintf("Unknown command: :%s (try :help)", args[0]))
		return true
	}
	s.logger.Debug("shell command", "command", cmd.name, "args", args[1:])
	return cmd.run(s, ctx, args[1:])
}

// Serve reads lines from r until end of input or :quit.
func (s *Shell) Serve(ctx context.Context, r LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if !s.Execute(ctx, line) {
			return nil
		}
	}
}

// Greet prints the startup line.
func (s *Shell) Greet() {
	s.println(s.styles.render(s.styles.Muted, "jsx shell: type :help for commands, :quit to exit"))
}

func (s *Shell) listFiles() {
	names, err := s.session.Workspace().List()
	if err != nil {
		s.alert(err)
		return
	}
	entries := make([]FileEntry, 0, len(names))
	for _, name := range names {
		content, err := s.session.Workspace().Load(name)
		if err != nil && !errors.Is(err, workspace.ErrNotFound) {
			s.alert(err)
			return
		}
		current := name == s.session.CurrentFile()
		entries = append(entries, FileEntry{
			Name:     name,
			Size:     len(content),
			Current:  current,
			Modified: current && s.session.Dirty(),
		})
	}
	RenderFileList(s.out, s.styles, entries)
}

func (s *Shell) showBuffer() {
	state := s.session.State()
	title := state.CurrentFile
	if title == "" {
		title = "(unsaved)"
	}
	if state.Dirty == session.Dirty {
		title += " " + s.styles.render(s.styles.Warning, "(modified)")
	}
	s.println(s.styles.render(s.styles.Current, title))
	renderBuffer(s.out, s.styles, state.Buffer)
}

func (s *Shell) editBuffer(ctx context.Context) {
	buf := s.session.Buffer()
	text, err := editText(ctx, resolveEditor(s.editor), s.session.CurrentFile(), buf, s.stdin, s.out, s.out)
	if err != nil {
		s.logger.Warn("editor failed", "error", err)
		s.dialogs.Alert(err.Error())
		return
	}
	if text != buf {
		s.EditEvent(text)
	}
}

func (s *Shell) showLog(args []string) {
	if s.ring == nil {
		s.println(s.styles.render(s.styles.Muted, "(log buffer disabled)"))
		return
	}
	n := defaultLogLines
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			s.dialogs.Alert("Usage: :log [N]")
			return
		}
		n = v
	}
	for _, e := range s.ring.Recent(n) {
		s.println(e.String())
	}
}

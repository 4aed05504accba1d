// Package session tracks the file being edited: which file is open, the live
// buffer and whether the buffer has unsaved changes.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joeycumines/jseditorx/internal/workspace"
)

// Placeholder is the buffer shown for a file without content, and after the
// current file is deleted.
const Placeholder = "// Write some code"

// WelcomeBanner seeds the scratch buffer of a new session.
const WelcomeBanner = `/* ******* JSEditorX - Main ******* */
// Write some JavaScript code here - this stays on your machine!
// Type :save to save your code to a file.
// Type :run to run it, or :help for the other commands.
`

// ErrCancelled is returned by Save when the user dismisses the name prompt.
var ErrCancelled = errors.New("cancelled")

// SaveNamePrompt is the message used to ask for the name of an unsaved buffer.
const SaveNamePrompt = "Provide file name:"

// Dialogs are the user prompts the session and its shell rely on. They are
// supplied by the embedder.
type Dialogs interface {
	// PromptText asks for a line of text. ok is false when the user cancelled.
	PromptText(message string) (value string, ok bool)
	// Confirm asks a yes/no question.
	Confirm(message string) bool
	// Alert shows a message.
	Alert(message string)
}

// DirtyState is the latched unsaved-changes flag. The only transitions are
// Clean to Dirty on an edit, and back to Clean on save or when a file is
// opened, created or reset.
type DirtyState int

const (
	Clean DirtyState = iota
	Dirty
)

func (s DirtyState) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	default:
		return fmt.Sprintf("DirtyState(%d)", int(s))
	}
}

// State is a point-in-time copy of the session, for display.
type State struct {
	CurrentFile string // empty for the scratch buffer
	Buffer      string
	Dirty       DirtyState
}

// Session is the File Session. It is not safe for concurrent use; the shell
// drives it from a single goroutine.
type Session struct {
	ws      *workspace.Workspace
	dialogs Dialogs
	logger  *slog.Logger

	current  string
	buffer   string
	snapshot string // last persisted content of current
	state    DirtyState
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for transition logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBuffer replaces the welcome banner as the initial scratch buffer.
func WithBuffer(text string) Option {
	return func(s *Session) { s.buffer = text }
}

// New returns a session holding an unsaved scratch buffer.
func New(ws *workspace.Workspace, dialogs Dialogs, opts ...Option) *Session {
	s := &Session{
		ws:      ws,
		dialogs: dialogs,
		logger:  slog.Default(),
		buffer:  WelcomeBanner,
		state:   Clean,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workspace returns the workspace the session persists into.
func (s *Session) Workspace() *workspace.Workspace { return s.ws }

// CurrentFile returns the open file name, or "" for the scratch buffer.
func (s *Session) CurrentFile() string { return s.current }

// Buffer returns the live buffer.
func (s *Session) Buffer() string { return s.buffer }

// Dirty reports whether the buffer has unsaved changes.
func (s *Session) Dirty() bool { return s.state == Dirty }

// State returns a copy of the session state.
func (s *Session) State() State {
	return State{CurrentFile: s.current, Buffer: s.buffer, Dirty: s.state}
}

func (s *Session) transition(to DirtyState, reason string) {
	if s.state != to {
		s.logger.Debug("session state changed", "from", s.state, "to", to, "reason", reason, "file", s.current)
	}
	s.state = to
}

// Open makes name the current file. A file with no stored content, or empty
// content, opens with Placeholder in the buffer.
func (s *Session) Open(name string) error {
	content, err := s.ws.Load(name)
	if err != nil && !errors.Is(err, workspace.ErrNotFound) {
		return fmt.Errorf("failed to open %q: %w", name, err)
	}

	s.current = name
	s.snapshot = content
	if content == "" {
		s.buffer = Placeholder
	} else {
		s.buffer = content
	}
	s.transition(Clean, "open")
	s.logger.Debug("session opened file", "file", name)
	return nil
}

// Edit replaces the buffer. The first edit that differs from the persisted
// content latches the session Dirty; any edit of the scratch buffer does.
// Editing back to the persisted content does not clear the flag.
func (s *Session) Edit(text string) {
	s.buffer = text
	if s.state == Clean && (s.current == "" || text != s.snapshot) {
		s.transition(Dirty, "edit")
	}
}

// Save persists the buffer. With no file open the user is asked for a name
// and a new file is created from the buffer. A cancelled prompt returns
// ErrCancelled, and a rejected name returns the workspace error; neither
// changes the session.
func (s *Session) Save() error {
	if s.current == "" {
		name, ok := s.dialogs.PromptText(SaveNamePrompt)
		if !ok {
			return ErrCancelled
		}
		if _, err := s.ws.Create(name, s.buffer); err != nil {
			return err
		}
		s.current = name
		s.snapshot = s.buffer
		s.transition(Clean, "save-new")
		s.logger.Debug("session saved scratch buffer", "file", name)
		return nil
	}

	if err := s.ws.Save(s.current, s.buffer); err != nil {
		return err
	}
	s.snapshot = s.buffer
	s.transition(Clean, "save")
	return nil
}

// SeedContent returns the content a new file starts with when it is not
// seeded from the buffer.
func SeedContent(name string) string {
	return fmt.Sprintf("// %s: write some code", name)
}

// Create adds a new file and opens it. With seedWithBuffer the file starts
// with the current buffer, otherwise with SeedContent(name).
func (s *Session) Create(name string, seedWithBuffer bool) error {
	content := SeedContent(name)
	if seedWithBuffer {
		content = s.buffer
	}
	f, err := s.ws.Create(name, content)
	if err != nil {
		return err
	}
	s.current = f.Name
	s.buffer = f.Content
	s.snapshot = f.Content
	s.transition(Clean, "create")
	s.logger.Debug("session created file", "file", f.Name, "seeded", seedWithBuffer)
	return nil
}

// Remove deletes name from the workspace. Removing the current file resets
// the session to an unsaved Placeholder buffer.
func (s *Session) Remove(name string) error {
	if err := s.ws.Delete(name); err != nil {
		return err
	}
	if name == s.current {
		s.Reset()
	}
	return nil
}

// Reset closes the current file, leaving an unsaved Placeholder buffer.
func (s *Session) Reset() {
	s.logger.Debug("session reset", "file", s.current)
	s.current = ""
	s.snapshot = ""
	s.buffer = Placeholder
	s.transition(Clean, "reset")
}

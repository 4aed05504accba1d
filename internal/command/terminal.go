package command

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/joeycumines/jseditorx/internal/shell"
)

// isTerminal reports whether v is an *os.File attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// stylesFor returns colored styles when w is a terminal, prompt.color is on
// and NO_COLOR is unset.
func stylesFor(w io.Writer, cfg *config.Config) shell.Styles {
	if os.Getenv("NO_COLOR") != "" || !config.DefaultSchema().ResolveBool(cfg, "prompt.color") || !isTerminal(w) {
		return shell.PlainStyles()
	}
	return shell.DefaultStyles()
}

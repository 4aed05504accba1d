package shell

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/rivo/uniseg"

	"github.com/joeycumines/jseditorx/internal/sandbox"
)

// Styles holds the lipgloss styles used for shell output. When Plain is set
// text is written unstyled.
type Styles struct {
	Plain bool

	Success lipgloss.Style
	Failure lipgloss.Style
	Warning lipgloss.Style
	Value   lipgloss.Style
	Prompt  lipgloss.Style
	Muted   lipgloss.Style
	Current lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#55ff55")).Bold(true),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc55")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f0f0f0")),
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Current: lipgloss.NewStyle().Foreground(lipgloss.Color("#bd93f9")).Bold(true),
	}
}

// PlainStyles returns styles that leave text untouched.
func PlainStyles() Styles {
	return Styles{Plain: true}
}

func (st Styles) render(style lipgloss.Style, s string) string {
	if st.Plain {
		return s
	}
	return style.Render(s)
}

// Messages shown around a run.
const (
	RunningMessage = "Running..."
	EmptyMessage   = "Write some code first; we won't judge!"
	FailureHeader  = "Uh oh, your code produced an error."
)

// RenderResult writes a run result: captured output, then either the timing
// and returned value or the error kind, message and line.
func RenderResult(w io.Writer, st Styles, res *sandbox.Result) {
	if res.Empty {
		_, _ = fmt.Fprintln(w, st.render(st.Failure, EmptyMessage))
		return
	}
	for _, line := range res.Output {
		_, _ = fmt.Fprintln(w, line)
	}
	if res.Err != nil {
		_, _ = fmt.Fprintln(w, st.render(st.Warning, FailureHeader))
		_, _ = fmt.Fprintln(w, st.render(st.Failure, res.Err.Kind+": ")+st.render(st.Value, res.Err.Message))
		_, _ = fmt.Fprintln(w, st.render(st.Failure, "Problem at line: ")+st.render(st.Value, res.Err.LineString()))
		return
	}
	_, _ = fmt.Fprintln(w, st.render(st.Success, fmt.Sprintf("Execution took %d ms", res.ElapsedMs())))
	_, _ = fmt.Fprintln(w, st.render(st.Success, "Code Returned: ")+st.render(st.Value, res.Returned))
}

// FileEntry is one row of a file listing.
type FileEntry struct {
	Name     string
	Size     int
	Current  bool
	Modified bool
}

// RenderFileList writes one row per file, in the given order. The current
// file is marked with "*" and, when modified, suffixed with "(modified)".
func RenderFileList(w io.Writer, st Styles, files []FileEntry) {
	if len(files) == 0 {
		_, _ = fmt.Fprintln(w, st.render(st.Muted, "(no files)"))
		return
	}
	width := 0
	for _, f := range files {
		width = max(width, uniseg.StringWidth(f.Name))
	}
	for _, f := range files {
		marker := " "
		if f.Current {
			marker = "*"
		}
		name := f.Name + strings.Repeat(" ", width-uniseg.StringWidth(f.Name))
		if f.Current {
			name = st.render(st.Current, name)
		}
		row := fmt.Sprintf("%s %s  %s", marker, name, st.render(st.Muted, fmt.Sprintf("%d bytes", f.Size)))
		if f.Modified {
			row += " " + st.render(st.Warning, "(modified)")
		}
		_, _ = fmt.Fprintln(w, row)
	}
}

// renderBuffer writes text with right-aligned line numbers.
func renderBuffer(w io.Writer, st Styles, text string) {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	digits := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		_, _ = fmt.Fprintf(w, "%s %s\n", st.render(st.Muted, fmt.Sprintf("%*d", digits, i+1)), line)
	}
}

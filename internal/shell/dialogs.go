package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LineDialogs implements session.Dialogs over a line-oriented terminal. The
// shell loop reads its input through the same reader, so answers and
// commands interleave in input order.
type LineDialogs struct {
	in     *bufio.Reader
	out    io.Writer
	styles Styles
}

// NewLineDialogs returns dialogs reading answers from in and writing
// questions to out.
func NewLineDialogs(in io.Reader, out io.Writer, styles Styles) *LineDialogs {
	return &LineDialogs{in: bufio.NewReader(in), out: out, styles: styles}
}

// ReadLine returns the next input line without its line ending. io.EOF is
// returned only when no more input is available.
func (d *LineDialogs) ReadLine() (string, error) {
	line, err := d.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptText prints message and reads one line. End of input cancels.
func (d *LineDialogs) PromptText(message string) (string, bool) {
	_, _ = fmt.Fprint(d.out, d.styles.render(d.styles.Prompt, message)+" ")
	line, err := d.ReadLine()
	if err != nil {
		_, _ = fmt.Fprintln(d.out)
		return "", false
	}
	return strings.TrimSpace(line), true
}

// Confirm prints message and reads a y/N answer. Anything but y or yes,
// including end of input, is no.
func (d *LineDialogs) Confirm(message string) bool {
	_, _ = fmt.Fprint(d.out, d.styles.render(d.styles.Prompt, message)+" [y/N] ")
	line, err := d.ReadLine()
	if err != nil {
		_, _ = fmt.Fprintln(d.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Alert prints message.
func (d *LineDialogs) Alert(message string) {
	_, _ = fmt.Fprintln(d.out, d.styles.render(d.styles.Warning, message))
}

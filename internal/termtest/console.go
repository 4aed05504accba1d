//go:build unix

// Package termtest drives programs attached to a pseudo-terminal, for tests
// of the interactive shell.
package termtest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/creack/pty"
)

// Options configures a Console.
type Options struct {
	Command string
	Args    []string
	// Env is appended to the current environment.
	Env            []string
	Dir            string
	DefaultTimeout time.Duration
	Rows, Cols     uint16
}

// Console is a process running on the slave side of a PTY.
type Console struct {
	cmd     *exec.Cmd
	ptm     *os.File
	timeout time.Duration
	cancel  context.CancelFunc

	mu     sync.Mutex
	output strings.Builder
	closed bool

	readDone chan struct{}
	waitOnce sync.Once
	waitErr  error
	exited   chan struct{}
}

// Start runs the configured command attached to a new PTY.
func Start(ctx context.Context, opts Options) (*Console, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, opts.Env...)
	cmd.Dir = opts.Dir

	size := &pty.Winsize{Rows: opts.Rows, Cols: opts.Cols}
	if size.Rows == 0 {
		size.Rows = 24
	}
	if size.Cols == 0 {
		size.Cols = 80
	}
	ptm, err := pty.StartWithSize(cmd, size)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start command with pty: %w", err)
	}

	c := &Console{
		cmd:      cmd,
		ptm:      ptm,
		timeout:  opts.DefaultTimeout,
		cancel:   cancel,
		readDone: make(chan struct{}),
		exited:   make(chan struct{}),
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	go c.readOutput()
	go func() {
		c.waitErr = cmd.Wait()
		close(c.exited)
	}()
	return c, nil
}

func (c *Console) readOutput() {
	defer close(c.readDone)
	buf := make([]byte, 4096)
	for {
		n, err := c.ptm.Read(buf)
		if n > 0 {
			c.mu.Lock()
			c.output.Write(buf[:n])
			c.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Type writes input one rune at a time, pausing between runes so line
// editors see individual key presses.
func (c *Console) Type(input string, delay time.Duration) error {
	for _, r := range input {
		if _, err := c.ptm.WriteString(string(r)); err != nil {
			return fmt.Errorf("failed to write input: %w", err)
		}
		time.Sleep(delay)
	}
	return nil
}

// SendLine types input followed by Enter.
func (c *Console) SendLine(input string) error {
	if err := c.Type(input, 5*time.Millisecond); err != nil {
		return err
	}
	return c.SendKeys("enter")
}

// SendKeys sends a named key: enter, tab, ctrl-c, ctrl-d, backspace, esc,
// up, down, left or right.
func (c *Console) SendKeys(key string) error {
	seq, ok := map[string]string{
		"enter":     "\n",
		"tab":       "\t",
		"ctrl-c":    "\x03",
		"ctrl-d":    "\x04",
		"backspace": "\x7f",
		"esc":       "\x1b",
		"up":        "\x1b[A",
		"down":      "\x1b[B",
		"right":     "\x1b[C",
		"left":      "\x1b[D",
	}[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown key sequence: %s", key)
	}
	_, err := c.ptm.WriteString(seq)
	return err
}

// Output returns everything the program wrote, escape sequences included.
func (c *Console) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output.String()
}

// Text returns the output with ANSI escape sequences removed.
func (c *Console) Text() string {
	return ansi.Strip(c.Output())
}

// Len returns the current length of Text. Capture it before sending input,
// then pass it to ExpectSince to ignore earlier output.
func (c *Console) Len() int {
	return len(c.Text())
}

// Expect waits for text to appear anywhere in the stripped output.
func (c *Console) Expect(text string, timeout ...time.Duration) error {
	return c.ExpectSince(text, 0, timeout...)
}

// ExpectSince waits for text to appear in stripped output after offset.
func (c *Console) ExpectSince(text string, offset int, timeout ...time.Duration) error {
	d := c.timeout
	if len(timeout) > 0 {
		d = timeout[0]
	}
	deadline := time.Now().Add(d)
	for {
		out := c.Text()
		if offset > len(out) {
			offset = len(out)
		}
		if strings.Contains(out[offset:], text) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("expected text %q not found after %v; output:\n%s", text, d, out[offset:])
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ExpectExit waits for the process to exit with code.
func (c *Console) ExpectExit(code int, timeout ...time.Duration) error {
	d := c.timeout
	if len(timeout) > 0 {
		d = timeout[0]
	}
	select {
	case <-c.exited:
	case <-time.After(d):
		return fmt.Errorf("process did not exit within %v", d)
	}
	got := 0
	if c.waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(c.waitErr, &exitErr) {
			return fmt.Errorf("failed to wait for process: %w", c.waitErr)
		}
		got = exitErr.ExitCode()
	}
	if got != code {
		return fmt.Errorf("expected exit code %d, got %d", code, got)
	}
	return nil
}

// Close kills the process if it is still running and releases the PTY.
func (c *Console) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	select {
	case <-c.exited:
	case <-time.After(5 * time.Second):
	}
	return c.ptm.Close()
}

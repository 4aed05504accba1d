package command

import (
	"bufio"
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
	"github.com/joeycumines/jseditorx/internal/logging"
)

// LogCommand prints the tail of the jsx log file, optionally following it.
type LogCommand struct {
	*BaseCommand
	config *config.Config

	follow bool
	lines  int
	file   string
	level  string
	raw    bool

	poll    time.Duration
	maxWait time.Duration
}

// NewLogCommand creates the log command.
func NewLogCommand(cfg *config.Config) *LogCommand {
	return &LogCommand{
		BaseCommand: NewBaseCommand("log", "Show or follow the log file", "log [tail] [options]"),
		config:      cfg,
		poll:        200 * time.Millisecond,
		maxWait:     30 * time.Second,
	}
}

// SetupFlags configures the flags for the log command.
func (c *LogCommand) SetupFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.follow, "f", false, "Follow the log file (like tail -f)")
	fs.BoolVar(&c.follow, "follow", false, "Follow the log file (like tail -f)")
	fs.IntVar(&c.lines, "n", 10, "Number of entries to show from the end of the file")
	fs.StringVar(&c.file, "file", "", "Path to log file (default: log.file)")
	fs.StringVar(&c.level, "level", "", "Hide entries below this level")
	fs.BoolVar(&c.raw, "raw", false, "Print JSON lines as written")
}

// Execute runs the log command. "log tail" is an alias for "log -follow".
func (c *LogCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "tail" {
		c.follow = true
		args = args[1:]
	}
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unknown subcommand: %s\n", args[0])
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}

	path := c.file
	if path == "" && c.config != nil {
		path = config.DefaultSchema().Resolve(c.config, "log.file")
	}
	if path == "" {
		_, _ = fmt.Fprintln(stderr, "No log file configured. Use -file or set log.file in config.")
		return fmt.Errorf("no log file configured")
	}

	minLevel := slog.Level(-1 << 10)
	if c.level != "" {
		lvl, err := logging.ParseLevel(c.level)
		if err != nil {
			return err
		}
		minLevel = lvl
	}
	p := &linePrinter{w: stdout, raw: c.raw, min: minLevel}

	if !c.follow {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				_, _ = fmt.Fprintf(stderr, "Log file does not exist: %s\n", path)
				return fmt.Errorf("log file not found: %s", path)
			}
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		p.printAll(readLastNLines(f, c.lines, p.keep))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := c.tail(ctx, path, p, stderr)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// linePrinter renders log file lines, either raw or in the shell's :log
// format.
type linePrinter struct {
	w   io.Writer
	raw bool
	min slog.Level
}

// keep reports whether a line passes the level filter. Lines that are not
// JSON are always kept.
func (p *linePrinter) keep(line string) bool {
	e, err := logging.ParseJSONLine(line)
	return err != nil || e.Level >= p.min
}

func (p *linePrinter) print(line string) {
	if !p.keep(line) {
		return
	}
	if !p.raw {
		if e, err := logging.ParseJSONLine(line); err == nil {
			line = e.String()
		}
	}
	_, _ = fmt.Fprintln(p.w, line)
}

func (p *linePrinter) printAll(lines []string) {
	for _, line := range lines {
		p.print(line)
	}
}

// readLastNLines returns the last n lines of r accepted by keep, holding at
// most n lines in memory.
func readLastNLines(r io.Reader, n int, keep func(string) bool) []string {
	if n <= 0 {
		return nil
	}
	ring := make([]string, n)
	count := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if line := scanner.Text(); keep(line) {
			ring[count%n] = line
			count++
		}
	}
	total := min(count, n)
	result := make([]string, total)
	start := count - total
	for i := range total {
		result[i] = ring[(start+i)%n]
	}
	return result
}

// tail prints the last lines of path, then follows it until ctx is done.
// A rotated or truncated file is reopened from the beginning.
func (c *LogCommand) tail(ctx context.Context, path string, p *linePrinter, stderr io.Writer) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintf(stderr, "Waiting for log file: %s\n", path)
		f, err = c.waitForFile(ctx, path)
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	p.printAll(readLastNLines(f, c.lines, p.keep))
	pos, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(f)
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	var partial string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		info, err := os.Stat(path)
		if err != nil || info.Size() < pos {
			_ = f.Close()
			if err != nil {
				_, _ = fmt.Fprintln(stderr, "Log file rotated, waiting for new file...")
			}
			if f, err = c.waitForFile(ctx, path); err != nil {
				return err
			}
			reader, pos, partial = bufio.NewReader(f), 0, ""
		}

		for {
			chunk, err := reader.ReadString('\n')
			pos += int64(len(chunk))
			partial += chunk
			if err != nil {
				break
			}
			p.print(partial[:len(partial)-1])
			partial = ""
		}
	}
}

// waitForFile polls until path can be opened, ctx is done or maxWait passes.
func (c *LogCommand) waitForFile(ctx context.Context, path string) (*os.File, error) {
	deadline := time.Now().Add(c.maxWait)
	for {
		f, err := os.Open(path)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for log file: %s", path)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.poll):
		}
	}
}

package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"time":"2026-01-02T03:04:05.678Z","level":"DEBUG","msg":"store opened","backend":"memory"}
{"time":"2026-01-02T03:04:06Z","level":"INFO","msg":"run finished","run_id":"abc","ok":true}
not json
{"time":"2026-01-02T03:04:07Z","level":"WARN","msg":"editor failed","error":"exit status 1"}
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jsx.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLogCommand_LastLines(t *testing.T) {
	t.Parallel()
	path := writeLog(t, sampleLog)

	stdout, _, err := execute(t, NewLogCommand(config.NewConfig()), "-file", path, "-n", "2")
	require.NoError(t, err)
	require.Equal(t, "not json\n03:04:07.000 WARN editor failed error=exit status 1\n", stdout)

	stdout, _, err = execute(t, NewLogCommand(config.NewConfig()), "-file", path, "-level", "info")
	require.NoError(t, err)
	require.Equal(t, "03:04:06.000 INFO run finished ok=true run_id=abc\n"+
		"not json\n"+
		"03:04:07.000 WARN editor failed error=exit status 1\n", stdout)

	stdout, _, err = execute(t, NewLogCommand(config.NewConfig()), "-file", path, "-n", "1", "-raw")
	require.NoError(t, err)
	require.Equal(t, strings.Split(sampleLog, "\n")[3]+"\n", stdout)
}

func TestLogCommand_ConfigPath(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.file", writeLog(t, sampleLog))
	stdout, _, err := execute(t, NewLogCommand(cfg), "-n", "1")
	require.NoError(t, err)
	require.Contains(t, stdout, "editor failed")
}

func TestLogCommand_Errors(t *testing.T) {
	t.Setenv("JSX_LOG_FILE", "")
	_, stderr, err := execute(t, NewLogCommand(config.NewConfig()))
	require.EqualError(t, err, "no log file configured")
	require.Contains(t, stderr, "No log file configured")

	_, _, err = execute(t, NewLogCommand(config.NewConfig()), "-file", filepath.Join(t.TempDir(), "nope.log"))
	require.ErrorContains(t, err, "log file not found")

	_, _, err = execute(t, NewLogCommand(config.NewConfig()), "-file", "x", "bogus")
	require.EqualError(t, err, "unknown subcommand: bogus")

	_, _, err = execute(t, NewLogCommand(config.NewConfig()), "-file", writeLog(t, ""), "-level", "loud")
	require.Error(t, err)
}

func TestReadLastNLines(t *testing.T) {
	t.Parallel()
	all := func(string) bool { return true }
	require.Equal(t, []string{"c", "d"}, readLastNLines(strings.NewReader("a\nb\nc\nd\n"), 2, all))
	require.Equal(t, []string{"a"}, readLastNLines(strings.NewReader("a"), 5, all))
	require.Empty(t, readLastNLines(strings.NewReader(""), 5, all))
	require.Nil(t, readLastNLines(strings.NewReader("a\n"), 0, all))
	require.Equal(t, []string{"b", "d"}, readLastNLines(strings.NewReader("a\nb\nc\nd\n"), 2, func(s string) bool {
		return s != "c"
	}))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogCommand_Follow(t *testing.T) {
	t.Parallel()
	path := writeLog(t, "first\n")
	cmd := NewLogCommand(config.NewConfig())
	cmd.poll = 10 * time.Millisecond
	cmd.maxWait = time.Second

	var out, errOut syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.tail(ctx, path, &linePrinter{w: &out, raw: true}, &errOut) }()

	require.Eventually(t, func() bool { return out.String() == "first\n" }, 5*time.Second, 5*time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("second\nthi")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return out.String() == "first\nsecond\n" }, 5*time.Second, 5*time.Millisecond)
	_, err = f.WriteString("rd\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Eventually(t, func() bool { return out.String() == "first\nsecond\nthird\n" }, 5*time.Second, 5*time.Millisecond)

	// truncation reopens from the start
	require.NoError(t, os.WriteFile(path, []byte("new\n"), 0644))
	require.Eventually(t, func() bool { return strings.HasSuffix(out.String(), "third\nnew\n") }, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// resolveEditor returns the editor command line: configured, then $VISUAL,
// then $EDITOR, then a platform default.
func resolveEditor(configured string) []string {
	for _, candidate := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if args := splitArgs(candidate); len(args) > 0 {
			return args
		}
	}
	if runtime.GOOS == "windows" {
		return []string{"notepad"}
	}
	for _, name := range []string{"nano", "vi"} {
		if _, err := exec.LookPath(name); err == nil {
			return []string{name}
		}
	}
	return []string{"ed"}
}

// sanitizeFilename keeps letters, digits, dot, dash and underscore.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// editText writes content to a temporary .js file, runs the editor on it and
// returns the saved text. The temporary file is always removed.
func editText(ctx context.Context, editor []string, nameHint, content string, stdin io.Reader, stdout, stderr io.Writer) (string, error) {
	if nameHint == "" {
		nameHint = "scratch"
	}
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("jsx-%s-*.js", sanitizeFilename(nameHint)))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmpFile.Name()
	defer os.Remove(path)

	if _, err := tmpFile.WriteString(content); err != nil {
		_ = tmpFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, editor[0], append(editor[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %s failed: %w", editor[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return string(data), nil
}

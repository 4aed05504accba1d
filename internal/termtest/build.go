//go:build unix

package termtest

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

var builds sync.Map

// BuildBinary compiles the main package at pkg, a path relative to the
// module root such as "./cmd/jsx", once per test process. The binary lives
// in a temporary directory that outlives individual tests.
func BuildBinary(tb testing.TB, pkg string) string {
	tb.Helper()
	v, _ := builds.LoadOrStore(pkg, sync.OnceValues(func() (string, error) {
		return build(pkg)
	}))
	path, err := v.(func() (string, error))()
	if err != nil {
		tb.Fatalf("failed to build %s: %v", pkg, err)
	}
	return path
}

func build(pkg string) (string, error) {
	dir, err := os.MkdirTemp("", "jsx-termtest-*")
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, filepath.Base(pkg))
	cmd := exec.Command("go", "build", "-o", out, pkg)
	cmd.Dir = moduleRoot()
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", &buildError{err: err, output: string(output)}
	}
	return out, nil
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string { return e.err.Error() + "\n" + e.output }

func (e *buildError) Unwrap() error { return e.err }

// moduleRoot is two directories above this file.
func moduleRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("failed to find caller source")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

// Package internal_test contains performance benchmarks and regression tests
// for jsx.
package internal_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/joeycumines/jseditorx/internal/sandbox"
	"github.com/joeycumines/jseditorx/internal/session"
	"github.com/joeycumines/jseditorx/internal/storage"
	"github.com/joeycumines/jseditorx/internal/workspace"
)

// Average-time thresholds in microseconds. They are loose, to catch
// order-of-magnitude regressions rather than noise.
const (
	thresholdSimpleRun       = 50000
	thresholdMemoryWorkspace = 1000
	thresholdConfigLoad      = 2000
)

const benchScript = `
const xs = [];
for (let i = 0; i < 100; i++) xs.push({ i, sq: i * i });
console.log(xs.length);
xs.reduce((a, x) => a + x.sq, 0)
`

func BenchmarkSandbox(b *testing.B) {
	s := sandbox.New()
	ctx := context.Background()

	b.Run("Simple", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			if res := s.Run(ctx, "1 + 1"); !res.OK() {
				b.Fatal(res.Err)
			}
		}
	})

	b.Run("Loop", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			if res := s.Run(ctx, benchScript); !res.OK() {
				b.Fatal(res.Err)
			}
		}
	})

	b.Run("ConsoleObject", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			if res := s.Run(ctx, `console.log({ a: [1, 2, 3], b: { c: "d" } })`); !res.OK() {
				b.Fatal(res.Err)
			}
		}
	})

	b.Run("Throw", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			if res := s.Run(ctx, "throw new TypeError('x')"); res.Err == nil {
				b.Fatal("expected error")
			}
		}
	})
}

func benchWorkspace(b *testing.B, store storage.Store) {
	ws := workspace.New(store)
	content := strings.Repeat("console.log('line');\n", 50)
	for i := range 20 {
		if _, err := ws.Create(fmt.Sprintf("file-%d", i), content); err != nil {
			b.Fatal(err)
		}
	}

	b.Run("List", func(b *testing.B) {
		for b.Loop() {
			if _, err := ws.List(); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("Save", func(b *testing.B) {
		for b.Loop() {
			if err := ws.Save("file-10", content); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("Load", func(b *testing.B) {
		for b.Loop() {
			if _, err := ws.Load("file-10"); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkWorkspace(b *testing.B) {
	b.Run("Memory", func(b *testing.B) {
		store, err := storage.NewInMemoryBackend("bench/" + b.Name())
		if err != nil {
			b.Fatal(err)
		}
		defer store.Close()
		benchWorkspace(b, store)
	})

	b.Run("FileSystem", func(b *testing.B) {
		store, err := storage.GetBackend("fs", "bench", storage.Options{Path: filepath.Join(b.TempDir(), "store.json")})
		if err != nil {
			b.Fatal(err)
		}
		defer store.Close()
		benchWorkspace(b, store)
	})
}

func BenchmarkSessionEdit(b *testing.B) {
	store, err := storage.NewInMemoryBackend("bench/" + b.Name())
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	ws := workspace.New(store)
	if _, err := ws.Create("f", "x"); err != nil {
		b.Fatal(err)
	}
	sess := session.New(ws, nil)
	if err := sess.Open("f"); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		sess.Edit("x + 1")
	}
}

var benchConfig = `
store.backend fs
store.lock true
sandbox.timeout 5s
sandbox.deny process, fetch
log.level debug

[run]
quiet true

[shell]
banner false
`

func BenchmarkConfigLoading(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		if _, err := config.LoadFromReader(strings.NewReader(benchConfig)); err != nil {
			b.Fatal(err)
		}
	}
}

// averageMicros runs fn n times and returns the mean duration.
func averageMicros(t *testing.T, n int, fn func() error) int64 {
	t.Helper()
	start := time.Now()
	for range n {
		if err := fn(); err != nil {
			t.Fatal(err)
		}
	}
	return time.Since(start).Microseconds() / int64(n)
}

// TestPerformanceRegression checks that critical operations complete within
// loose thresholds.
func TestPerformanceRegression(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping in short mode")
	}

	t.Run("SandboxRun", func(t *testing.T) {
		s := sandbox.New()
		avg := averageMicros(t, 20, func() error {
			if res := s.Run(context.Background(), benchScript); !res.OK() {
				return res.Err
			}
			return nil
		})
		if avg > thresholdSimpleRun {
			t.Errorf("sandbox run too slow: avg %d μs (threshold: %d μs)", avg, thresholdSimpleRun)
		}
		t.Logf("sandbox run: avg %d μs", avg)
	})

	t.Run("MemoryWorkspace", func(t *testing.T) {
		store, err := storage.NewInMemoryBackend("bench/" + t.Name())
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()
		ws := workspace.New(store)
		i := 0
		avg := averageMicros(t, 100, func() error {
			i++
			name := fmt.Sprintf("f%d", i)
			if _, err := ws.Create(name, "x"); err != nil {
				return err
			}
			_, err := ws.Load(name)
			return err
		})
		if avg > thresholdMemoryWorkspace {
			t.Errorf("workspace create+load too slow: avg %d μs (threshold: %d μs)", avg, thresholdMemoryWorkspace)
		}
	})

	t.Run("ConfigLoad", func(t *testing.T) {
		avg := averageMicros(t, 50, func() error {
			_, err := config.LoadFromReader(strings.NewReader(benchConfig))
			return err
		})
		if avg > thresholdConfigLoad {
			t.Errorf("config load too slow: avg %d μs (threshold: %d μs)", avg, thresholdConfigLoad)
		}
	})
}

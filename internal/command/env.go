package command

import (
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/joeycumines/jseditorx/internal/config"
	"github.com/joeycumines/jseditorx/internal/sandbox"
	"github.com/joeycumines/jseditorx/internal/storage"
	"github.com/joeycumines/jseditorx/internal/workspace"
)

// storeFlags select the key-value store, overriding the store.* options.
type storeFlags struct {
	backend string
	name    string
	path    string
}

func (f *storeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.backend, "store", "", "Store backend: fs or memory (default: store.backend)")
	fs.StringVar(&f.name, "store-name", "", "Store name (default: store.name)")
	fs.StringVar(&f.path, "store-path", "", "Store file path for the fs backend (default: store.path)")
}

// openWorkspace opens the configured store and wraps it in a workspace. The
// caller must Close the returned store.
func (f *storeFlags) openWorkspace(cfg *config.Config, logger *slog.Logger) (*workspace.Workspace, storage.Store, error) {
	schema := config.DefaultSchema()
	backend := f.backend
	if backend == "" {
		backend = schema.Resolve(cfg, "store.backend")
	}
	name := f.name
	if name == "" {
		name = schema.Resolve(cfg, "store.name")
	}
	path := f.path
	if path == "" {
		path = schema.Resolve(cfg, "store.path")
	}

	store, err := storage.GetBackend(backend, name, storage.Options{
		Path: path,
		Lock: schema.ResolveBool(cfg, "store.lock"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("store opened", "backend", backend, "name", name, "path", path)
	return workspace.New(store, workspace.WithLogger(logger)), store, nil
}

// newSandbox builds a sandbox from the sandbox.* options. A zero timeout
// falls back to sandbox.timeout.
func newSandbox(cfg *config.Config, timeout time.Duration, logger *slog.Logger) *sandbox.Sandbox {
	schema := config.DefaultSchema()
	if timeout <= 0 {
		timeout = schema.ResolveDuration(cfg, "sandbox.timeout")
	}
	return sandbox.New(
		sandbox.WithTimeout(timeout),
		sandbox.WithStrict(schema.ResolveBool(cfg, "sandbox.strict")),
		sandbox.WithDenied(schema.ResolveList(cfg, "sandbox.deny")...),
		sandbox.WithMaxCallStackSize(schema.ResolveInt(cfg, "sandbox.max-call-stack")),
		sandbox.WithLogger(logger),
	)
}

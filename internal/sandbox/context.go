package sandbox

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dop251/goja"
)

var (
	// DefaultDenied are the host handles a browser script would otherwise
	// reach. Each is bound to undefined.
	DefaultDenied = []string{"document", "window", "location"}

	// DefaultStubbed are the timer primitives replaced by notices.
	DefaultStubbed = []string{"setInterval", "setTimeout"}
)

// EvalContext is the explicit set of identifiers one run can reach beyond the
// ECMAScript built-ins. A new EvalContext is built for every Run and applied
// to a fresh runtime, so nothing leaks between runs.
type EvalContext struct {
	// Globals are host values exposed to the script by name.
	Globals map[string]any

	// Denied names are defined on the global object as undefined. A name that
	// is both denied and in Globals is denied.
	Denied []string

	// Stubbed names are functions that append "<name> is not supported!" to
	// the output each time they are called, and otherwise do nothing.
	Stubbed []string
}

// Clone returns a deep copy of ec.
func (ec *EvalContext) Clone() *EvalContext {
	return &EvalContext{
		Globals: maps.Clone(ec.Globals),
		Denied:  slices.Clone(ec.Denied),
		Stubbed: slices.Clone(ec.Stubbed),
	}
}

// Reachable returns the sorted names the context installs, excluding denied
// ones.
func (ec *EvalContext) Reachable() []string {
	var names []string
	for name := range ec.Globals {
		if !slices.Contains(ec.Denied, name) {
			names = append(names, name)
		}
	}
	for _, name := range ec.Stubbed {
		if !slices.Contains(ec.Denied, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// apply installs the context into vm. Denied names are applied last so they
// win over anything installed before them.
func (ec *EvalContext) apply(vm *goja.Runtime, out *output) error {
	for name, value := range ec.Globals {
		if err := vm.Set(name, value); err != nil {
			return fmt.Errorf("failed to set global %q: %w", name, err)
		}
	}

	for _, name := range ec.Stubbed {
		notice := name + " is not supported!"
		if err := vm.Set(name, func(goja.FunctionCall) goja.Value {
			out.append(notice)
			return goja.Undefined()
		}); err != nil {
			return fmt.Errorf("failed to stub %q: %w", name, err)
		}
	}

	global := vm.GlobalObject()
	for _, name := range ec.Denied {
		// configurable, so user code may still declare its own binding
		if err := global.DefineDataProperty(name, goja.Undefined(), goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			return fmt.Errorf("failed to deny %q: %w", name, err)
		}
	}
	return nil
}

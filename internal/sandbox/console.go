package sandbox

import (
	"strings"

	"github.com/dop251/goja"
)

// output collects console lines for a single run.
type output struct {
	lines []string
}

func (o *output) append(line string) { o.lines = append(o.lines, line) }

// consoleMethods are redirected into the run output.
var consoleMethods = []string{"log", "info", "warn", "error", "debug"}

// installConsole replaces console with an object whose methods append one
// line per call. JSON.stringify is captured here, before user code can
// replace it.
func installConsole(vm *goja.Runtime, out *output) error {
	var stringify goja.Callable
	if json := vm.Get("JSON"); json != nil {
		stringify, _ = goja.AssertFunction(json.ToObject(vm).Get("stringify"))
	}
	render := func(v goja.Value) string {
		return renderValue(vm, stringify, v)
	}

	console := vm.NewObject()
	for _, method := range consoleMethods {
		if err := console.Set(method, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = render(arg)
			}
			out.append(strings.Join(parts, " "))
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}
	return vm.Set("console", console)
}

// renderValue renders objects (other than functions) as JSON indented by two
// spaces, symbols as Symbol(description), and everything else in its string
// form.
func renderValue(vm *goja.Runtime, stringify goja.Callable, v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	obj, ok := v.(*goja.Object)
	if !ok || stringify == nil {
		return valueString(v)
	}
	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return v.String()
	}
	s, err := stringify(goja.Undefined(), obj, goja.Null(), vm.ToValue(2))
	if err != nil || s == nil || goja.IsUndefined(s) {
		// cycles, BigInt members, or a toJSON returning undefined
		return v.String()
	}
	return s.String()
}

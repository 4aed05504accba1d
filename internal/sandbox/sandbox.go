// Package sandbox evaluates user-written JavaScript and reports the outcome
// as a Result.
//
// Every Run builds a fresh goja runtime and a fresh EvalContext, so no state
// survives between runs. Restriction is by reachable identifier only: the
// browser handles are bound to undefined, the timers are stubbed, and
// require() resolves only the native modules registered with the Sandbox.
// Host values exposed with WithGlobal remain fully reachable through any
// reference the script obtains to them. Nothing runs in a separate process.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja_nodejs/require"
	"github.com/google/uuid"
	timemod "github.com/joeycumines/jseditorx/internal/sandbox/builtin/time"
)

// ScriptName is the source name reported for user code.
const ScriptName = "<buffer>"

// DefaultMaxCallStackSize bounds JS recursion so runaway recursion fails
// with a RangeError instead of exhausting memory.
const DefaultMaxCallStackSize = 10000

// ModuleFactory builds a native module for one run. ctx is done when the run
// is cancelled or times out.
type ModuleFactory func(ctx context.Context) require.ModuleLoader

// Sandbox runs scripts. The zero value is not usable; call New. A Sandbox may
// be used from multiple goroutines, each Run being independent.
type Sandbox struct {
	timeout      time.Duration
	strict       bool
	maxCallStack int
	denied       []string
	stubbed      []string
	globals      map[string]any
	modules      map[string]ModuleFactory
	logger       *slog.Logger
}

// Option configures a Sandbox.
type Option func(*Sandbox)

// WithTimeout interrupts runs that take longer than d. Zero disables the
// limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Sandbox) { s.timeout = d }
}

// WithStrict compiles scripts in strict mode.
func WithStrict(strict bool) Option {
	return func(s *Sandbox) { s.strict = strict }
}

// WithDenied adds names to DefaultDenied.
func WithDenied(names ...string) Option {
	return func(s *Sandbox) {
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				s.denied = append(s.denied, name)
			}
		}
	}
}

// WithGlobal exposes a host value to scripts under name.
func WithGlobal(name string, value any) Option {
	return func(s *Sandbox) { s.globals[name] = value }
}

// WithModule registers a native module resolvable via require(name).
func WithModule(name string, factory ModuleFactory) Option {
	return func(s *Sandbox) { s.modules[name] = factory }
}

// WithMaxCallStackSize overrides DefaultMaxCallStackSize.
func WithMaxCallStackSize(n int) Option {
	return func(s *Sandbox) {
		if n > 0 {
			s.maxCallStack = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sandbox) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Sandbox with the default context: DefaultDenied bound to
// undefined, DefaultStubbed replaced with notices, console redirected and
// the jsx:time module available.
func New(opts ...Option) *Sandbox {
	s := &Sandbox{
		maxCallStack: DefaultMaxCallStackSize,
		denied:       append([]string(nil), DefaultDenied...),
		stubbed:      append([]string(nil), DefaultStubbed...),
		globals:      make(map[string]any),
		modules: map[string]ModuleFactory{
			"jsx:time": timemod.Require,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEvalContext returns the context the next run will use.
func (s *Sandbox) NewEvalContext() *EvalContext {
	return &EvalContext{
		Globals: maps.Clone(s.globals),
		Denied:  append([]string(nil), s.denied...),
		Stubbed: append([]string(nil), s.stubbed...),
	}
}

// Run evaluates code. Code that is empty after trimming whitespace yields
// Result{Empty: true} without evaluating anything. Failures are reported in
// Result.Err, never returned or panicked.
//
// Run blocks until the script completes. It stops early only if ctx is done
// or the configured timeout elapses, in which case Err.Kind is
// KindInterrupted.
func (s *Sandbox) Run(ctx context.Context, code string) *Result {
	if strings.TrimSpace(code) == "" {
		return &Result{Empty: true}
	}
	return s.RunContext(ctx, code, s.NewEvalContext())
}

// RunContext is Run with an explicit evaluation context.
func (s *Sandbox) RunContext(ctx context.Context, code string, ec *EvalContext) (res *Result) {
	if strings.TrimSpace(code) == "" {
		return &Result{Empty: true}
	}

	res = &Result{RunID: uuid.NewString()}
	out := &output{}
	logger := s.logger.With("run_id", res.RunID)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, s.timeout, fmt.Errorf("execution timed out after %s", s.timeout))
		defer cancel()
	}

	var start, end time.Time
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sandbox panic", "panic", r, "stack", string(debug.Stack()))
			res.Value, res.Returned, res.HasValue = nil, "", false
			res.Err = &ExecutionError{Kind: KindInternal, Message: fmt.Sprint(r)}
		}
		if !start.IsZero() {
			if end.IsZero() {
				end = time.Now()
			}
			res.Elapsed = end.Sub(start)
		}
		res.Output = out.lines
		if res.Err != nil {
			logger.Debug("sandbox run failed", "elapsed", res.Elapsed, "kind", res.Err.Kind, "message", res.Err.Message, "line", res.Err.Line)
		} else {
			logger.Debug("sandbox run finished", "elapsed", res.Elapsed, "output_lines", len(res.Output))
		}
	}()

	vm := goja.New()
	vm.SetMaxCallStackSize(s.maxCallStack)
	if err := s.prepare(ctx, vm, ec, out); err != nil {
		res.Err = &ExecutionError{Kind: KindInternal, Message: err.Error()}
		return res
	}

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(context.Cause(ctx))
	})
	defer stop()

	start = time.Now()
	program, err := s.compile(code)
	if err != nil {
		end = time.Now()
		res.Err = toExecutionError(err)
		return res
	}

	value, err := vm.RunProgram(program)
	end = time.Now()
	if err != nil {
		res.Err = toExecutionError(err)
		return res
	}

	if value == nil {
		value = goja.Undefined()
	}
	// the completion value may run user code (toString, valueOf) or have no
	// primitive form at all
	if ex := vm.Try(func() { res.Returned = valueString(value) }); ex != nil {
		res.Returned = ""
		res.Err = exceptionError(ex)
		return res
	}
	if !goja.IsUndefined(value) {
		res.HasValue = true
		res.Value = value.Export()
	}
	return res
}

// valueString is the string form of v, with symbols described as
// Symbol(description).
func valueString(v goja.Value) string {
	if sym, ok := v.(*goja.Symbol); ok {
		return "Symbol(" + sym.String() + ")"
	}
	return v.String()
}

func (s *Sandbox) prepare(ctx context.Context, vm *goja.Runtime, ec *EvalContext, out *output) error {
	registry := require.NewRegistry(require.WithLoader(func(path string) ([]byte, error) {
		return nil, require.ModuleFileDoesNotExistError
	}))
	for name, factory := range s.modules {
		registry.RegisterNativeModule(name, factory(ctx))
	}
	registry.Enable(vm)

	if err := installConsole(vm, out); err != nil {
		return fmt.Errorf("failed to install console: %w", err)
	}
	if err := ec.apply(vm, out); err != nil {
		return err
	}
	return nil
}

// compile parses separately from compiling so syntax errors keep their
// position.
func (s *Sandbox) compile(code string) (*goja.Program, error) {
	ast, err := parser.ParseFile(nil, ScriptName, code, 0)
	if err != nil {
		return nil, err
	}
	return goja.CompileAST(ast, s.strict)
}

// toExecutionError converts a compile or run error into an ExecutionError.
func toExecutionError(err error) *ExecutionError {
	var (
		parseErrs   parser.ErrorList
		parseErr    *parser.Error
		syntaxErr   *goja.CompilerSyntaxError
		refErr      *goja.CompilerReferenceError
		interrupted *goja.InterruptedError
		overflow    *goja.StackOverflowError
		exception   *goja.Exception
	)
	switch {
	case errors.As(err, &parseErrs) && len(parseErrs) > 0:
		return &ExecutionError{Kind: KindSyntax, Message: parseErrs[0].Message, Line: parseErrs[0].Position.Line}
	case errors.As(err, &parseErr):
		return &ExecutionError{Kind: KindSyntax, Message: parseErr.Message, Line: parseErr.Position.Line}
	case errors.As(err, &syntaxErr):
		e := &ExecutionError{Kind: KindSyntax, Message: syntaxErr.Message}
		if syntaxErr.File != nil {
			e.Line = syntaxErr.File.Position(syntaxErr.Offset).Line
		}
		return e
	case errors.As(err, &refErr):
		return &ExecutionError{Kind: KindReference, Message: refErr.Message}
	case errors.As(err, &interrupted):
		return &ExecutionError{Kind: KindInterrupted, Message: fmt.Sprint(interrupted.Value())}
	case errors.As(err, &overflow):
		return &ExecutionError{Kind: KindRange, Message: "Maximum call stack size exceeded", Line: scriptLine(overflow.Stack())}
	case errors.As(err, &exception):
		return exceptionError(exception)
	default:
		return &ExecutionError{Kind: KindInternal, Message: err.Error()}
	}
}

// exceptionError reads name and message from a thrown Error. Other thrown
// values are reported as KindError with their string form.
func exceptionError(ex *goja.Exception) *ExecutionError {
	e := &ExecutionError{Kind: KindError, Line: scriptLine(ex.Stack())}
	val := ex.Value()
	if val == nil {
		e.Message = ex.Error()
		return e
	}
	obj, ok := val.(*goja.Object)
	if !ok || !isErrorObject(obj) {
		e.Message = val.String()
		return e
	}
	if name := obj.Get("name"); name != nil && !goja.IsUndefined(name) && name.String() != "" {
		e.Kind = name.String()
	}
	if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
		e.Message = msg.String()
	}
	if e.Kind == "TypeError" && strings.HasPrefix(e.Message, "Could not convert ") && strings.HasSuffix(e.Message, " to primitive") {
		// goja embeds its internal object representation in this message
		e.Message = "Cannot convert object to primitive value"
	}
	return e
}

// isErrorObject reports whether obj looks like an Error, including user
// classes that extend it.
func isErrorObject(obj *goja.Object) bool {
	if obj.ClassName() == "Error" {
		return true
	}
	name, message := obj.Get("name"), obj.Get("message")
	return name != nil && message != nil && !goja.IsUndefined(name) && !goja.IsUndefined(message)
}

// scriptLine returns the line of the innermost frame in user code.
func scriptLine(stack []goja.StackFrame) int {
	for i := range stack {
		if stack[i].SrcName() != ScriptName {
			continue
		}
		if line := stack[i].Position().Line; line > 0 {
			return line
		}
	}
	return 0
}

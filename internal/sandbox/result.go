package sandbox

import (
	"fmt"
	"strconv"
	"time"
)

// Error kinds produced by the sandbox itself, as opposed to the name of a
// value thrown by the script.
const (
	KindError       = "Error"
	KindSyntax      = "SyntaxError"
	KindReference   = "ReferenceError"
	KindRange       = "RangeError"
	KindInterrupted = "InterruptedError"
	KindInternal    = "InternalError"
)

// ExecutionError describes a failed run.
type ExecutionError struct {
	Kind    string
	Message string
	Line    int // 1-based, 0 when unknown
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s (line %s)", e.Kind, e.Message, e.LineString())
}

// LineString returns the line number, or "unknown".
func (e *ExecutionError) LineString() string {
	if e.Line <= 0 {
		return "unknown"
	}
	return strconv.Itoa(e.Line)
}

// Result is the outcome of one Run. When Empty is set no code was evaluated
// and every other field is zero.
type Result struct {
	Empty bool

	// RunID identifies the run in logs.
	RunID string

	// Output holds one rendered line per console call, in call order. Lines
	// written before a failure are kept.
	Output []string

	// Value is the exported completion value of the script. HasValue is false
	// when the completion value was undefined.
	Value    any
	Returned string
	HasValue bool

	Elapsed time.Duration

	// Err is set when the script threw or could not be compiled.
	Err *ExecutionError
}

// ElapsedMs returns Elapsed in whole milliseconds.
func (r *Result) ElapsedMs() int64 { return r.Elapsed.Milliseconds() }

// OK reports whether code ran to completion.
func (r *Result) OK() bool { return !r.Empty && r.Err == nil }

// Package time provides the jsx:time native module.
package time

import (
	"context"
	"math"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
)

// Require returns the module loader. sleep returns early when ctx is done, so
// an interrupted run is not held up by a pending sleep.
func Require(ctx context.Context) require.ModuleLoader {
	return func(runtime *goja.Runtime, module *goja.Object) {
		exports := module.Get("exports").(*goja.Object)

		// sleep(ms: number): boolean, false if the run was cancelled first
		_ = exports.Set("sleep", func(call goja.FunctionCall) goja.Value {
			d := sleepDuration(call.Argument(0).ToFloat())
			if d <= 0 {
				return runtime.ToValue(true)
			}
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				return runtime.ToValue(true)
			case <-ctx.Done():
				return runtime.ToValue(false)
			}
		})

		// now(): number, milliseconds since the Unix epoch with sub-ms precision
		_ = exports.Set("now", func(goja.FunctionCall) goja.Value {
			return runtime.ToValue(float64(time.Now().UnixNano()) / float64(time.Millisecond))
		})
	}
}

// maxSleepMs is the largest millisecond count a time.Duration can hold.
const maxSleepMs = float64(math.MaxInt64 / int64(time.Millisecond))

// sleepDuration converts ms to a Duration, clamped to the representable
// range. NaN is zero.
func sleepDuration(ms float64) time.Duration {
	switch {
	case math.IsNaN(ms) || ms <= 0:
		return 0
	case ms >= maxSleepMs:
		return time.Duration(math.MaxInt64)
	default:
		return time.Duration(ms * float64(time.Millisecond))
	}
}

package time_test

import (
	"context"
	"testing"
	"time"

	"github.com/dop251/goja"
	gojarequire "github.com/dop251/goja_nodejs/require"
	timemod "github.com/joeycumines/jseditorx/internal/sandbox/builtin/time"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T, ctx context.Context) *goja.Runtime {
	t.Helper()
	vm := goja.New()
	registry := gojarequire.NewRegistry()
	registry.RegisterNativeModule("jsx:time", timemod.Require(ctx))
	registry.Enable(vm)
	return vm
}

func TestSleep(t *testing.T) {
	t.Parallel()
	vm := newRuntime(t, context.Background())

	start := time.Now()
	v, err := vm.RunString(`require("jsx:time").sleep(20)`)
	require.NoError(t, err)
	require.True(t, v.ToBoolean())
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	v, err = vm.RunString(`require("jsx:time").sleep(-5)`)
	require.NoError(t, err)
	require.True(t, v.ToBoolean())
}

func TestSleep_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	vm := newRuntime(t, ctx)

	start := time.Now()
	v, err := vm.RunString(`require("jsx:time").sleep(10000)`)
	require.NoError(t, err)
	require.False(t, v.ToBoolean())
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestNow(t *testing.T) {
	t.Parallel()
	vm := newRuntime(t, context.Background())

	before := float64(time.Now().UnixMilli())
	v, err := vm.RunString(`require("jsx:time").now()`)
	require.NoError(t, err)
	now := v.ToFloat()
	require.GreaterOrEqual(t, now, before)
	require.Less(t, now, before+60_000)
}

func TestSleep_HugeDurationWaits(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	vm := newRuntime(t, ctx)

	for _, arg := range []string{"1e300", "Infinity", "9223372036854775807"} {
		v, err := vm.RunString(`require("jsx:time").sleep(` + arg + `)`)
		require.NoError(t, err)
		require.False(t, v.ToBoolean(), arg)
	}

	v, err := vm.RunString(`require("jsx:time").sleep(NaN)`)
	require.NoError(t, err)
	require.True(t, v.ToBoolean())
}

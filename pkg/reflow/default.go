package reflow

import (
	"sync"

	"github.com/petermattis/goid"
)

// defaultRuntimes stores one lazily created Runtime per goroutine.
// sync.Map because lookups happen from many goroutines, even though
// each stored Runtime is only ever used by its own.
var defaultRuntimes sync.Map

// Default returns the calling goroutine's runtime, creating it on
// first use. It keeps the engine instance-scoped while still offering
// the convenience of ambient access: code on one goroutine shares a
// registry and queue without threading a *Runtime through every call.
func Default() *Runtime {
	gid := goid.Get()
	if rt, ok := defaultRuntimes.Load(gid); ok {
		return rt.(*Runtime)
	}
	rt := NewRuntime()
	defaultRuntimes.Store(gid, rt)
	return rt
}

// ReleaseDefault discards the calling goroutine's default runtime.
// Call it before a long-lived goroutine exits so the runtime's
// registry can be collected.
func ReleaseDefault() {
	defaultRuntimes.Delete(goid.Get())
}

// Package reflow implements a fine-grained reactive dependency-tracking
// and effect-scheduling engine.
//
// Reads of reactive state (Ref, Computed, Map, List, Object) performed
// while an Effect is running are recorded as dependencies of that effect.
// Writes notify the dependent effects, either by invoking them directly
// or by handing them to their scheduler, which typically enqueues them on
// the runtime's deferred Queue so that redundant re-runs within one turn
// coalesce into a single ordered flush.
//
// A Runtime owns all tracking state: the dependency registry, the
// active-effect stack, and the pause counter. Runtimes are independent;
// each is confined to a single goroutine. Reentrancy (an effect running
// another effect synchronously, such as a Computed read inside a watch
// effect) is handled by the stack-based active-effect context.
//
// Typical usage:
//
//	rt := reflow.NewRuntime()
//	count := reflow.NewRef(rt, 0)
//
//	e := rt.NewEffect(func() any {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	}, reflow.WithLazy(), reflow.Deferred())
//	e.Run() // seed dependencies
//
//	count.Set(1)
//	count.Set(2)
//	rt.Queue().Flush() // prints once, with the final value
package reflow

package reflow

import "reflect"

// reactiveValue is implemented by the reactive container wrappers
// (Object, List, Map). It ties a wrapper to the raw container it
// intercepts and to its slot in the runtime's wrapper cache.
type reactiveValue interface {
	// rawValue returns the unwrapped underlying container.
	rawValue() any

	// cacheKey identifies the underlying container in the wrapper cache.
	cacheKey() uintptr
}

// Reactive returns an interception wrapper over v: map[string]any
// becomes an *Object and []any a *List[any], with reads recorded via
// Track and writes dispatched via Trigger. Wrapping is idempotent and
// identity-stable: an already-wrapped value is returned unchanged, and
// wrapping the same container twice yields the same wrapper instance,
// so equality checks on wrapped values behave predictably. Values that
// are not containers are returned as-is.
func (rt *Runtime) Reactive(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case reactiveValue:
		return t
	case map[string]any:
		key := reflect.ValueOf(t).Pointer()
		if w, ok := rt.wrappers[key]; ok {
			return w
		}
		w := &Object{rt: rt, items: t}
		rt.wrappers[key] = w
		return w
	case []any:
		// Distinct empty slices can share a backing pointer, so only
		// non-empty slices are identity-cached.
		w := &List[any]{rt: rt, items: t}
		if len(t) > 0 {
			key := reflect.ValueOf(t).Pointer()
			if cached, ok := rt.wrappers[key]; ok {
				return cached
			}
			w.ckey = key
			rt.wrappers[key] = w
		}
		return w
	default:
		return v
	}
}

// ToRaw recovers the original unwrapped container from a reactive
// wrapper. Non-wrapped values are returned unchanged.
func ToRaw(v any) any {
	if rv, ok := v.(reactiveValue); ok {
		return rv.rawValue()
	}
	return v
}

// IsReactive reports whether v is a reactive container wrapper.
func IsReactive(v any) bool {
	_, ok := v.(reactiveValue)
	return ok
}

package reflow

import "reflect"

// Object is a dynamic reactive wrapper over a map[string]any. Property
// reads call Track and writes call Trigger with the appropriate op:
// OpSet for existing keys, OpAdd for new keys, OpDelete for removals.
//
// Nested containers are wrapped lazily on first access, not eagerly at
// wrap time; the raw map always stores unwrapped values.
type Object struct {
	rt    *Runtime
	items map[string]any
}

// NewObject wraps target (an empty map when nil) for rt. Prefer
// rt.Reactive for identity-stable wrapping of shared maps.
func NewObject(rt *Runtime, target map[string]any) *Object {
	if target == nil {
		target = make(map[string]any)
	}
	w, _ := rt.Reactive(target).(*Object)
	return w
}

// Get returns the value stored under key, lazily wrapping nested
// containers, and subscribes the active effect to the key.
func (o *Object) Get(key string) any {
	o.rt.Track(o, key)
	return o.rt.Reactive(o.items[key])
}

// Has reports whether key exists, subscribing the active effect to it.
func (o *Object) Has(key string) bool {
	o.rt.Track(o, key)
	_, ok := o.items[key]
	return ok
}

// Set stores v under key. Reactive wrappers are unwrapped before
// storage so the raw map never holds engine types. A write that leaves
// the stored value equal is suppressed.
func (o *Object) Set(key string, v any) {
	v = ToRaw(v)
	old, existed := o.items[key]
	if existed && equalValues(old, v) {
		return
	}
	o.items[key] = v
	if existed {
		o.rt.Trigger(o, OpSet, key)
	} else {
		o.rt.Trigger(o, OpAdd, key)
	}
}

// Delete removes key, notifying its dependents and iteration
// dependents. Deleting an absent key is a no-op.
func (o *Object) Delete(key string) {
	if _, ok := o.items[key]; !ok {
		return
	}
	delete(o.items, key)
	o.rt.Trigger(o, OpDelete, key)
}

// Clear removes every key and notifies every dependent of the object
// exactly once each.
func (o *Object) Clear() {
	if len(o.items) == 0 {
		return
	}
	for k := range o.items {
		delete(o.items, k)
	}
	o.rt.Trigger(o, OpClear, nil)
}

// Len returns the number of keys, subscribing the active effect to
// structural changes.
func (o *Object) Len() int {
	o.rt.Track(o, IterateKey)
	return len(o.items)
}

// Keys returns the current keys, subscribing the active effect to
// structural changes. Order is unspecified.
func (o *Object) Keys() []string {
	o.rt.Track(o, IterateKey)
	keys := make([]string, 0, len(o.items))
	for k := range o.items {
		keys = append(keys, k)
	}
	return keys
}

// Range calls fn for each key/value pair until fn returns false,
// subscribing the active effect to structural changes. Values are
// lazily wrapped like Get.
func (o *Object) Range(fn func(key string, value any) bool) {
	o.rt.Track(o, IterateKey)
	for k, v := range o.items {
		if !fn(k, o.rt.Reactive(v)) {
			return
		}
	}
}

// Raw returns the underlying map without tracking.
func (o *Object) Raw() map[string]any {
	return o.items
}

func (o *Object) rawValue() any {
	return o.items
}

func (o *Object) cacheKey() uintptr {
	return reflect.ValueOf(o.items).Pointer()
}

package reflow

import "reflect"

// Map is a typed reactive wrapper over a Go map. Key reads track the
// key; structural reads (Len, Keys, Range) track the iteration key,
// which add and delete notifications also collect.
type Map[K comparable, V any] struct {
	rt    *Runtime
	items map[K]V
}

// NewMap wraps initial (an empty map when nil) for rt.
func NewMap[K comparable, V any](rt *Runtime, initial map[K]V) *Map[K, V] {
	if initial == nil {
		initial = make(map[K]V)
	}
	return &Map[K, V]{rt: rt, items: initial}
}

// Get returns the value stored under key, subscribing the active
// effect to that key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.rt.Track(m, key)
	v, ok := m.items[key]
	return v, ok
}

// Has reports whether key exists, subscribing the active effect to it.
func (m *Map[K, V]) Has(key K) bool {
	m.rt.Track(m, key)
	_, ok := m.items[key]
	return ok
}

// Set stores v under key, triggering OpSet for existing keys and OpAdd
// for new ones. Writes of an equal value are suppressed.
func (m *Map[K, V]) Set(key K, v V) {
	old, existed := m.items[key]
	if existed && equalValues(old, v) {
		return
	}
	m.items[key] = v
	if existed {
		m.rt.Trigger(m, OpSet, key)
	} else {
		m.rt.Trigger(m, OpAdd, key)
	}
}

// Update applies fn to the value under key. Absent keys are left
// untouched.
func (m *Map[K, V]) Update(key K, fn func(V) V) {
	v, ok := m.items[key]
	if !ok {
		return
	}
	m.Set(key, fn(v))
}

// Delete removes key. Deleting an absent key is a no-op.
func (m *Map[K, V]) Delete(key K) {
	if _, ok := m.items[key]; !ok {
		return
	}
	delete(m.items, key)
	m.rt.Trigger(m, OpDelete, key)
}

// Clear removes every key and notifies every dependent of the map
// exactly once each.
func (m *Map[K, V]) Clear() {
	if len(m.items) == 0 {
		return
	}
	for k := range m.items {
		delete(m.items, k)
	}
	m.rt.Trigger(m, OpClear, nil)
}

// Len returns the number of keys, subscribing the active effect to
// structural changes.
func (m *Map[K, V]) Len() int {
	m.rt.Track(m, IterateKey)
	return len(m.items)
}

// Keys returns the current keys, subscribing the active effect to
// structural changes. Order is unspecified.
func (m *Map[K, V]) Keys() []K {
	m.rt.Track(m, IterateKey)
	keys := make([]K, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}

// Range calls fn for each key/value pair until fn returns false,
// subscribing the active effect to structural changes.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	m.rt.Track(m, IterateKey)
	for k, v := range m.items {
		if !fn(k, v) {
			return
		}
	}
}

// Raw returns the underlying map without tracking.
func (m *Map[K, V]) Raw() map[K]V {
	return m.items
}

func (m *Map[K, V]) rawValue() any {
	return m.items
}

func (m *Map[K, V]) cacheKey() uintptr {
	return reflect.ValueOf(m.items).Pointer()
}
